package formula

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newTestSheet(t *testing.T, cfg Config) (*Sheet, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	if cfg.Rows == 0 {
		cfg.Rows = 10
	}
	if cfg.Columns == 0 {
		cfg.Columns = 10
	}
	cfg.Logger = logger
	s, err := NewSheet(cfg)
	if err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	return s, hook
}

func cellAt(t *testing.T, s *Sheet, name string) Cell {
	t.Helper()
	cell, err := s.CellByName(name)
	if err != nil {
		t.Fatalf("cell %s: %v", name, err)
	}
	return cell
}

func set(t *testing.T, s *Sheet, name, text string) {
	t.Helper()
	if err := s.Set(cellAt(t, s, name), text); err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
}

func expectDouble(t *testing.T, res Result, want float64) {
	t.Helper()
	if !res.IsSuccess() {
		t.Fatalf("expected %v, got failure %q", want, res.Err())
	}
	if res.Value().Kind() != KindDouble || res.Value().Double() != want {
		t.Fatalf("expected %v, got %s %v", want, res.Value().Kind(), res.Value())
	}
}

func expectFailure(t *testing.T, res Result, msg string) {
	t.Helper()
	if res.IsSuccess() {
		t.Fatalf("expected failure %q, got %s", msg, res.Value())
	}
	if res.Err() != msg {
		t.Fatalf("expected failure %q, got %q", msg, res.Err())
	}
}
