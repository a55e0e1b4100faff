package formula

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type cellState int

const (
	unvisited cellState = iota
	inProgress
	resolved
)

type cellEval struct {
	state  cellState
	cyclic bool
	result Result

	// height is the longest chain of formula cells starting at this one,
	// itself included. It is only meaningful once resolved.
	height int

	// truncated is set when the depth limit fired somewhere below this cell
	// during its evaluation. Such a result depends on where the cell sat in
	// the chain, so it is never cached. When the cell itself failed on the
	// limit, failDepth records the stack depth it failed at; any read at that
	// depth or deeper fails the same way.
	truncated bool
	failDepth int
}

// recompute is one evaluation pass over a sheet. Cell states live only for
// the pass, so every pass sees the sheet exactly as it is now and nothing is
// carried over from before a write.
type recompute struct {
	*Sheet
	evals map[Cell]*cellEval
	stack []Cell

	// heights[i] is the tallest resolved dependency seen so far by stack[i].
	heights []int
}

func (s *Sheet) newPass() *recompute {
	return &recompute{
		Sheet: s,
		evals: make(map[Cell]*cellEval),
	}
}

// ResultAt is the reentry point for references during a pass.
func (p *recompute) ResultAt(cell Cell) Result {
	if _, err := p.index(cell); err != nil {
		return Failuref("Reference %s unresolved", cell)
	}
	v, ok := p.ValueAt(cell)
	if !ok {
		return Failuref(uninitializedFormat, cell)
	}
	if v.Kind() != KindFormula {
		return Success(v)
	}
	f := v.Formula()
	if f.Failed() {
		return Failure(parsingErrorMessage)
	}

	ev := p.evals[cell]
	if ev == nil {
		ev = &cellEval{failDepth: -1}
		p.evals[cell] = ev
	}
	depth := len(p.stack)
	switch ev.state {
	case resolved:
		if depth+ev.height > p.config.MaxDepth {
			return p.depthExceeded(cell)
		}
		p.reportHeight(ev.height)
		return ev.result
	case inProgress:
		p.markCycle(cell)
		return Failure(circularDependencyMessage)
	}
	if depth >= p.config.MaxDepth || (ev.failDepth >= 0 && depth >= ev.failDepth) {
		return p.depthExceeded(cell)
	}

	ev.state = inProgress
	ev.cyclic, ev.truncated = false, false
	p.stack = append(p.stack, cell)
	p.heights = append(p.heights, 0)
	result := Evaluate(f.Expr(), p)
	height := p.heights[len(p.heights)-1] + 1
	p.stack = p.stack[:depth]
	p.heights = p.heights[:depth]

	if result.IsSuccess() && result.Value().Kind() == KindRange {
		result = Failuref(rangeCellFormat, KindRange)
	}
	if ev.cyclic {
		result = Failure(circularDependencyMessage)
	}
	if ev.truncated {
		ev.state = unvisited
		if result.Err() == fmt.Sprintf(depthExceededFormat, p.config.MaxDepth) {
			ev.failDepth = depth
		}
		if depth == 0 {
			f.setResult(result)
		}
		return result
	}
	ev.state = resolved
	ev.result = result
	ev.height = height
	p.reportHeight(height)
	f.setResult(result)
	return result
}

// reportHeight lets the cell on top of the stack know how tall the chain
// below one of its dependencies is.
func (p *recompute) reportHeight(height int) {
	if top := len(p.heights) - 1; top >= 0 && height > p.heights[top] {
		p.heights[top] = height
	}
}

// depthExceeded fails a read that would make the chain longer than MaxDepth.
// Every cell on the stack is flagged so none of them caches a result that
// only holds at its current depth.
func (p *recompute) depthExceeded(cell Cell) Result {
	for _, c := range p.stack {
		p.evals[c].truncated = true
	}
	p.log.WithField("cell", cell.String()).Debugf("dependency chain exceeds %d cells", p.config.MaxDepth)
	return Failuref(depthExceededFormat, p.config.MaxDepth)
}

// markCycle flags every in-progress cell from the re-entered one up to the
// top of the stack; each of them will finish as a circular dependency.
func (p *recompute) markCycle(cell Cell) {
	start := len(p.stack) - 1
	for start >= 0 && p.stack[start] != cell {
		start--
	}
	if start < 0 {
		return
	}
	chain := make([]string, 0, len(p.stack)-start+1)
	for _, c := range p.stack[start:] {
		p.evals[c].cyclic = true
		chain = append(chain, c.String())
	}
	chain = append(chain, cell.String())
	p.log.WithField("chain", strings.Join(chain, " -> ")).Debug("circular dependency detected")
}

// recoverInto turns a panic escaping the pass into a failed result.
func (p *recompute) recoverInto(cell Cell, result *Result) {
	if r := recover(); r != nil {
		p.log.WithFields(logrus.Fields{"cell": cell.String(), "panic": r}).Error("evaluation panicked")
		*result = Failure(fmt.Sprintf("Internal error: %v", r))
		for _, c := range p.stack {
			p.evals[c].state = unvisited
		}
		p.stack = p.stack[:0]
		p.heights = p.heights[:0]
	}
}

// Recalculate evaluates every formula cell in one pass and stores each result
// on its Formula, where Formula.Result can read it without recomputing.
func (s *Sheet) Recalculate() {
	start := time.Now()
	p := s.newPass()
	formulas, failures := 0, 0
	for cell, v := range s.Cells() {
		if v.Kind() != KindFormula {
			continue
		}
		formulas++
		if res := p.safeResultAt(cell); !res.IsSuccess() {
			failures++
		}
	}
	s.log.WithFields(logrus.Fields{
		"formulas": formulas,
		"failures": failures,
		"elapsed":  time.Since(start),
	}).Debug("recalculated sheet")
}

func (p *recompute) safeResultAt(cell Cell) (result Result) {
	defer func() {
		if v, ok := p.ValueAt(cell); ok && v.Kind() == KindFormula {
			v.Formula().setResult(result)
		}
	}()
	defer p.recoverInto(cell, &result)
	return p.ResultAt(cell)
}
