package formula

import "errors"

var (
	ErrCellOutOfBounds  = errors.New("cell out of bounds")
	ErrRangeNotStorable = errors.New("range values cannot be stored in a cell")
	ErrShiftOutOfBounds = errors.New("shifted reference out of bounds")
	ErrInvalidConfig    = errors.New("invalid sheet config")
	ErrUnknownCell      = errors.New("unknown cell name")
)

const (
	circularDependencyMessage = "Circular dependency"
	uninitializedFormat       = "Cell %s is uninitialized"
	depthExceededFormat       = "Dependency chain too deep (limit %d)"
	rangeCellFormat           = "Expected a cell value and got %s"
)
