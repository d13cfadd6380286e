package accumulator

import "github.com/pkg/errors"

// construction-time usage errors
var (
	ErrInvalidOperand  = errors.New("operand should be a node, a number, a bool or a field name")
	ErrArityMismatch   = errors.New("operand arity mismatch")
	ErrScalarIndex     = errors.New("scalar valued node can not be indexed")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvertedRange   = errors.New("slice range is inverted or empty")
	ErrInvalidShift    = errors.New("shift length should be at least 1")
	ErrInvalidWindow   = errors.New("window should be at least 1")
	ErrFieldCount      = errors.New("unexpected number of dependency fields")
	ErrEmptyDependency = errors.New("dependency field list should not be empty")
)

// per-tick outcomes, read as a missing value by the callers
var (
	ErrNoData        = errors.New("no data has been pushed")
	ErrNotEnoughData = errors.New("not enough data to compute the result")
)

// IsMissing reports whether err means the value is not available yet.
func IsMissing(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrNoData || cause == ErrNotEnoughData
}
