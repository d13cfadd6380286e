package accumulator

import (
	"github.com/pkg/errors"
)

// leafBase carries the bookkeeping shared by the leaf accumulators:
// the dependency fields, the declared window and the number of ticks that
// actually updated the state.
type leafBase struct {
	fields []string
	window int
	count  int
}

func newLeafBase(fields []string, window int) leafBase {
	return leafBase{
		fields: normalizeFields(fields),
		window: window,
	}
}

func (b *leafBase) Window() int {
	return b.window
}

func (b *leafBase) Arity() int {
	return 1
}

func (b *leafBase) Dependency() []string {
	out := make([]string, len(b.fields))
	copy(out, b.fields)
	return out
}

func (b *leafBase) IsFull() bool {
	return b.count >= b.window
}

// read returns the value of the first dependency field.
func (b *leafBase) read(record Record) (float64, bool) {
	v, ok := record[b.fields[0]]
	return v, ok
}

// readAll returns all dependency fields in declaration order, false if any
// of them is missing.
func (b *leafBase) readAll(record Record) ([]float64, bool) {
	values := make([]float64, len(b.fields))
	for i, f := range b.fields {
		v, ok := record[f]
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// newLeaf resolves the dependency argument of a leaf constructor.
//
// dependency can be nil (use the default field names), a field name, a list
// of field names, or a node, in which case the leaf is built on the default
// fields and compounded onto the node.
func newLeaf(dependency interface{}, defaults []string, build func(fields []string) Node) (Node, error) {
	var fields []string

	switch dep := dependency.(type) {
	case nil:
		fields = defaults
	case string:
		fields = []string{dep}
	case []string:
		fields = dep
	case Node:
		return Compound(dep, build(defaults))
	default:
		return nil, errors.Wrapf(ErrInvalidOperand, "dependency %T", dependency)
	}

	if len(fields) == 0 {
		return nil, ErrEmptyDependency
	}

	if len(fields) != len(defaults) {
		return nil, errors.Wrapf(ErrFieldCount, "expecting %d fields, given %v", len(defaults), fields)
	}

	return build(normalizeFields(fields)), nil
}

func checkWindow(window int) error {
	if window < 1 {
		return errors.Wrapf(ErrInvalidWindow, "given %d", window)
	}
	return nil
}

var (
	oneField  = []string{"x"}
	twoFields = []string{"x", "y"}
)
