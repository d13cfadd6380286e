package accumulator

import (
	"github.com/pkg/errors"
)

// Identity either yields a constant, or replicates the result of a scalar
// node, arity times.
type Identity struct {
	node     Node
	constant float64
	arity    int
}

func NewConstant(f float64, arity int) *Identity {
	if arity < 1 {
		arity = 1
	}
	return &Identity{constant: f, arity: arity}
}

// Replicate wraps a copy of the scalar node so that its result is repeated
// arity times.
func Replicate(node Node, arity int) (*Identity, error) {
	if node.Arity() != 1 {
		return nil, errors.Wrapf(ErrArityMismatch, "only scalar nodes can be replicated, given arity %d", node.Arity())
	}
	if arity < 1 {
		arity = 1
	}
	return &Identity{node: node.Clone(), arity: arity}, nil
}

func (i *Identity) Push(record Record) {
	if i.node != nil {
		i.node.Push(record)
	}
}

func (i *Identity) Result() (Value, error) {
	f := i.constant
	if i.node != nil {
		v, err := i.node.Result()
		if err != nil {
			return nil, err
		}
		f = v.Float()
	}

	out := make(Value, i.arity)
	for k := range out {
		out[k] = f
	}
	return out, nil
}

func (i *Identity) Window() int {
	if i.node != nil {
		return i.node.Window()
	}
	return 1
}

func (i *Identity) Arity() int {
	return i.arity
}

func (i *Identity) Dependency() []string {
	if i.node != nil {
		return i.node.Dependency()
	}
	return nil
}

func (i *Identity) IsFull() bool {
	if i.node != nil {
		return i.node.IsFull()
	}
	return true
}

func (i *Identity) Clone() Node {
	c := *i
	if i.node != nil {
		c.node = i.node.Clone()
	}
	return &c
}

// Latest yields the most recent value of a single field.
type Latest struct {
	leafBase
	value float64
}

func NewLatest(field string) *Latest {
	return &Latest{
		leafBase: newLeafBase([]string{field}, 1),
	}
}

func (l *Latest) Push(record Record) {
	if v, ok := l.read(record); ok {
		l.value = v
		l.count++
	}
}

func (l *Latest) Result() (Value, error) {
	if l.count == 0 {
		return nil, ErrNoData
	}
	return Scalar(l.value), nil
}

func (l *Latest) Clone() Node {
	c := *l
	return &c
}
