package accumulator

import (
	"math"

	"github.com/pkg/errors"
)

// Compounded feeds the result of left, mapped positionally onto the
// dependency fields of right, as the per-tick input of right.
type Compounded struct {
	left, right Node
	fields      []string

	memo memo
}

// Compound pipes left into right. right is either a Node or a constructor
// returning a Node, which is called with no argument.
func Compound(left Node, right interface{}) (Node, error) {
	var r Node
	switch tp := right.(type) {
	case Node:
		r = tp.Clone()
	case func() Node:
		r = tp()
	default:
		return nil, errors.Wrapf(ErrInvalidOperand, "%T can not be compounded", right)
	}

	fields := r.Dependency()
	if len(fields) == 0 {
		return nil, errors.Wrap(ErrEmptyDependency, "compounded node has no input field")
	}

	if left.Arity() != len(fields) {
		return nil, errors.Wrapf(ErrArityMismatch, "left arity %d, right expects fields %v", left.Arity(), fields)
	}

	return &Compounded{left: left.Clone(), right: r, fields: fields}, nil
}

func (c *Compounded) Push(record Record) {
	c.memo.invalidate()
	c.left.Push(record)

	v, err := c.left.Result()
	if err != nil {
		return
	}

	input := make(Record, len(c.fields))
	for i, f := range c.fields {
		input[f] = v[i]
	}
	c.right.Push(input)
}

func (c *Compounded) Result() (Value, error) {
	return c.memo.get(c.right.Result)
}

func (c *Compounded) Window() int {
	return c.left.Window() + c.right.Window() - 1
}

func (c *Compounded) Arity() int           { return c.right.Arity() }
func (c *Compounded) Dependency() []string { return c.left.Dependency() }
func (c *Compounded) IsFull() bool         { return c.left.IsFull() && c.right.IsFull() }

func (c *Compounded) Clone() Node {
	return &Compounded{left: c.left.Clone(), right: c.right.Clone(), fields: c.fields, memo: c.memo}
}

// IIF selects the result of left when the scalar flag is true, else the
// result of right. A NaN flag is missing and yields NaN in every element.
type IIF struct {
	flag, left, right Node

	memo memo
}

func NewIIF(flag, left, right interface{}) (Node, error) {
	f, err := AsNode(flag, 1)
	if err != nil {
		return nil, errors.Wrap(err, "iif flag")
	}

	l, r, err := coercePair(left, right)
	if err != nil {
		return nil, err
	}

	return &IIF{flag: f, left: l, right: r}, nil
}

func (n *IIF) Push(record Record) {
	n.memo.invalidate()
	n.flag.Push(record)
	n.left.Push(record)
	n.right.Push(record)
}

func (n *IIF) Result() (Value, error) {
	return n.memo.get(n.compute)
}

func (n *IIF) compute() (Value, error) {
	f, err := n.flag.Result()
	if err != nil {
		return nil, err
	}

	flag := f.Float()
	if math.IsNaN(flag) {
		out := make(Value, n.Arity())
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}

	if Truthy(flag) {
		return n.left.Result()
	}
	return n.right.Result()
}

func (n *IIF) Window() int {
	return maxInt(n.flag.Window(), maxInt(n.left.Window(), n.right.Window()))
}

func (n *IIF) Arity() int { return n.left.Arity() }

func (n *IIF) Dependency() []string {
	return unionFields(n.flag.Dependency(), n.left.Dependency(), n.right.Dependency())
}

func (n *IIF) IsFull() bool {
	return n.flag.IsFull() && n.left.IsFull() && n.right.IsFull()
}

func (n *IIF) Clone() Node {
	return &IIF{flag: n.flag.Clone(), left: n.left.Clone(), right: n.right.Clone(), memo: n.memo}
}

// Shifted delays the result of a node by n ticks.
type Shifted struct {
	node    Node
	n       int
	history []shiftedValue
	head    int
	size    int
}

type shiftedValue struct {
	value Value
	ok    bool
}

func Shift(x interface{}, n int) (Node, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidShift, "given %d", n)
	}

	node, err := asOwnedNode(x)
	if err != nil {
		return nil, err
	}

	return &Shifted{node: node, n: n, history: make([]shiftedValue, n+1)}, nil
}

func (s *Shifted) Push(record Record) {
	s.node.Push(record)

	v, err := s.node.Result()
	entry := shiftedValue{value: v, ok: err == nil}

	capacity := len(s.history)
	if s.size < capacity {
		s.history[(s.head+s.size)%capacity] = entry
		s.size++
		return
	}

	s.history[s.head] = entry
	s.head = (s.head + 1) % capacity
}

func (s *Shifted) Result() (Value, error) {
	if s.size < len(s.history) {
		return nil, ErrNotEnoughData
	}

	entry := s.history[s.head]
	if !entry.ok {
		return nil, ErrNotEnoughData
	}
	return entry.value.Copy(), nil
}

func (s *Shifted) Window() int          { return s.node.Window() + s.n }
func (s *Shifted) Arity() int           { return s.node.Arity() }
func (s *Shifted) Dependency() []string { return s.node.Dependency() }
func (s *Shifted) IsFull() bool         { return s.size == len(s.history) && s.node.IsFull() }

func (s *Shifted) Clone() Node {
	c := &Shifted{
		node:    s.node.Clone(),
		n:       s.n,
		history: make([]shiftedValue, len(s.history)),
		head:    s.head,
		size:    s.size,
	}
	for i, e := range s.history {
		c.history[i] = shiftedValue{value: e.value.Copy(), ok: e.ok}
	}
	return c
}
