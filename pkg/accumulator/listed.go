package accumulator

import (
	"github.com/pkg/errors"
)

// Listed concatenates the results of two nodes into one tuple.
type Listed struct {
	left, right Node

	memo memo
}

// List bundles left and right; scalars and field names are accepted on
// either side.
func List(left, right interface{}) (Node, error) {
	l, err := asOwnedNode(left)
	if err != nil {
		return nil, err
	}

	r, err := asOwnedNode(right)
	if err != nil {
		return nil, err
	}

	return &Listed{left: l, right: r}, nil
}

func (l *Listed) Push(record Record) {
	l.memo.invalidate()
	l.left.Push(record)
	l.right.Push(record)
}

func (l *Listed) Result() (Value, error) {
	return l.memo.get(l.compute)
}

func (l *Listed) compute() (Value, error) {
	lv, err := l.left.Result()
	if err != nil {
		return nil, err
	}

	rv, err := l.right.Result()
	if err != nil {
		return nil, err
	}

	out := make(Value, 0, len(lv)+len(rv))
	out = append(out, lv...)
	out = append(out, rv...)
	return out, nil
}

func (l *Listed) Window() int          { return maxInt(l.left.Window(), l.right.Window()) }
func (l *Listed) Arity() int           { return l.left.Arity() + l.right.Arity() }
func (l *Listed) IsFull() bool         { return l.left.IsFull() && l.right.IsFull() }
func (l *Listed) Dependency() []string { return unionFields(l.left.Dependency(), l.right.Dependency()) }

func (l *Listed) Clone() Node {
	return &Listed{left: l.left.Clone(), right: l.right.Clone(), memo: l.memo}
}

// Truncated extracts one element or a contiguous range of a tuple node.
type Truncated struct {
	node        Node
	start, stop int
	arity       int

	memo memo
}

// Index returns the i-th element of node; negative indexes count from the end.
func Index(node Node, i int) (Node, error) {
	n := node.Arity()
	if n == 1 {
		return nil, ErrScalarIndex
	}

	if i < -n || i >= n {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, arity %d", i, n)
	}

	if i < 0 {
		i += n
	}

	return &Truncated{node: node.Clone(), start: i, stop: i + 1, arity: 1}, nil
}

// Slice returns elements [start, stop) of node. Negative bounds count from
// the end and bounds past the tuple are clamped, as for fixed-length sequences.
func Slice(node Node, start, stop int) (Node, error) {
	n := node.Arity()
	if n == 1 {
		return nil, ErrScalarIndex
	}

	s, e := clampBound(start, n), clampBound(stop, n)
	if e-s <= 0 {
		return nil, errors.Wrapf(ErrInvertedRange, "start %d, stop %d, arity %d", start, stop, n)
	}

	return &Truncated{node: node.Clone(), start: s, stop: e, arity: e - s}, nil
}

func clampBound(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func (t *Truncated) Push(record Record) {
	t.memo.invalidate()
	t.node.Push(record)
}

func (t *Truncated) Result() (Value, error) {
	return t.memo.get(func() (Value, error) {
		v, err := t.node.Result()
		if err != nil {
			return nil, err
		}
		return v[t.start:t.stop].Copy(), nil
	})
}

func (t *Truncated) Window() int          { return t.node.Window() }
func (t *Truncated) Arity() int           { return t.arity }
func (t *Truncated) IsFull() bool         { return t.node.IsFull() }
func (t *Truncated) Dependency() []string { return t.node.Dependency() }

func (t *Truncated) Clone() Node {
	c := *t
	c.node = t.node.Clone()
	return &c
}
