package accumulator

import (
	"github.com/pkg/errors"
)

// An operand is anything that can take part in an expression:
//
//   - a Node, used as is (a scalar node is replicated when a tuple is needed);
//   - a number (float64, float32, int, int32, int64) or a bool, wrapped into a
//     constant Identity node;
//   - a string, read as a field name and wrapped into a Latest node.
//
// Every coercion returns a node owned by the caller: nodes are deep-copied.

// AsNode converts the operand x into a node of the given arity.
func AsNode(x interface{}, arity int) (Node, error) {
	if arity < 1 {
		arity = 1
	}

	switch tp := x.(type) {
	case Node:
		if tp.Arity() == arity {
			return tp.Clone(), nil
		}
		if tp.Arity() == 1 {
			return replicate(tp, arity)
		}
		return nil, errors.Wrapf(ErrArityMismatch, "node arity %d, expecting %d", tp.Arity(), arity)

	case string:
		latest := NewLatest(tp)
		if arity == 1 {
			return latest, nil
		}
		return replicate(latest, arity)
	}

	if f, ok := toFloat(x); ok {
		return NewConstant(f, arity), nil
	}

	return nil, errors.Wrapf(ErrInvalidOperand, "given %T", x)
}

// asOwnedNode converts x into a node keeping the arity of node operands.
func asOwnedNode(x interface{}) (Node, error) {
	if n, ok := x.(Node); ok {
		return n.Clone(), nil
	}
	return AsNode(x, 1)
}

// coercePair applies the binary broadcasting rule: equal arities are combined
// elementwise, a scalar side is replicated to the other side's arity.
func coercePair(left, right interface{}) (Node, Node, error) {
	ln, lok := left.(Node)
	rn, rok := right.(Node)

	switch {
	case lok && rok:
		switch {
		case ln.Arity() == rn.Arity():
			return ln.Clone(), rn.Clone(), nil
		case ln.Arity() == 1:
			l, err := replicate(ln, rn.Arity())
			if err != nil {
				return nil, nil, err
			}
			return l, rn.Clone(), nil
		case rn.Arity() == 1:
			r, err := replicate(rn, ln.Arity())
			if err != nil {
				return nil, nil, err
			}
			return ln.Clone(), r, nil
		}
		return nil, nil, errors.Wrapf(ErrArityMismatch, "left arity %d, right arity %d", ln.Arity(), rn.Arity())

	case lok:
		r, err := AsNode(right, ln.Arity())
		if err != nil {
			return nil, nil, err
		}
		return ln.Clone(), r, nil

	case rok:
		l, err := AsNode(left, rn.Arity())
		if err != nil {
			return nil, nil, err
		}
		return l, rn.Clone(), nil
	}

	l, err := AsNode(left, 1)
	if err != nil {
		return nil, nil, err
	}

	r, err := AsNode(right, 1)
	if err != nil {
		return nil, nil, err
	}

	return l, r, nil
}

func toFloat(x interface{}) (float64, bool) {
	switch tp := x.(type) {
	case float64:
		return tp, true
	case float32:
		return float64(tp), true
	case int:
		return float64(tp), true
	case int32:
		return float64(tp), true
	case int64:
		return float64(tp), true
	case bool:
		return boolToFloat(tp), true
	}
	return 0, false
}

func replicate(node Node, arity int) (Node, error) {
	r, err := Replicate(node, arity)
	if err != nil {
		return nil, err
	}
	return r, nil
}
