package accumulator

import (
	"math"
)

// Function applies a float function to every element of its operand.
type Function struct {
	node Node
	name string
	fn   func(float64) float64

	memo memo
}

// Func wraps the operand x with the elementwise function fn.
func Func(x interface{}, name string, fn func(float64) float64) (Node, error) {
	node, err := asOwnedNode(x)
	if err != nil {
		return nil, err
	}

	return &Function{node: node, name: name, fn: fn}, nil
}

func Negative(x interface{}) (Node, error) {
	return Func(x, "neg", func(f float64) float64 { return -f })
}

func Exp(x interface{}) (Node, error)   { return Func(x, "exp", math.Exp) }
func Log(x interface{}) (Node, error)   { return Func(x, "log", math.Log) }
func Sqrt(x interface{}) (Node, error)  { return Func(x, "sqrt", math.Sqrt) }
func Abs(x interface{}) (Node, error)   { return Func(x, "abs", math.Abs) }
func Acos(x interface{}) (Node, error)  { return Func(x, "acos", math.Acos) }
func Acosh(x interface{}) (Node, error) { return Func(x, "acosh", math.Acosh) }
func Asin(x interface{}) (Node, error)  { return Func(x, "asin", math.Asin) }
func Asinh(x interface{}) (Node, error) { return Func(x, "asinh", math.Asinh) }

func Sign(x interface{}) (Node, error) { return Func(x, "sign", sign) }

func PositivePart(x interface{}) (Node, error) {
	return Func(x, "positive", func(f float64) float64 { return math.Max(f, 0) })
}

func NegativePart(x interface{}) (Node, error) {
	return Func(x, "negative", func(f float64) float64 { return math.Min(f, 0) })
}

func Pow(x interface{}, n float64) (Node, error) {
	return Func(x, "pow", func(f float64) float64 { return math.Pow(f, n) })
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return f
}

func (f *Function) Push(record Record) {
	f.memo.invalidate()
	f.node.Push(record)
}

func (f *Function) Result() (Value, error) {
	return f.memo.get(f.compute)
}

func (f *Function) compute() (Value, error) {
	v, err := f.node.Result()
	if err != nil {
		return nil, err
	}

	out := make(Value, len(v))
	for i := range v {
		out[i] = f.fn(v[i])
	}
	return out, nil
}

func (f *Function) Window() int          { return f.node.Window() }
func (f *Function) Arity() int           { return f.node.Arity() }
func (f *Function) Dependency() []string { return f.node.Dependency() }
func (f *Function) IsFull() bool         { return f.node.IsFull() }
func (f *Function) Name() string         { return f.name }

func (f *Function) Clone() Node {
	return &Function{node: f.node.Clone(), name: f.name, fn: f.fn, memo: f.memo}
}
