package accumulator

type binaryOp struct {
	name string
	fn   func(a, b float64) float64
}

var (
	opAdd = binaryOp{"add", func(a, b float64) float64 { return a + b }}
	opSub = binaryOp{"sub", func(a, b float64) float64 { return a - b }}
	opMul = binaryOp{"mul", func(a, b float64) float64 { return a * b }}
	opDiv = binaryOp{"div", func(a, b float64) float64 { return a / b }}

	opLt = binaryOp{"lt", func(a, b float64) float64 { return boolToFloat(a < b) }}
	opLe = binaryOp{"le", func(a, b float64) float64 { return boolToFloat(a <= b) }}
	opGt = binaryOp{"gt", func(a, b float64) float64 { return boolToFloat(a > b) }}
	opGe = binaryOp{"ge", func(a, b float64) float64 { return boolToFloat(a >= b) }}
	opEq = binaryOp{"eq", func(a, b float64) float64 { return boolToFloat(a == b) }}
	opNe = binaryOp{"ne", func(a, b float64) float64 { return boolToFloat(a != b) }}

	opAnd = binaryOp{"and", func(a, b float64) float64 { return boolToFloat(Truthy(a) && Truthy(b)) }}
	opOr  = binaryOp{"or", func(a, b float64) float64 { return boolToFloat(Truthy(a) || Truthy(b)) }}
)

// Binary combines two nodes of the same arity elementwise.
type Binary struct {
	left, right Node
	op          binaryOp

	memo memo
}

func newBinary(left, right interface{}, op binaryOp) (Node, error) {
	l, r, err := coercePair(left, right)
	if err != nil {
		return nil, err
	}

	return &Binary{left: l, right: r, op: op}, nil
}

func Add(left, right interface{}) (Node, error) { return newBinary(left, right, opAdd) }
func Sub(left, right interface{}) (Node, error) { return newBinary(left, right, opSub) }
func Mul(left, right interface{}) (Node, error) { return newBinary(left, right, opMul) }
func Div(left, right interface{}) (Node, error) { return newBinary(left, right, opDiv) }

// comparisons yield 1 for true and 0 for false
func Lt(left, right interface{}) (Node, error) { return newBinary(left, right, opLt) }
func Le(left, right interface{}) (Node, error) { return newBinary(left, right, opLe) }
func Gt(left, right interface{}) (Node, error) { return newBinary(left, right, opGt) }
func Ge(left, right interface{}) (Node, error) { return newBinary(left, right, opGe) }
func Eq(left, right interface{}) (Node, error) { return newBinary(left, right, opEq) }
func Ne(left, right interface{}) (Node, error) { return newBinary(left, right, opNe) }

func And(left, right interface{}) (Node, error) { return newBinary(left, right, opAnd) }
func Or(left, right interface{}) (Node, error)  { return newBinary(left, right, opOr) }

func (b *Binary) Push(record Record) {
	b.memo.invalidate()
	b.left.Push(record)
	b.right.Push(record)
}

func (b *Binary) Result() (Value, error) {
	return b.memo.get(b.compute)
}

func (b *Binary) compute() (Value, error) {
	l, err := b.left.Result()
	if err != nil {
		return nil, err
	}

	r, err := b.right.Result()
	if err != nil {
		return nil, err
	}

	out := make(Value, len(l))
	for i := range l {
		out[i] = b.op.fn(l[i], r[i])
	}
	return out, nil
}

func (b *Binary) Window() int {
	return maxInt(b.left.Window(), b.right.Window())
}

func (b *Binary) Arity() int {
	return b.left.Arity()
}

func (b *Binary) Dependency() []string {
	return unionFields(b.left.Dependency(), b.right.Dependency())
}

func (b *Binary) IsFull() bool {
	return b.left.IsFull() && b.right.IsFull()
}

func (b *Binary) Clone() Node {
	return &Binary{left: b.left.Clone(), right: b.right.Clone(), op: b.op, memo: b.memo}
}

// Op returns the name of the operator, e.g. "add".
func (b *Binary) Op() string {
	return b.op.name
}
