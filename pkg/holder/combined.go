package holder

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/c9s/xfactor/pkg/accumulator"
)

// Combined applies a binary operator entity by entity over the union of the
// entity sets of both sides. A missing side gives a missing result.
type Combined struct {
	left, right Holder
	name        string
	op          func(a, b float64) float64

	cache cache
}

func newCombined(left, right interface{}, name string, op func(a, b float64) float64) (*Combined, error) {
	if !isHolderLike(left) && !isHolderLike(right) {
		return nil, errors.Wrapf(ErrNoHolderOperand, "%s(%T, %T)", name, left, right)
	}

	l, err := asHolder(left)
	if err != nil {
		return nil, err
	}

	r, err := asHolder(right)
	if err != nil {
		return nil, err
	}

	return &Combined{left: l, right: r, name: name, op: op}, nil
}

func Add(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "add", func(a, b float64) float64 { return a + b })
}

func Sub(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "sub", func(a, b float64) float64 { return a - b })
}

func Mul(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "mul", func(a, b float64) float64 { return a * b })
}

func Div(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "div", func(a, b float64) float64 { return a / b })
}

func Lt(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "lt", func(a, b float64) float64 { return boolToFloat(a < b) })
}

func Le(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "le", func(a, b float64) float64 { return boolToFloat(a <= b) })
}

func Gt(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "gt", func(a, b float64) float64 { return boolToFloat(a > b) })
}

func Ge(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "ge", func(a, b float64) float64 { return boolToFloat(a >= b) })
}

func Eq(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "eq", func(a, b float64) float64 { return boolToFloat(a == b) })
}

func Ne(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "ne", func(a, b float64) float64 { return boolToFloat(a != b) })
}

func And(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "and", func(a, b float64) float64 {
		return boolToFloat(accumulator.Truthy(a) && accumulator.Truthy(b))
	})
}

func Or(left, right interface{}) (*Combined, error) {
	return newCombined(left, right, "or", func(a, b float64) float64 {
		return boolToFloat(accumulator.Truthy(a) || accumulator.Truthy(b))
	})
}

func (c *Combined) Push(tick Tick) {
	c.cache.invalidate()
	c.left.Push(tick)
	c.right.Push(tick)
}

func (c *Combined) Value() Values {
	if c.cache.fresh {
		return c.cache.values.Copy()
	}
	return c.cache.store(c.left.Value().Combine(c.right.Value(), c.op))
}

func (c *Combined) ValueByName(name string) float64 {
	if v, ok := c.cache.lookup(name); ok {
		return v
	}
	return combine(c.left.ValueByName(name), c.right.ValueByName(name), c.op)
}

func (c *Combined) ValueByNames(names []string) Values {
	return valueByNames(c, names)
}

func (c *Combined) SymbolList() []string {
	return UnionSymbols(c.left.SymbolList(), c.right.SymbolList())
}

func (c *Combined) IsFull() bool { return c.left.IsFull() && c.right.IsFull() }

func (c *Combined) IsFullByName(name string) bool {
	return c.left.IsFullByName(name) && c.right.IsFullByName(name)
}

func (c *Combined) Window() int {
	return maxInt(c.left.Window(), c.right.Window())
}

func (c *Combined) Dependency() []string {
	return UnionSymbols(c.left.Dependency(), c.right.Dependency())
}

func (c *Combined) Clone() Holder {
	return &Combined{left: c.left.Clone(), right: c.right.Clone(), name: c.name, op: c.op}
}

// Op returns the operator name, e.g. "add".
func (c *Combined) Op() string { return c.name }

// Mapped applies an elementwise function on every entity value.
type Mapped struct {
	inner Holder
	name  string
	fn    func(float64) float64

	cache cache
}

func Map(x interface{}, name string, fn func(float64) float64) (*Mapped, error) {
	if !isHolderLike(x) {
		return nil, errors.Wrapf(ErrNoHolderOperand, "%s(%T)", name, x)
	}

	inner, err := asHolder(x)
	if err != nil {
		return nil, err
	}

	return &Mapped{inner: inner, name: name, fn: fn}, nil
}

func Neg(x interface{}) (*Mapped, error) {
	return Map(x, "neg", func(f float64) float64 { return -f })
}

func Abs(x interface{}) (*Mapped, error)  { return Map(x, "abs", math.Abs) }
func Exp(x interface{}) (*Mapped, error)  { return Map(x, "exp", math.Exp) }
func Log(x interface{}) (*Mapped, error)  { return Map(x, "log", math.Log) }
func Sqrt(x interface{}) (*Mapped, error) { return Map(x, "sqrt", math.Sqrt) }

func Acos(x interface{}) (*Mapped, error)  { return Map(x, "acos", math.Acos) }
func Acosh(x interface{}) (*Mapped, error) { return Map(x, "acosh", math.Acosh) }
func Asin(x interface{}) (*Mapped, error)  { return Map(x, "asin", math.Asin) }
func Asinh(x interface{}) (*Mapped, error) { return Map(x, "asinh", math.Asinh) }

func Sign(x interface{}) (*Mapped, error) {
	return Map(x, "sign", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
		return f
	})
}

func Pow(x interface{}, n float64) (*Mapped, error) {
	return Map(x, "pow", func(f float64) float64 { return math.Pow(f, n) })
}

func (m *Mapped) Push(tick Tick) {
	m.cache.invalidate()
	m.inner.Push(tick)
}

func (m *Mapped) Value() Values {
	if m.cache.fresh {
		return m.cache.values.Copy()
	}
	return m.cache.store(m.inner.Value().Apply(m.fn))
}

func (m *Mapped) ValueByName(name string) float64 {
	if v, ok := m.cache.lookup(name); ok {
		return v
	}

	v := m.inner.ValueByName(name)
	if math.IsNaN(v) {
		return v
	}
	return m.fn(v)
}

func (m *Mapped) ValueByNames(names []string) Values { return valueByNames(m, names) }
func (m *Mapped) SymbolList() []string               { return m.inner.SymbolList() }
func (m *Mapped) IsFull() bool                       { return m.inner.IsFull() }
func (m *Mapped) IsFullByName(name string) bool      { return m.inner.IsFullByName(name) }
func (m *Mapped) Window() int                        { return m.inner.Window() }
func (m *Mapped) Dependency() []string               { return m.inner.Dependency() }

func (m *Mapped) Clone() Holder {
	return &Mapped{inner: m.inner.Clone(), name: m.name, fn: m.fn}
}

func valueByNames(h Holder, names []string) Values {
	out := make(Values, len(names))
	for _, name := range names {
		out[name] = h.ValueByName(name)
	}
	return out
}

// UnionSymbols merges entity lists into one sorted list without duplicates.
func UnionSymbols(lists ...[]string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
