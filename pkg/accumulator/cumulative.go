package accumulator

import (
	"math"
)

// Reduced folds every value ever pushed with a binary reducer, e.g. sum or
// running maximum.
type Reduced struct {
	leafBase
	name    string
	reduce  func(acc, v float64) float64
	finish  func(acc float64, count int) float64
	initial float64
	acc     float64
}

func newReduced(dependency interface{}, name string, initial float64, reduce func(acc, v float64) float64, finish func(acc float64, count int) float64) (Node, error) {
	return newLeaf(dependency, oneField, func(fields []string) Node {
		return &Reduced{
			leafBase: newLeafBase(fields, 1),
			name:     name,
			reduce:   reduce,
			finish:   finish,
			initial:  initial,
			acc:      initial,
		}
	})
}

func NewMax(dependency interface{}) (Node, error) {
	return newReduced(dependency, "max", math.Inf(-1), math.Max, nil)
}

func NewMin(dependency interface{}) (Node, error) {
	return newReduced(dependency, "min", math.Inf(1), math.Min, nil)
}

func NewSum(dependency interface{}) (Node, error) {
	return newReduced(dependency, "sum", 0, func(acc, v float64) float64 { return acc + v }, nil)
}

func NewProduct(dependency interface{}) (Node, error) {
	return newReduced(dependency, "product", 1, func(acc, v float64) float64 { return acc * v }, nil)
}

func NewAverage(dependency interface{}) (Node, error) {
	return newReduced(dependency, "average", 0,
		func(acc, v float64) float64 { return acc + v },
		func(acc float64, count int) float64 { return acc / float64(count) })
}

func (r *Reduced) Push(record Record) {
	v, ok := r.read(record)
	if !ok {
		return
	}

	r.acc = r.reduce(r.acc, v)
	r.count++
}

func (r *Reduced) Result() (Value, error) {
	if r.count == 0 {
		return nil, ErrNoData
	}

	if r.finish != nil {
		return Scalar(r.finish(r.acc, r.count)), nil
	}
	return Scalar(r.acc), nil
}

func (r *Reduced) Clone() Node {
	c := *r
	c.fields = r.Dependency()
	return &c
}

// Paired compares the latest value with the previous one: difference,
// simple return or log return.
type Paired struct {
	leafBase
	name      string
	fn        func(prev, curr float64) float64
	prev, cur float64
}

func newPaired(dependency interface{}, name string, fn func(prev, curr float64) float64) (Node, error) {
	return newLeaf(dependency, oneField, func(fields []string) Node {
		return &Paired{leafBase: newLeafBase(fields, 2), name: name, fn: fn}
	})
}

func NewDiff(dependency interface{}) (Node, error) {
	return newPaired(dependency, "diff", func(prev, curr float64) float64 { return curr - prev })
}

func NewSimpleReturn(dependency interface{}) (Node, error) {
	return newPaired(dependency, "return", func(prev, curr float64) float64 { return curr/prev - 1.0 })
}

func NewLogReturn(dependency interface{}) (Node, error) {
	return newPaired(dependency, "logreturn", func(prev, curr float64) float64 { return math.Log(curr / prev) })
}

func (p *Paired) Push(record Record) {
	v, ok := p.read(record)
	if !ok {
		return
	}

	p.prev, p.cur = p.cur, v
	p.count++
}

func (p *Paired) Result() (Value, error) {
	switch p.count {
	case 0:
		return nil, ErrNoData
	case 1:
		return nil, ErrNotEnoughData
	}
	return Scalar(p.fn(p.prev, p.cur)), nil
}

func (p *Paired) Clone() Node {
	c := *p
	c.fields = p.Dependency()
	return &c
}

// Variance is the running sample variance, updated with Welford's method.
type Variance struct {
	leafBase
	mean, m2 float64
}

func NewVariance(dependency interface{}) (Node, error) {
	return newLeaf(dependency, oneField, func(fields []string) Node {
		return &Variance{leafBase: newLeafBase(fields, 2)}
	})
}

func (v *Variance) Push(record Record) {
	x, ok := v.read(record)
	if !ok {
		return
	}

	v.count++
	delta := x - v.mean
	v.mean += delta / float64(v.count)
	v.m2 += delta * (x - v.mean)
}

func (v *Variance) Result() (Value, error) {
	switch v.count {
	case 0:
		return nil, ErrNoData
	case 1:
		return nil, ErrNotEnoughData
	}
	return Scalar(v.m2 / float64(v.count-1)), nil
}

func (v *Variance) Clone() Node {
	c := *v
	c.fields = v.Dependency()
	return &c
}

// XAverage is the exponential moving average with alpha = 2 / (window + 1),
// seeded with the first value.
type XAverage struct {
	leafBase
	alpha float64
	value float64
}

func NewXAverage(window int, dependency interface{}) (Node, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}

	return newLeaf(dependency, oneField, func(fields []string) Node {
		return newXAverage(window, fields)
	})
}

func newXAverage(window int, fields []string) *XAverage {
	return &XAverage{
		leafBase: newLeafBase(fields, 1),
		alpha:    2.0 / (float64(window) + 1.0),
	}
}

func (x *XAverage) update(v float64) {
	if x.count == 0 {
		x.value = v
	} else {
		x.value += x.alpha * (v - x.value)
	}
	x.count++
}

func (x *XAverage) Push(record Record) {
	if v, ok := x.read(record); ok {
		x.update(v)
	}
}

func (x *XAverage) Result() (Value, error) {
	if x.count == 0 {
		return nil, ErrNoData
	}
	return Scalar(x.value), nil
}

func (x *XAverage) Clone() Node {
	c := *x
	c.fields = x.Dependency()
	return &c
}

// MACD is the difference between a short and a long exponential average.
type MACD struct {
	leafBase
	short, long *XAverage
}

func NewMACD(short, long int, dependency interface{}) (Node, error) {
	if err := checkWindow(short); err != nil {
		return nil, err
	}
	if err := checkWindow(long); err != nil {
		return nil, err
	}

	return newLeaf(dependency, oneField, func(fields []string) Node {
		return &MACD{
			leafBase: newLeafBase(fields, 1),
			short:    newXAverage(short, fields),
			long:     newXAverage(long, fields),
		}
	})
}

func (m *MACD) Push(record Record) {
	v, ok := m.read(record)
	if !ok {
		return
	}

	m.short.update(v)
	m.long.update(v)
	m.count++
}

func (m *MACD) Result() (Value, error) {
	if m.count == 0 {
		return nil, ErrNoData
	}
	return Scalar(m.short.value - m.long.value), nil
}

func (m *MACD) Clone() Node {
	c := *m
	c.fields = m.Dependency()
	c.short = m.short.Clone().(*XAverage)
	c.long = m.long.Clone().(*XAverage)
	return &c
}

// Extremum returns the larger (or smaller) of two fields of the same tick.
type Extremum struct {
	leafBase
	name  string
	fn    func(a, b float64) float64
	value float64
}

func newExtremum(dependency interface{}, name string, fn func(a, b float64) float64) (Node, error) {
	return newLeaf(dependency, twoFields, func(fields []string) Node {
		return &Extremum{leafBase: newLeafBase(fields, 1), name: name, fn: fn}
	})
}

func NewMaximum(dependency interface{}) (Node, error) {
	return newExtremum(dependency, "maximum", math.Max)
}

func NewMinimum(dependency interface{}) (Node, error) {
	return newExtremum(dependency, "minimum", math.Min)
}

func (e *Extremum) Push(record Record) {
	values, ok := e.readAll(record)
	if !ok {
		return
	}

	e.value = e.fn(values[0], values[1])
	e.count++
}

func (e *Extremum) Result() (Value, error) {
	if e.count == 0 {
		return nil, ErrNoData
	}
	return Scalar(e.value), nil
}

func (e *Extremum) Clone() Node {
	c := *e
	c.fields = e.Dependency()
	return &c
}
