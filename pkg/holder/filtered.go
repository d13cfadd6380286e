package holder

import (
	"math"

	"github.com/pkg/errors"

	"github.com/c9s/xfactor/pkg/accumulator"
)

// Filtered keeps the values of the entities whose flag is true.
type Filtered struct {
	computer, flag Holder

	cache cache
}

func Filter(computer Holder, flag interface{}) (*Filtered, error) {
	f, err := asHolder(flag)
	if err != nil {
		return nil, errors.Wrap(err, "filter flag")
	}

	return &Filtered{computer: computer.Clone(), flag: f}, nil
}

func (f *Filtered) Push(tick Tick) {
	f.cache.invalidate()
	f.computer.Push(tick)
	f.flag.Push(tick)
}

// Value only returns the entities that pass the filter.
func (f *Filtered) Value() Values {
	if f.cache.fresh {
		return f.cache.values.Copy()
	}

	flags := f.flag.Value()
	values := Values{}
	for name, v := range f.computer.Value() {
		if accumulator.Truthy(flags[name]) {
			values[name] = v
		}
	}
	return f.cache.store(values)
}

func (f *Filtered) ValueByName(name string) float64 {
	if v, ok := f.cache.lookup(name); ok {
		return v
	}

	if !accumulator.Truthy(f.flag.ValueByName(name)) {
		return math.NaN()
	}
	return f.computer.ValueByName(name)
}

func (f *Filtered) ValueByNames(names []string) Values { return valueByNames(f, names) }
func (f *Filtered) SymbolList() []string               { return f.computer.SymbolList() }
func (f *Filtered) IsFull() bool                       { return f.computer.IsFull() && f.flag.IsFull() }

func (f *Filtered) IsFullByName(name string) bool {
	return f.computer.IsFullByName(name) && f.flag.IsFullByName(name)
}

func (f *Filtered) Window() int {
	return maxInt(f.computer.Window(), f.flag.Window())
}

func (f *Filtered) Dependency() []string {
	return UnionSymbols(f.computer.Dependency(), f.flag.Dependency())
}

func (f *Filtered) Clone() Holder {
	return &Filtered{computer: f.computer.Clone(), flag: f.flag.Clone()}
}

// Shifted returns, for every entity, the value its inner holder had n ticks
// ago. Missing values are shifted like any other value.
type Shifted struct {
	inner   Holder
	n       int
	history map[string]*history
	ticks   int

	cache cache
}

type history struct {
	values []float64
	head   int
	size   int
}

func (h *history) push(v float64) {
	capacity := len(h.values)
	if h.size < capacity {
		h.values[(h.head+h.size)%capacity] = v
		h.size++
		return
	}
	h.values[h.head] = v
	h.head = (h.head + 1) % capacity
}

func (h *history) oldest() float64 {
	if h.size < len(h.values) {
		return math.NaN()
	}
	return h.values[h.head]
}

func (h *history) clone() *history {
	c := &history{values: make([]float64, len(h.values)), head: h.head, size: h.size}
	copy(c.values, h.values)
	return c
}

func Shift(inner Holder, n int) (*Shifted, error) {
	if n < 1 {
		return nil, errors.Wrapf(accumulator.ErrInvalidShift, "given %d", n)
	}

	return &Shifted{
		inner:   inner.Clone(),
		n:       n,
		history: map[string]*history{},
	}, nil
}

func (s *Shifted) Push(tick Tick) {
	s.cache.invalidate()
	s.inner.Push(tick)
	s.ticks++

	for name, v := range s.inner.Value() {
		h, ok := s.history[name]
		if !ok {
			h = &history{values: make([]float64, s.n+1)}
			s.history[name] = h
		}
		h.push(v)
	}
}

func (s *Shifted) Value() Values {
	if s.cache.fresh {
		return s.cache.values.Copy()
	}

	values := make(Values, len(s.history))
	for name, h := range s.history {
		values[name] = h.oldest()
	}
	return s.cache.store(values)
}

func (s *Shifted) ValueByName(name string) float64 {
	if h, ok := s.history[name]; ok {
		return h.oldest()
	}
	return math.NaN()
}

func (s *Shifted) ValueByNames(names []string) Values { return valueByNames(s, names) }
func (s *Shifted) SymbolList() []string               { return s.inner.SymbolList() }

func (s *Shifted) IsFull() bool {
	return s.inner.IsFull() && s.ticks >= s.Window()
}

func (s *Shifted) IsFullByName(name string) bool {
	h, ok := s.history[name]
	return ok && h.size == len(h.values) && s.inner.IsFullByName(name)
}

func (s *Shifted) Window() int          { return s.inner.Window() + s.n }
func (s *Shifted) Dependency() []string { return s.inner.Dependency() }

func (s *Shifted) Clone() Holder {
	c := &Shifted{
		inner:   s.inner.Clone(),
		n:       s.n,
		ticks:   s.ticks,
		history: make(map[string]*history, len(s.history)),
	}
	for name, h := range s.history {
		c.history[name] = h.clone()
	}
	return c
}

// IIF selects, per entity, the value of left when flag is true, else the
// value of right.
type IIF struct {
	flag, left, right Holder

	cache cache
}

func NewIIF(flag, left, right interface{}) (*IIF, error) {
	if !isHolderLike(flag) && !isHolderLike(left) && !isHolderLike(right) {
		return nil, errors.Wrap(ErrNoHolderOperand, "iif")
	}

	f, err := asHolder(flag)
	if err != nil {
		return nil, errors.Wrap(err, "iif flag")
	}

	l, err := asHolder(left)
	if err != nil {
		return nil, errors.Wrap(err, "iif left")
	}

	r, err := asHolder(right)
	if err != nil {
		return nil, errors.Wrap(err, "iif right")
	}

	return &IIF{flag: f, left: l, right: r}, nil
}

func (i *IIF) Push(tick Tick) {
	i.cache.invalidate()
	i.flag.Push(tick)
	i.left.Push(tick)
	i.right.Push(tick)
}

func (i *IIF) Value() Values {
	if i.cache.fresh {
		return i.cache.values.Copy()
	}

	flags := i.flag.Value()
	left := i.left.Value()
	right := i.right.Value()

	values := Values{}
	for _, name := range i.SymbolList() {
		values[name] = selectValue(flags.get(name), left.get(name), right.get(name))
	}
	return i.cache.store(values)
}

func (i *IIF) ValueByName(name string) float64 {
	if v, ok := i.cache.lookup(name); ok {
		return v
	}
	return selectValue(i.flag.ValueByName(name), i.left.ValueByName(name), i.right.ValueByName(name))
}

func selectValue(flag, left, right float64) float64 {
	if math.IsNaN(flag) {
		return math.NaN()
	}
	if accumulator.Truthy(flag) {
		return left
	}
	return right
}

func (i *IIF) ValueByNames(names []string) Values { return valueByNames(i, names) }

func (i *IIF) SymbolList() []string {
	return UnionSymbols(i.flag.SymbolList(), i.left.SymbolList(), i.right.SymbolList())
}

func (i *IIF) IsFull() bool {
	return i.flag.IsFull() && i.left.IsFull() && i.right.IsFull()
}

func (i *IIF) IsFullByName(name string) bool {
	return i.flag.IsFullByName(name) && i.left.IsFullByName(name) && i.right.IsFullByName(name)
}

func (i *IIF) Window() int {
	return maxInt(i.flag.Window(), maxInt(i.left.Window(), i.right.Window()))
}

func (i *IIF) Dependency() []string {
	return UnionSymbols(i.flag.Dependency(), i.left.Dependency(), i.right.Dependency())
}

func (i *IIF) Clone() Holder {
	return &IIF{flag: i.flag.Clone(), left: i.left.Clone(), right: i.right.Clone()}
}
