package holder

import (
	"math"
	"sort"
)

// Values maps entity keys to their value at the current tick.
// NaN marks a missing value.
type Values map[string]float64

// Names returns the sorted entity keys.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Present returns the entities that have a value.
func (v Values) Present() Values {
	out := make(Values, len(v))
	for name, f := range v {
		if !math.IsNaN(f) {
			out[name] = f
		}
	}
	return out
}

func (v Values) Copy() Values {
	out := make(Values, len(v))
	for name, f := range v {
		out[name] = f
	}
	return out
}

// Sum adds the present values.
func (v Values) Sum() float64 {
	sum := 0.0
	for _, f := range v {
		if !math.IsNaN(f) {
			sum += f
		}
	}
	return sum
}

// Mean averages the present values, NaN when none.
func (v Values) Mean() float64 {
	present := v.Present()
	if len(present) == 0 {
		return math.NaN()
	}
	return present.Sum() / float64(len(present))
}

// Apply returns f applied to every value; missing values stay missing.
func (v Values) Apply(f func(float64) float64) Values {
	out := make(Values, len(v))
	for name, x := range v {
		if math.IsNaN(x) {
			out[name] = x
			continue
		}
		out[name] = f(x)
	}
	return out
}

// Combine applies op on the union of the keys of v and o.
func (v Values) Combine(o Values, op func(a, b float64) float64) Values {
	out := make(Values, len(v))
	for name := range v {
		out[name] = combine(v.get(name), o.get(name), op)
	}
	for name := range o {
		if _, ok := out[name]; !ok {
			out[name] = combine(v.get(name), o.get(name), op)
		}
	}
	return out
}

func (v Values) get(name string) float64 {
	if f, ok := v[name]; ok {
		return f
	}
	return math.NaN()
}

func combine(a, b float64, op func(a, b float64) float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return op(a, b)
}
