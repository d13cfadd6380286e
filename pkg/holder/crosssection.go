package holder

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/sajari/regression"
	"gonum.org/v1/gonum/stat"
)

var ErrInvalidPercentile = errors.New("percentile should be in [0, 1]")

// minRegressionEntities is the minimum number of complete entities CSRes
// needs to fit a line with intercept.
const minRegressionEntities = 3

// CrossSection transforms the values of all the entities of one tick at
// once. Entities with a missing input are left out of the computation and
// stay missing in the output.
type CrossSection struct {
	inputs    []Holder
	name      string
	transform func(inputs []Values) Values

	cache cache
}

func newCrossSection(name string, transform func(inputs []Values) Values, inputs ...interface{}) (*CrossSection, error) {
	holders := make([]Holder, len(inputs))
	for i, x := range inputs {
		if !isHolderLike(x) {
			return nil, errors.Wrapf(ErrNoHolderOperand, "%s operand %d: %T", name, i, x)
		}

		h, err := asHolder(x)
		if err != nil {
			return nil, err
		}
		holders[i] = h
	}

	return &CrossSection{inputs: holders, name: name, transform: transform}, nil
}

// CSRank ranks the present values in ascending order, starting from 1.
// Equal values are ranked by ascending entity key.
func CSRank(x interface{}) (*CrossSection, error) {
	return newCrossSection("csrank", single(rankValues), x)
}

// CSQuantile is (rank - 1) / (n - 1); a single present entity gets 0.5.
func CSQuantile(x interface{}) (*CrossSection, error) {
	return newCrossSection("csquantile", single(func(values Values) Values {
		ranks := rankValues(values)
		n := float64(len(values.Present()))
		return ranks.Apply(func(r float64) float64 {
			if n == 1 {
				return 0.5
			}
			return (r - 1) / (n - 1)
		})
	}), x)
}

func CSMean(x interface{}) (*CrossSection, error) {
	return newCrossSection("csmean", single(func(values Values) Values {
		mean := values.Mean()
		return values.Apply(func(float64) float64 { return mean })
	}), x)
}

// CSMeanAdjusted subtracts the cross-sectional mean.
func CSMeanAdjusted(x interface{}) (*CrossSection, error) {
	return newCrossSection("csmeanadjusted", single(func(values Values) Values {
		mean := values.Mean()
		return values.Apply(func(v float64) float64 { return v - mean })
	}), x)
}

// CSZScore standardizes with the sample standard deviation; fewer than two
// present entities give missing values.
func CSZScore(x interface{}) (*CrossSection, error) {
	return newCrossSection("cszscore", single(func(values Values) Values {
		present := presentSlice(values)
		if len(present) < 2 {
			return values.Apply(func(float64) float64 { return math.NaN() })
		}

		mean, std := stat.MeanStdDev(present, nil)
		return values.Apply(func(v float64) float64 { return (v - mean) / std })
	}), x)
}

// CSPercentile assigns the p-th empirical percentile of the cross-section,
// p in [0, 1], to every present entity.
func CSPercentile(x interface{}, p float64) (*CrossSection, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, errors.Wrapf(ErrInvalidPercentile, "given %v", p)
	}

	return newCrossSection("cspercentile", single(func(values Values) Values {
		present := presentSlice(values)
		if len(present) == 0 {
			return values
		}

		sort.Float64s(present)
		q := stat.Quantile(p, stat.Empirical, present, nil)
		return values.Apply(func(float64) float64 { return q })
	}), x)
}

// CSRes regresses left on right with an intercept over the entities where
// both are present, and returns the residues.
func CSRes(left, right interface{}) (*CrossSection, error) {
	return newCrossSection("csres", func(inputs []Values) Values {
		return residues(inputs[0], inputs[1])
	}, left, right)
}

func single(fn func(values Values) Values) func(inputs []Values) Values {
	return func(inputs []Values) Values {
		return fn(inputs[0])
	}
}

func rankValues(values Values) Values {
	names := make([]string, 0, len(values))
	for name, v := range values {
		if !math.IsNaN(v) {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		vi, vj := values[names[i]], values[names[j]]
		if vi != vj {
			return vi < vj
		}
		return names[i] < names[j]
	})

	out := make(Values, len(values))
	for name := range values {
		out[name] = math.NaN()
	}
	for i, name := range names {
		out[name] = float64(i + 1)
	}
	return out
}

func presentSlice(values Values) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func residues(y, x Values) (out Values) {
	out = make(Values, len(y))
	for name := range y {
		out[name] = math.NaN()
	}
	for name := range x {
		out[name] = math.NaN()
	}

	var names []string
	for name, yv := range y {
		xv, ok := x[name]
		if !ok || math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		names = append(names, name)
	}

	if len(names) < minRegressionEntities {
		return out
	}
	sort.Strings(names)

	r := new(regression.Regression)
	r.SetObserved("y")
	r.SetVar(0, "x")

	var points regression.DataPoints
	for _, name := range names {
		points = append(points, regression.DataPoint(y[name], []float64{x[name]}))
	}
	r.Train(points...)

	defer func() {
		if rec := recover(); rec != nil {
			log.Debugf("csres: regression failed: %v", rec)
			for name := range out {
				out[name] = math.NaN()
			}
		}
	}()

	if err := r.Run(); err != nil {
		log.WithError(err).Debug("csres: regression failed")
		return out
	}

	for _, name := range names {
		predicted, err := r.Predict([]float64{x[name]})
		if err != nil {
			continue
		}
		out[name] = y[name] - predicted
	}
	return out
}

func (c *CrossSection) Push(tick Tick) {
	c.cache.invalidate()
	for _, h := range c.inputs {
		h.Push(tick)
	}
}

func (c *CrossSection) Value() Values {
	if c.cache.fresh {
		return c.cache.values.Copy()
	}

	inputs := make([]Values, len(c.inputs))
	for i, h := range c.inputs {
		inputs[i] = h.Value()
	}
	return c.cache.store(c.transform(inputs))
}

// ValueByName needs the whole cross-section, so it goes through Value.
func (c *CrossSection) ValueByName(name string) float64 {
	return c.Value().get(name)
}

func (c *CrossSection) ValueByNames(names []string) Values { return valueByNames(c, names) }

func (c *CrossSection) SymbolList() []string {
	var lists [][]string
	for _, h := range c.inputs {
		lists = append(lists, h.SymbolList())
	}
	return UnionSymbols(lists...)
}

func (c *CrossSection) IsFull() bool {
	for _, h := range c.inputs {
		if !h.IsFull() {
			return false
		}
	}
	return true
}

func (c *CrossSection) IsFullByName(name string) bool {
	for _, h := range c.inputs {
		if !h.IsFullByName(name) {
			return false
		}
	}
	return true
}

func (c *CrossSection) Window() int {
	w := 0
	for _, h := range c.inputs {
		w = maxInt(w, h.Window())
	}
	return w
}

func (c *CrossSection) Dependency() []string {
	var lists [][]string
	for _, h := range c.inputs {
		lists = append(lists, h.Dependency())
	}
	return UnionSymbols(lists...)
}

func (c *CrossSection) Clone() Holder {
	inputs := make([]Holder, len(c.inputs))
	for i, h := range c.inputs {
		inputs[i] = h.Clone()
	}
	return &CrossSection{inputs: inputs, name: c.name, transform: c.transform}
}
