package accumulator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	residueFields     = []string{"y", "x"}
	performanceFields = []string{"ret", "riskfree"}
	alphaBetaFields   = []string{"pret", "mret", "riskfree"}
)

// MovingSeries keeps the last window values of several fields that are
// pushed together, and evaluates a statistic over the aligned columns.
type MovingSeries struct {
	leafBase
	name     string
	columns  []*ringBuffer
	minCount int
	arity    int
	stat     func(columns [][]float64) Value

	memo memo
}

func newMovingSeries(window int, dependency interface{}, defaults []string, name string, minCount, arity int, fn func(columns [][]float64) Value) (Node, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}

	return newLeaf(dependency, defaults, func(fields []string) Node {
		columns := make([]*ringBuffer, len(fields))
		for i := range columns {
			columns[i] = newRingBuffer(window)
		}

		return &MovingSeries{
			leafBase: newLeafBase(fields, window),
			name:     name,
			columns:  columns,
			minCount: minCount,
			arity:    arity,
			stat:     fn,
		}
	})
}

// Push only updates the series when every field is present, so that the
// columns stay aligned.
func (m *MovingSeries) Push(record Record) {
	m.memo.invalidate()

	values, ok := m.readAll(record)
	if !ok {
		return
	}

	for i, v := range values {
		m.columns[i].Push(v)
	}
	m.count++
}

func (m *MovingSeries) Result() (Value, error) {
	return m.memo.get(m.compute)
}

func (m *MovingSeries) compute() (Value, error) {
	n := m.columns[0].Len()
	if n == 0 {
		return nil, ErrNoData
	}
	if n < m.minCount {
		return nil, ErrNotEnoughData
	}

	columns := make([][]float64, len(m.columns))
	for i, c := range m.columns {
		columns[i] = c.Slice()
	}
	return m.stat(columns), nil
}

func (m *MovingSeries) Arity() int   { return m.arity }
func (m *MovingSeries) Name() string { return m.name }

func (m *MovingSeries) Clone() Node {
	c := *m
	c.fields = m.Dependency()
	c.columns = make([]*ringBuffer, len(m.columns))
	for i, col := range m.columns {
		c.columns[i] = col.Clone()
	}
	return &c
}

// NewMovingCorrelation is the Pearson correlation of the two fields.
func NewMovingCorrelation(window int, dependency interface{}) (Node, error) {
	return newMovingSeries(window, dependency, twoFields, "mcorrelation", 2, 1, func(columns [][]float64) Value {
		return Scalar(stat.Correlation(columns[0], columns[1], nil))
	})
}

// NewMovingResidue regresses y on x through the origin over the window and
// returns the residue of the latest point. Fields are (y, x).
func NewMovingResidue(window int, dependency interface{}) (Node, error) {
	return newMovingSeries(window, dependency, residueFields, "mresidue", 1, 1, func(columns [][]float64) Value {
		y, x := columns[0], columns[1]
		beta := floats.Dot(x, y) / floats.Dot(x, x)
		return Scalar(y[len(y)-1] - beta*x[len(x)-1])
	})
}

// NewMovingSharp is the mean excess return over its sample deviation.
// Fields are (ret, riskfree).
func NewMovingSharp(window int, dependency interface{}) (Node, error) {
	return newMovingSeries(window, dependency, performanceFields, "msharp", 2, 1, func(columns [][]float64) Value {
		excess := excessReturns(columns[0], columns[1])
		mean, std := stat.MeanStdDev(excess, nil)
		return Scalar(mean / std)
	})
}

// NewMovingSortino is the mean excess return over its downside deviation.
// Fields are (ret, riskfree).
func NewMovingSortino(window int, dependency interface{}) (Node, error) {
	return newMovingSeries(window, dependency, performanceFields, "msortino", 2, 1, func(columns [][]float64) Value {
		excess := excessReturns(columns[0], columns[1])
		return Scalar(stat.Mean(excess, nil) / math.Sqrt(semiVariance(excess)))
	})
}

// NewMovingAlphaBeta regresses the portfolio excess return on the market
// excess return and returns (alpha, beta). Fields are (pret, mret, riskfree).
func NewMovingAlphaBeta(window int, dependency interface{}) (Node, error) {
	return newMovingSeries(window, dependency, alphaBetaFields, "malphabeta", 2, 2, func(columns [][]float64) Value {
		p := excessReturns(columns[0], columns[2])
		m := excessReturns(columns[1], columns[2])
		alpha, beta := stat.LinearRegression(m, p, nil, false)
		return Value{alpha, beta}
	})
}

func excessReturns(ret, riskFree []float64) []float64 {
	out := make([]float64, len(ret))
	floats.SubTo(out, ret, riskFree)
	return out
}
