package accumulator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MovingAverage keeps a running sum over the last window values.
type MovingAverage struct {
	leafBase
	buf     *ringBuffer
	sum     float64
	average bool

	memo memo
}

func NewMovingAverage(window int, dependency interface{}) (Node, error) {
	return newRunningSum(window, dependency, true)
}

func NewMovingSum(window int, dependency interface{}) (Node, error) {
	return newRunningSum(window, dependency, false)
}

func newRunningSum(window int, dependency interface{}, average bool) (Node, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}

	return newLeaf(dependency, oneField, func(fields []string) Node {
		return &MovingAverage{
			leafBase: newLeafBase(fields, window),
			buf:      newRingBuffer(window),
			average:  average,
		}
	})
}

func (m *MovingAverage) Push(record Record) {
	m.memo.invalidate()

	v, ok := m.read(record)
	if !ok {
		return
	}

	evicted, ok := m.buf.Push(v)
	m.count++

	// NaN and Inf can not be subtracted back out of the running sum,
	// the sum is rebuilt from the window instead
	if !isFinite(m.sum) || (ok && !isFinite(evicted)) {
		m.sum = floats.Sum(m.buf.Slice())
		return
	}

	if ok {
		m.sum -= evicted
	}
	m.sum += v
}

func (m *MovingAverage) Result() (Value, error) {
	return m.memo.get(func() (Value, error) {
		n := m.buf.Len()
		if n == 0 {
			return nil, ErrNoData
		}

		if m.average {
			return Scalar(m.sum / float64(n)), nil
		}
		return Scalar(m.sum), nil
	})
}

func (m *MovingAverage) Clone() Node {
	c := *m
	c.fields = m.Dependency()
	c.buf = m.buf.Clone()
	return &c
}

// Moving evaluates a statistic over the values retained in its buffer.
// The buffer may be larger than the window of values the statistic needs,
// e.g. difference based statistics keep window+1 values.
type Moving struct {
	leafBase
	name     string
	buf      *ringBuffer
	minCount int
	stat     func(values []float64) float64

	memo memo
}

func newMoving(window int, dependency interface{}, name string, capacity, minCount int, fn func(values []float64) float64) (Node, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}

	return newLeaf(dependency, oneField, func(fields []string) Node {
		return &Moving{
			leafBase: newLeafBase(fields, capacity),
			name:     name,
			buf:      newRingBuffer(capacity),
			minCount: minCount,
			stat:     fn,
		}
	})
}

func (m *Moving) Push(record Record) {
	m.memo.invalidate()

	v, ok := m.read(record)
	if !ok {
		return
	}

	m.buf.Push(v)
	m.count++
}

func (m *Moving) Result() (Value, error) {
	return m.memo.get(m.compute)
}

func (m *Moving) compute() (Value, error) {
	n := m.buf.Len()
	if n == 0 {
		return nil, ErrNoData
	}
	if n < m.minCount {
		return nil, ErrNotEnoughData
	}
	return Scalar(m.stat(m.buf.Slice())), nil
}

func (m *Moving) Name() string { return m.name }

func (m *Moving) Clone() Node {
	c := *m
	c.fields = m.Dependency()
	c.buf = m.buf.Clone()
	return &c
}

func NewMovingProduct(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mproduct", window, 1, floats.Prod)
}

func NewMovingMax(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mmax", window, 1, floats.Max)
}

func NewMovingMin(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mmin", window, 1, floats.Min)
}

// NewMovingVariance is the sample variance (ddof 1) of the window.
func NewMovingVariance(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mvariance", window, 2, func(values []float64) float64 {
		return stat.Variance(values, nil)
	})
}

func NewMovingStandardDeviation(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mstd", window, 2, func(values []float64) float64 {
		return stat.StdDev(values, nil)
	})
}

// NewMovingNegativeVariance is the downside semi-variance about zero:
// sum(min(x, 0)^2) / (n - 1).
func NewMovingNegativeVariance(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mnegvariance", window, 2, semiVariance)
}

// NewMovingQuantile returns the share of the window lower than the latest value.
func NewMovingQuantile(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mquantile", window, 2, func(values []float64) float64 {
		latest := values[len(values)-1]
		lower := 0
		for _, v := range values {
			if v < latest {
				lower++
			}
		}
		return float64(lower) / float64(len(values)-1)
	})
}

// NewMovingRank returns the 0-based rank of the latest value in the window.
// Equal values are ranked by arrival, so the latest goes after its equals.
func NewMovingRank(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mrank", window, 1, func(values []float64) float64 {
		latest := values[len(values)-1]
		rank := 0
		for _, v := range values[:len(values)-1] {
			if v <= latest {
				rank++
			}
		}
		return float64(rank)
	})
}

func NewMovingCountedPositive(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mcountpositive", window, 1, func(values []float64) float64 {
		return float64(countIf(values, func(v float64) bool { return v > 0 }))
	})
}

func NewMovingCountedNegative(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mcountnegative", window, 1, func(values []float64) float64 {
		return float64(countIf(values, func(v float64) bool { return v < 0 }))
	})
}

// NewMovingPositiveAverage is the mean of the positive values of the
// window, 0 when there is none.
func NewMovingPositiveAverage(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mpositiveaverage", window, 1, func(values []float64) float64 {
		return meanIf(values, func(v float64) bool { return v > 0 })
	})
}

func NewMovingNegativeAverage(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mnegativeaverage", window, 1, func(values []float64) float64 {
		return meanIf(values, func(v float64) bool { return v < 0 })
	})
}

// NewMovingPositiveDifferenceAverage averages the positive parts of the last
// window differences.
func NewMovingPositiveDifferenceAverage(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mpositivediffaverage", window+1, 2, func(values []float64) float64 {
		pos, _ := differenceAverages(values)
		return pos
	})
}

// NewMovingNegativeDifferenceAverage averages the negative parts of the last
// window differences; the result is not positive.
func NewMovingNegativeDifferenceAverage(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mnegativediffaverage", window+1, 2, func(values []float64) float64 {
		_, neg := differenceAverages(values)
		return neg
	})
}

// NewMovingRSI is pos / (pos - neg) * 100 of the difference averages.
func NewMovingRSI(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "rsi", window+1, 2, func(values []float64) float64 {
		pos, neg := differenceAverages(values)
		return pos / (pos - neg) * 100.0
	})
}

func NewMovingAllTrue(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "malltrue", window, 1, func(values []float64) float64 {
		return boolToFloat(countIf(values, Truthy) == len(values))
	})
}

func NewMovingAnyTrue(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "manytrue", window, 1, func(values []float64) float64 {
		return boolToFloat(countIf(values, Truthy) > 0)
	})
}

// NewMovingLogReturn is log(x[t] / x[t-window]).
func NewMovingLogReturn(window int, dependency interface{}) (Node, error) {
	return newMoving(window, dependency, "mlogreturn", window+1, window+1, func(values []float64) float64 {
		return math.Log(values[len(values)-1] / values[0])
	})
}

// HistoricalWindow returns the last window values, the latest first.
// Positions that have not been observed yet are NaN.
type HistoricalWindow struct {
	leafBase
	buf *ringBuffer

	memo memo
}

func NewHistoricalWindow(window int, dependency interface{}) (Node, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}

	return newLeaf(dependency, oneField, func(fields []string) Node {
		return &HistoricalWindow{
			leafBase: newLeafBase(fields, window),
			buf:      newRingBuffer(window),
		}
	})
}

func (h *HistoricalWindow) Push(record Record) {
	h.memo.invalidate()
	if v, ok := h.read(record); ok {
		h.buf.Push(v)
		h.count++
	}
}

func (h *HistoricalWindow) Result() (Value, error) {
	return h.memo.get(h.compute)
}

func (h *HistoricalWindow) compute() (Value, error) {
	n := h.buf.Len()
	if n == 0 {
		return nil, ErrNoData
	}

	out := make(Value, h.buf.Cap())
	for i := range out {
		if i < n {
			out[i] = h.buf.At(n - 1 - i)
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

func (h *HistoricalWindow) Arity() int { return h.buf.Cap() }

func (h *HistoricalWindow) Clone() Node {
	c := *h
	c.fields = h.Dependency()
	c.buf = h.buf.Clone()
	return &c
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func countIf(values []float64, pred func(float64) bool) int {
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return n
}

func meanIf(values []float64, pred func(float64) bool) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if pred(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// differenceAverages returns the mean positive part and the mean negative
// part of the consecutive differences of values.
func differenceAverages(values []float64) (pos, neg float64) {
	n := len(values) - 1
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			pos += d
		} else {
			neg += d
		}
	}
	return pos / float64(n), neg / float64(n)
}

func semiVariance(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		if v < 0 {
			sum += v * v
		}
	}
	return sum / float64(len(values)-1)
}
