package accumulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushSeries(node Node, field string, values ...float64) {
	for _, v := range values {
		node.Push(Record{field: v})
	}
}

func TestCumulativeLeaves(t *testing.T) {
	tests := []struct {
		name     string
		ctor     func(dependency interface{}) (Node, error)
		inputs   []float64
		expected float64
		window   int
	}{
		{"diff", NewDiff, []float64{1, 3, 6}, 3, 2},
		{"simple return", NewSimpleReturn, []float64{1, 2, 3}, 0.5, 2},
		{"log return", NewLogReturn, []float64{1, math.E}, 1, 2},
		{"max", NewMax, []float64{1, 7, 3}, 7, 1},
		{"min", NewMin, []float64{1, 7, -3}, -3, 1},
		{"sum", NewSum, []float64{1, 2, 3}, 6, 1},
		{"product", NewProduct, []float64{2, 3, 4}, 24, 1},
		{"average", NewAverage, []float64{1, 2, 6}, 3, 1},
		{"variance", NewVariance, []float64{1, 2, 3, 4}, 5.0 / 3.0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.ctor("x")
			require.NoError(t, err)
			assert.Equal(t, tt.window, n.Window())

			_, err = n.Result()
			assert.ErrorIs(t, err, ErrNoData)

			pushSeries(n, "x", tt.inputs...)
			assert.InDelta(t, tt.expected, resultFloat(t, n), Delta)
		})
	}
}

func TestPairedLeaves_NotEnoughData(t *testing.T) {
	for _, ctor := range []func(interface{}) (Node, error){NewDiff, NewSimpleReturn, NewLogReturn, NewVariance} {
		n, err := ctor(nil)
		require.NoError(t, err)

		n.Push(Record{"x": 1})
		_, err = n.Result()
		assert.ErrorIs(t, err, ErrNotEnoughData)
		assert.False(t, n.IsFull())
	}
}

func TestXAverageAndMACD(t *testing.T) {
	ema, err := NewXAverage(3, "x")
	require.NoError(t, err)

	macd, err := NewMACD(1, 3, "x")
	require.NoError(t, err)

	expected := []float64{1, 1.5, 2.25}
	for i, x := range []float64{1, 2, 3} {
		ema.Push(Record{"x": x})
		macd.Push(Record{"x": x})
		assert.InDelta(t, expected[i], resultFloat(t, ema), Delta)
	}

	// a window of 1 follows the input: 3 - 2.25
	assert.InDelta(t, 0.75, resultFloat(t, macd), Delta)

	cloned := macd.Clone()
	cloned.Push(Record{"x": 5})
	assert.InDelta(t, 0.75, resultFloat(t, macd), Delta)
	assert.InDelta(t, 5-3.625, resultFloat(t, cloned), Delta)
}

func TestMaximumMinimum(t *testing.T) {
	maximum, err := NewMaximum([]string{"open", "close"})
	require.NoError(t, err)

	minimum, err := NewMinimum(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, minimum.Dependency())

	maximum.Push(Record{"open": 3, "close": 5})
	minimum.Push(Record{"x": 3, "y": 5})
	assert.InDelta(t, 5.0, resultFloat(t, maximum), Delta)
	assert.InDelta(t, 3.0, resultFloat(t, minimum), Delta)

	_, err = NewMaximum("open")
	assert.ErrorIs(t, err, ErrFieldCount)
}

func TestMovingLeaves(t *testing.T) {
	tests := []struct {
		name     string
		ctor     func(window int, dependency interface{}) (Node, error)
		window   int
		inputs   []float64
		expected float64
	}{
		{"sum", NewMovingSum, 3, []float64{1, 2, 3, 4}, 9},
		{"product", NewMovingProduct, 2, []float64{5, 2, 3}, 6},
		{"max", NewMovingMax, 2, []float64{9, 2, 3}, 3},
		{"min", NewMovingMin, 2, []float64{1, 2, 3}, 2},
		{"variance", NewMovingVariance, 3, []float64{100, 1, 2, 3}, 1},
		{"std", NewMovingStandardDeviation, 3, []float64{100, 2, 4, 6}, 2},
		{"negative variance", NewMovingNegativeVariance, 3, []float64{-1, 2, -3}, 5},
		{"quantile", NewMovingQuantile, 3, []float64{1, 3, 2}, 0.5},
		{"quantile lowest", NewMovingQuantile, 3, []float64{4, 3, 2}, 0},
		{"rank", NewMovingRank, 3, []float64{3, 1, 2}, 1},
		{"rank tie", NewMovingRank, 3, []float64{5, 2, 2}, 1},
		{"counted positive", NewMovingCountedPositive, 3, []float64{1, -1, 2, 3}, 2},
		{"counted negative", NewMovingCountedNegative, 3, []float64{-1, -1, 2, -3}, 2},
		{"positive average", NewMovingPositiveAverage, 3, []float64{1, -1, 2, 4}, 3},
		{"positive average none", NewMovingPositiveAverage, 2, []float64{-1, -2}, 0},
		{"negative average", NewMovingNegativeAverage, 3, []float64{-1, 2, -3}, -2},
		{"positive difference average", NewMovingPositiveDifferenceAverage, 2, []float64{1, 2, 1.5, 3}, 0.75},
		{"negative difference average", NewMovingNegativeDifferenceAverage, 2, []float64{1, 2, 1.5, 3}, -0.25},
		{"rsi", NewMovingRSI, 2, []float64{1, 2, 1.5, 3}, 75},
		{"all true", NewMovingAllTrue, 2, []float64{0, 1, 1}, 1},
		{"all true broken", NewMovingAllTrue, 2, []float64{1, 0, 1}, 0},
		{"any true", NewMovingAnyTrue, 2, []float64{1, 0, 0}, 0},
		{"log return", NewMovingLogReturn, 2, []float64{1, math.E, math.E * math.E}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.ctor(tt.window, "x")
			require.NoError(t, err)

			pushSeries(n, "x", tt.inputs...)
			assert.InDelta(t, tt.expected, resultFloat(t, n), Delta)

			cloned := n.Clone()
			assert.InDelta(t, tt.expected, resultFloat(t, cloned), Delta)
		})
	}
}

func TestMovingLeaves_Windows(t *testing.T) {
	tests := []struct {
		name   string
		ctor   func(window int, dependency interface{}) (Node, error)
		window int
	}{
		{"average", NewMovingAverage, 5},
		{"variance", NewMovingVariance, 5},
		{"rsi", NewMovingRSI, 6},
		{"positive difference average", NewMovingPositiveDifferenceAverage, 6},
		{"log return", NewMovingLogReturn, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.ctor(5, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.window, n.Window())

			for i := 0; i < tt.window; i++ {
				assert.False(t, n.IsFull())
				n.Push(Record{"x": float64(i + 1)})
			}
			assert.True(t, n.IsFull())
		})
	}
}

func TestMovingLogReturn_NotEnoughData(t *testing.T) {
	n, err := NewMovingLogReturn(2, "x")
	require.NoError(t, err)

	pushSeries(n, "x", 1, 2)
	_, err = n.Result()
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestMovingVariance_SingleValue(t *testing.T) {
	n, err := NewMovingVariance(3, "x")
	require.NoError(t, err)

	pushSeries(n, "x", 1)
	_, err = n.Result()
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestHistoricalWindow(t *testing.T) {
	n, err := NewHistoricalWindow(3, "x")
	require.NoError(t, err)
	assert.Equal(t, 3, n.Arity())

	pushSeries(n, "x", 1, 2)
	v, err := n.Result()
	require.NoError(t, err)
	assert.Equal(t, 2.0, v[0])
	assert.Equal(t, 1.0, v[1])
	assert.True(t, math.IsNaN(v[2]))

	pushSeries(n, "x", 3, 4)
	v, err = n.Result()
	require.NoError(t, err)
	assert.Equal(t, Value{4, 3, 2}, v)

	lagged, err := Index(n, 2)
	require.NoError(t, err)
	pushSeries(lagged, "x", 7, 8, 9)
	assert.InDelta(t, 7.0, resultFloat(t, lagged), Delta)
}

func TestMovingSeriesLeaves(t *testing.T) {
	t.Run("correlation", func(t *testing.T) {
		n, err := NewMovingCorrelation(3, []string{"a", "b"})
		require.NoError(t, err)
		for _, x := range []float64{1, 2, 5} {
			n.Push(Record{"a": x, "b": -3*x + 2})
		}
		assert.InDelta(t, -1.0, resultFloat(t, n), Delta)
	})

	t.Run("residue", func(t *testing.T) {
		n, err := NewMovingResidue(3, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"y", "x"}, n.Dependency())

		n.Push(Record{"y": 2, "x": 1})
		n.Push(Record{"y": 4, "x": 2})
		assert.InDelta(t, 0.0, resultFloat(t, n), Delta)

		// x = (1, 2, 1), y = (2, 4, 3): beta = 13 / 6
		n.Push(Record{"y": 3, "x": 1})
		assert.InDelta(t, 3-13.0/6.0, resultFloat(t, n), Delta)
	})

	t.Run("sharp", func(t *testing.T) {
		n, err := NewMovingSharp(3, nil)
		require.NoError(t, err)

		n.Push(Record{"ret": 0.1, "riskfree": 0})
		_, err = n.Result()
		assert.ErrorIs(t, err, ErrNotEnoughData)

		n.Push(Record{"ret": 0.2, "riskfree": 0})
		n.Push(Record{"ret": 0.3, "riskfree": 0})
		assert.InDelta(t, 2.0, resultFloat(t, n), 1e-9)
	})

	t.Run("sortino", func(t *testing.T) {
		n, err := NewMovingSortino(3, nil)
		require.NoError(t, err)

		n.Push(Record{"ret": 0.0, "riskfree": 0.1})
		n.Push(Record{"ret": 0.3, "riskfree": 0.1})
		n.Push(Record{"ret": 0.6, "riskfree": 0.1})
		// excess = (-0.1, 0.2, 0.5), downside deviation = sqrt(0.01 / 2)
		assert.InDelta(t, 0.2/math.Sqrt(0.005), resultFloat(t, n), 1e-9)
	})

	t.Run("alpha beta", func(t *testing.T) {
		n, err := NewMovingAlphaBeta(4, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, n.Arity())

		for _, m := range []float64{0.1, 0.2, 0.3, -0.1} {
			n.Push(Record{"pret": 2*m + 0.01 + 0.02, "mret": m + 0.02, "riskfree": 0.02})
		}

		v, err := n.Result()
		require.NoError(t, err)
		assert.InDelta(t, 0.01, v[0], 1e-9)
		assert.InDelta(t, 2.0, v[1], 1e-9)
	})

	t.Run("missing field keeps columns aligned", func(t *testing.T) {
		n, err := NewMovingCorrelation(3, nil)
		require.NoError(t, err)

		n.Push(Record{"x": 1, "y": 1})
		n.Push(Record{"x": 2})
		n.Push(Record{"x": 3, "y": 3})
		assert.InDelta(t, 1.0, resultFloat(t, n), Delta)
		assert.False(t, n.IsFull())
	})
}

func TestMovingAverage_NonFiniteLeavesWindow(t *testing.T) {
	tests := []struct {
		name     string
		average  bool
		give     []float64
		expected float64
	}{
		{"nan average", true, []float64{1, math.NaN(), 2, 3, 4}, 3.5},
		{"inf average", true, []float64{math.Inf(1), 1, 2}, 1.5},
		{"-inf sum", false, []float64{math.Inf(-1), math.Inf(1), 1, 2}, 3},
		{"nan sum", false, []float64{math.NaN(), 5, 6, 7}, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctor := NewMovingSum
			if tt.average {
				ctor = NewMovingAverage
			}

			m, err := ctor(2, "x")
			require.NoError(t, err)

			pushSeries(m, "x", tt.give...)
			v, err := m.Result()
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, v.Float(), 1e-9)
		})
	}
}

func TestMovingAverage_NaNInsideWindow(t *testing.T) {
	m, err := NewMovingAverage(2, "x")
	require.NoError(t, err)

	pushSeries(m, "x", 1, math.NaN(), 2)
	v, err := m.Result()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.Float()))
}

func TestMoving_EvaluatesOncePerTick(t *testing.T) {
	evaluations := 0
	node, err := newMoving(3, "x", "counted", 3, 1, func(values []float64) float64 {
		evaluations++
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum
	})
	require.NoError(t, err)

	pushSeries(node, "x", 1, 2)
	for i := 0; i < 3; i++ {
		v, err := node.Result()
		require.NoError(t, err)
		assert.Equal(t, 3.0, v.Float())
	}
	assert.Equal(t, 1, evaluations)

	cloned := node.Clone()
	v, err := cloned.Result()
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Float())
	assert.Equal(t, 1, evaluations)

	node.Push(Record{"x": 3})
	v, err = node.Result()
	require.NoError(t, err)
	assert.Equal(t, 6.0, v.Float())
	assert.Equal(t, 2, evaluations)

	v, err = cloned.Result()
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Float())
	assert.Equal(t, 2, evaluations)
}
