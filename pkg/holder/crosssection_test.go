package holder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crossSectionTick() Tick {
	return Tick{
		"a": {"x": 1, "y": 3.1},
		"b": {"x": 2, "y": 4.9},
		"c": {"x": 3, "y": 6.9},
		"d": {"x": 4, "y": 9.1},
	}
}

func TestCSRank_MissingExcluded(t *testing.T) {
	x, err := Latest("x")
	require.NoError(t, err)

	rank, err := CSRank(x)
	require.NoError(t, err)

	rank.Push(Tick{
		"a": {"x": 3},
		"b": {"x": 1},
		"c": {"y": 5},
		"d": {"x": 1},
	})

	values := rank.Value()
	assert.Equal(t, 3.0, values["a"])
	assert.Equal(t, 1.0, values["b"])
	assert.True(t, math.IsNaN(values["c"]))
	assert.Equal(t, 2.0, values["d"])
	assert.Equal(t, 3.0, rank.ValueByName("a"))
}

func TestCrossSection(t *testing.T) {
	tests := []struct {
		name     string
		ctor     func(x interface{}) (*CrossSection, error)
		expected Values
	}{
		{
			name:     "quantile",
			ctor:     CSQuantile,
			expected: Values{"a": 0, "b": 1.0 / 3.0, "c": 2.0 / 3.0, "d": 1},
		},
		{
			name:     "mean",
			ctor:     CSMean,
			expected: Values{"a": 2.5, "b": 2.5, "c": 2.5, "d": 2.5},
		},
		{
			name:     "mean adjusted",
			ctor:     CSMeanAdjusted,
			expected: Values{"a": -1.5, "b": -0.5, "c": 0.5, "d": 1.5},
		},
		{
			name: "zscore",
			ctor: CSZScore,
			expected: Values{
				"a": -1.5 / math.Sqrt(5.0/3.0),
				"b": -0.5 / math.Sqrt(5.0/3.0),
				"c": 0.5 / math.Sqrt(5.0/3.0),
				"d": 1.5 / math.Sqrt(5.0/3.0),
			},
		},
		{
			name: "median",
			ctor: func(x interface{}) (*CrossSection, error) {
				return CSPercentile(x, 0.5)
			},
			expected: Values{"a": 2, "b": 2, "c": 2, "d": 2},
		},
		{
			name: "maximum",
			ctor: func(x interface{}) (*CrossSection, error) {
				return CSPercentile(x, 1)
			},
			expected: Values{"a": 4, "b": 4, "c": 4, "d": 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := Latest("x")
			require.NoError(t, err)

			h, err := tt.ctor(x)
			require.NoError(t, err)

			h.Push(crossSectionTick())
			values := h.Value()
			require.Len(t, values, len(tt.expected))
			for name, expected := range tt.expected {
				assert.InDelta(t, expected, values[name], Delta, name)
			}
		})
	}
}

func TestCSQuantile_SingleEntity(t *testing.T) {
	x, err := Latest("x")
	require.NoError(t, err)

	q, err := CSQuantile(x)
	require.NoError(t, err)

	q.Push(Tick{"a": {"x": 10}, "b": {"y": 1}})
	assert.Equal(t, 0.5, q.ValueByName("a"))
	assert.True(t, math.IsNaN(q.ValueByName("b")))
}

func TestCSZScore_NotEnoughEntities(t *testing.T) {
	z, err := CSZScore("x")
	assert.ErrorIs(t, err, ErrNoHolderOperand)
	assert.Nil(t, z)

	x, err := Latest("x")
	require.NoError(t, err)

	z, err = CSZScore(x)
	require.NoError(t, err)

	z.Push(Tick{"a": {"x": 10}})
	assert.True(t, math.IsNaN(z.ValueByName("a")))
}

func TestCSPercentile_InvalidPercentile(t *testing.T) {
	x, err := Latest("x")
	require.NoError(t, err)

	_, err = CSPercentile(x, 50)
	assert.ErrorIs(t, err, ErrInvalidPercentile)
}

func TestCSRes(t *testing.T) {
	y, err := Latest("y")
	require.NoError(t, err)

	x, err := Latest("x")
	require.NoError(t, err)

	res, err := CSRes(y, x)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, res.Dependency())

	// y = 2x + 1 plus residues that are orthogonal to (1, x)
	res.Push(crossSectionTick())
	values := res.Value()
	assert.InDelta(t, 0.1, values["a"], 1e-6)
	assert.InDelta(t, -0.1, values["b"], 1e-6)
	assert.InDelta(t, -0.1, values["c"], 1e-6)
	assert.InDelta(t, 0.1, values["d"], 1e-6)
}

func TestCSRes_NotEnoughEntities(t *testing.T) {
	y, err := Latest("y")
	require.NoError(t, err)

	x, err := Latest("x")
	require.NoError(t, err)

	res, err := CSRes(y, x)
	require.NoError(t, err)

	res.Push(Tick{
		"a": {"x": 1, "y": 3},
		"b": {"x": 2, "y": 5},
		"c": {"y": 7},
	})

	for _, v := range res.Value() {
		assert.True(t, math.IsNaN(v))
	}
	assert.Len(t, res.Value(), 3)
}
