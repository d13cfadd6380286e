package factorconfig

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/xfactor/pkg/accumulator"
	"github.com/c9s/xfactor/pkg/holder"
)

const sampleConfig = `
input: {file: prices.csv, timeColumn: date, categoryColumn: code}
output: {file: out.csv, format: csv}
factors:
  - name: spread
    expr:
      op: sub
      args:
        - {op: ma, window: 1, field: close}
        - {op: ma, window: 2, field: close}
  - name: rank
    expr:
      op: csrank
      args:
        - {op: last, field: close}
  - name: squared
    expr:
      op: pow
      value: 2
      args:
        - {op: latest, field: close}
`

func tick(a, b float64) holder.Tick {
	return holder.Tick{
		"a": accumulator.Record{"close": a},
		"b": accumulator.Record{"close": b},
	}
}

func TestParse(t *testing.T) {
	config, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "prices.csv", config.Input.File)
	assert.Equal(t, "date", config.Input.TimeColumn)
	assert.Equal(t, "code", config.Input.CategoryColumn)
	assert.Equal(t, "csv", config.Output.Format)
	require.Len(t, config.Factors, 3)
	assert.Equal(t, "spread", config.Factors[0].Name)
	assert.Equal(t, "sub", config.Factors[0].Expr.Op)
	require.Len(t, config.Factors[0].Expr.Args, 2)
	assert.Equal(t, 2, config.Factors[0].Expr.Args[1].Window)
}

func TestBuildFactors(t *testing.T) {
	config, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	factors, err := config.BuildFactors()
	require.NoError(t, err)
	require.Len(t, factors, 3)

	for _, f := range factors {
		f.Holder.Push(tick(1, 5))
		f.Holder.Push(tick(3, 2))
	}

	spread := factors[0]
	assert.Equal(t, "spread", spread.Name)
	assert.Equal(t, []string{"close"}, spread.Holder.Dependency())
	assert.InDelta(t, 1.0, spread.Holder.ValueByName("a"), 1e-9)
	assert.InDelta(t, -1.5, spread.Holder.ValueByName("b"), 1e-9)

	assert.Equal(t, holder.Values{"a": 2, "b": 1}, factors[1].Holder.Value())
	assert.Equal(t, holder.Values{"a": 9, "b": 4}, factors[2].Holder.Value())
}

func TestBuildFactors_FreshHolders(t *testing.T) {
	config, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	first, err := config.BuildFactors()
	require.NoError(t, err)
	first[0].Holder.Push(tick(1, 1))

	second, err := config.BuildFactors()
	require.NoError(t, err)
	assert.Empty(t, second[0].Holder.SymbolList())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		give     string
		err      error
		contains string
	}{
		{
			name:     "unknown op",
			give:     "factors:\n  - name: x\n    expr: {op: foo, field: close}\n",
			err:      ErrUnknownOp,
			contains: "foo",
		},
		{
			name:     "bad arity",
			give:     "factors:\n  - name: x\n    expr: {op: add, args: [{op: last, field: close}]}\n",
			err:      ErrArgCount,
			contains: "add",
		},
		{
			name:     "nested unknown op",
			give:     "factors:\n  - name: x\n    expr: {op: neg, args: [{op: bar}]}\n",
			err:      ErrUnknownOp,
			contains: "bar",
		},
		{
			name:     "bad window",
			give:     "factors:\n  - name: x\n    expr: {op: ma, window: 0, field: close}\n",
			err:      accumulator.ErrInvalidWindow,
			contains: "ma",
		},
		{
			name:     "empty",
			give:     "factors: []\n",
			contains: "empty",
		},
		{
			name:     "duplicate",
			give:     "factors:\n  - name: x\n    expr: {op: last, field: a}\n  - name: x\n    expr: {op: last, field: b}\n",
			contains: "duplicate",
		},
		{
			name:     "format",
			give:     "output: {format: xml}\nfactors:\n  - name: x\n    expr: {op: last, field: a}\n",
			contains: "xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.give))
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestBuild_Ops(t *testing.T) {
	value := func(f float64) *float64 { return &f }
	price := Expr{Op: "last", Field: "close"}

	tests := []struct {
		name string
		expr Expr
		a, b float64
	}{
		{name: "const", expr: Expr{Op: "const", Value: value(3)}, a: 3, b: 3},
		{name: "gt", expr: Expr{Op: "gt", Args: []Expr{price, {Op: "const", Value: value(2)}}}, a: 1, b: 0},
		{name: "iif", expr: Expr{Op: "iif", Args: []Expr{
			{Op: "gt", Args: []Expr{price, {Op: "const", Value: value(2)}}},
			{Op: "const", Value: value(10)},
			{Op: "const", Value: value(-10)},
		}}, a: 10, b: -10},
		{name: "mmax over upstream", expr: Expr{Op: "mmax", Window: 2, Args: []Expr{price}}, a: 3, b: 5},
		{name: "shift", expr: Expr{Op: "shift", N: 1, Args: []Expr{price}}, a: 1, b: 5},
		{name: "diff", expr: Expr{Op: "diff", Field: "close"}, a: 2, b: -3},
		{name: "csmean", expr: Expr{Op: "CSMean", Args: []Expr{price}}, a: 2.5, b: 2.5},
		{name: "asinh", expr: Expr{Op: "asinh", Args: []Expr{price}}, a: math.Asinh(3), b: math.Asinh(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Build(&tt.expr)
			require.NoError(t, err)

			h.Push(tick(1, 5))
			h.Push(tick(3, 2))
			assert.InDelta(t, tt.a, h.ValueByName("a"), 1e-9)
			assert.InDelta(t, tt.b, h.ValueByName("b"), 1e-9)
		})
	}
}

func TestOps(t *testing.T) {
	ops := Ops()
	for _, name := range []string{"last", "const", "add", "ma", "csres", "cspercentile", "iif", "filter", "acos", "acosh", "asin", "asinh"} {
		assert.Contains(t, ops, name)
	}
	assert.IsIncreasing(t, ops)
}
