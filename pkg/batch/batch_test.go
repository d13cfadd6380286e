package batch

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/xfactor/pkg/holder"
)

const pricesByCode = `date,code,close,open
2024-01-03,aapl,14,13
2024-01-01,aapl,10,9
2024-01-01,ibm,20,
2024-01-02,ibm,22,21
2024-01-02,aapl,12,11
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(pricesByCode), Options{CategoryColumn: "code"})
	require.NoError(t, err)

	assert.Equal(t, []string{"close", "open"}, table.Fields)
	assert.Equal(t, "code", table.Category)
	require.Len(t, table.Rows, 5)

	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), table.Rows[0].Time)
	assert.Equal(t, "aapl", table.Rows[0].Category)
	assert.Equal(t, 14.0, table.Rows[0].Fields["close"])

	_, ok := table.Rows[2].Fields["open"]
	assert.False(t, ok, "empty cells are absent")
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		give    string
		options Options
		err     error
	}{
		{
			name: "no time column",
			give: "day,close\n2024-01-01,1\n",
			err:  ErrMissingColumn,
		},
		{
			name:    "no category column",
			give:    "date,close\n2024-01-01,1\n",
			options: Options{CategoryColumn: "code"},
			err:     ErrMissingColumn,
		},
		{
			name: "bad time",
			give: "date,close\nyesterday,1\n",
			err:  ErrInvalidTimeFormat,
		},
		{
			name: "bad value",
			give: "date,close\n2024-01-01,abc\n",
			err:  ErrInvalidValueFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.give), tt.options)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseTimeAndValue(t *testing.T) {
	expected := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"2024-01-02T03:04:05Z", "2024-01-02 03:04:05", "1704164645"} {
		got, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.True(t, expected.Equal(got), s)
	}

	v, err := ParseValue("TRUE")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = ParseValue("false")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = ParseValue("-1.5e2")
	require.NoError(t, err)
	assert.Equal(t, -150.0, v)
}

func TestTransform_ByCategory(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(pricesByCode), Options{CategoryColumn: "code"})
	require.NoError(t, err)

	ma, err := holder.MA(2, "close")
	require.NoError(t, err)

	out, err := Transform(ma, table, TransformOptions{Name: "ma2", UseCategory: true})
	require.NoError(t, err)
	assert.Equal(t, "ma2", out.Name)

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	assert.Equal(t, []OutputRow{
		{Time: day(1), Category: "aapl", Value: 10},
		{Time: day(1), Category: "ibm", Value: 20},
		{Time: day(2), Category: "ibm", Value: 21},
		{Time: day(2), Category: "aapl", Value: 11},
		{Time: day(3), Category: "aapl", Value: 13},
	}, out.Rows)
}

func TestTransform_Idempotent(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(pricesByCode), Options{CategoryColumn: "code"})
	require.NoError(t, err)

	rsi, err := holder.RSI(2, "close")
	require.NoError(t, err)

	first, err := Transform(rsi, table, TransformOptions{UseCategory: true})
	require.NoError(t, err)

	second, err := Transform(rsi, table, TransformOptions{UseCategory: true})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, DefaultOutputName, first.Name)

	var a, b bytes.Buffer
	require.NoError(t, WriteCSV(&a, first))
	require.NoError(t, WriteCSV(&b, second))
	assert.Equal(t, a.String(), b.String())
}

func TestTransform_DropsMissingRows(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(pricesByCode), Options{CategoryColumn: "code"})
	require.NoError(t, err)

	diff, err := holder.Diff("open")
	require.NoError(t, err)

	out, err := Transform(diff, table, TransformOptions{UseCategory: true})
	require.NoError(t, err)

	// ibm has a single open value; aapl opens 9, 11, 13
	require.Len(t, out.Rows, 2)
	assert.Equal(t, 2.0, out.Rows[0].Value)
	assert.Equal(t, 2.0, out.Rows[1].Value)
}

func TestTransform_WithoutCategory(t *testing.T) {
	const data = `date,close
2024-01-02,3
2024-01-01,1
2024-01-01,2
`
	table, err := ReadCSV(strings.NewReader(data), Options{})
	require.NoError(t, err)

	sum, err := holder.MSum(10, "close")
	require.NoError(t, err)

	out, err := Transform(sum, table, TransformOptions{Name: "sum"})
	require.NoError(t, err)

	// repeated timestamps are still one tick per row
	values := make([]float64, len(out.Rows))
	for i, row := range out.Rows {
		values[i] = row.Value
	}
	assert.Equal(t, []float64{1, 3, 6}, values)

	_, err = Transform(sum, table, TransformOptions{UseCategory: true})
	assert.ErrorIs(t, err, ErrNoCategoryColumn)
}

func TestTransform_MissingFields(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(pricesByCode), Options{CategoryColumn: "code"})
	require.NoError(t, err)

	vol, err := holder.Latest("volume")
	require.NoError(t, err)

	high, err := holder.Latest("high")
	require.NoError(t, err)

	spread, err := holder.Sub(vol, high)
	require.NoError(t, err)

	_, err = Transform(spread, table, TransformOptions{UseCategory: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "volume")
	assert.Contains(t, err.Error(), "high")
}

func TestTransform_DuplicateCategory(t *testing.T) {
	const data = `date,code,close
2024-01-01,aapl,1
2024-01-01,AAPL,2
`
	table, err := ReadCSV(strings.NewReader(data), Options{CategoryColumn: "code"})
	require.NoError(t, err)

	h, err := holder.Latest("close")
	require.NoError(t, err)

	_, err = Transform(h, table, TransformOptions{UseCategory: true})
	assert.ErrorIs(t, err, ErrDuplicateCategory)
}

func TestWriter(t *testing.T) {
	out := &Output{
		Name:        "ma",
		UseCategory: true,
		Rows: []OutputRow{
			{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Category: "aapl", Value: 1.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, out))
	assert.Equal(t, "time\tcategory\tfactor\tvalue\n2024-01-01T00:00:00Z\taapl\tma\t1.5\n", buf.String())

	buf.Reset()
	out.UseCategory = false
	require.NoError(t, WriteCSV(&buf, out))
	assert.Equal(t, "time,factor,value\n2024-01-01T00:00:00Z,ma,1.5\n", buf.String())
}
