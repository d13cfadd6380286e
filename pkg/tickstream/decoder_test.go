package tickstream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/xfactor/pkg/accumulator"
	"github.com/c9s/xfactor/pkg/holder"
)

func TestDecoder(t *testing.T) {
	input := `{"AAPL": {"Close": 1.5, "up": true}, "ibm": {"close": "2", "up": false}}

{"aapl": {"close": 3, "volume": null}}
`
	d := NewDecoder(strings.NewReader(input))

	tick, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, holder.Tick{
		"aapl": accumulator.Record{"close": 1.5, "up": 1},
		"ibm":  accumulator.Record{"close": 2, "up": 0},
	}, tick)

	tick, err = d.Decode()
	require.NoError(t, err)
	assert.Equal(t, holder.Tick{"aapl": accumulator.Record{"close": 3}}, tick)

	_, err = d.Decode()
	assert.Equal(t, io.EOF, err)

	_, err = d.Decode()
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_DecodeAll(t *testing.T) {
	ticks, err := NewDecoder(strings.NewReader("{\"a\":{\"x\":1}}\n{\"a\":{\"x\":2}}")).DecodeAll()
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, 2.0, ticks[1]["a"]["x"])

	ticks, err = NewDecoder(strings.NewReader("\n\n")).DecodeAll()
	require.NoError(t, err)
	assert.Empty(t, ticks)
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name string
		give string
		err  error
	}{
		{name: "malformed", give: `{"a": `, err: ErrInvalidTick},
		{name: "array", give: `[1, 2]`, err: ErrInvalidTick},
		{name: "entity not object", give: `{"a": 1}`, err: ErrInvalidTick},
		{name: "string field", give: `{"a": {"x": "abc"}}`, err: ErrInvalidField},
		{name: "nested field", give: `{"a": {"x": [1]}}`, err: ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(strings.NewReader("\n" + tt.give + "\n")).Decode()
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}
