package style

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// MissingValue is rendered in place of NaN.
const MissingValue = "-"

func NewDefaultTableStyle() *table.Style {
	style := table.Style{
		Name:    "StyleRounded",
		Box:     table.StyleBoxRounded,
		Format:  table.FormatOptionsDefault,
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
		Color:   table.ColorOptionsYellowWhiteOnBlack,
	}
	style.Color.Row = text.Colors{text.FgHiYellow, text.BgHiBlack}
	style.Color.RowAlternate = text.Colors{text.FgYellow, text.BgBlack}
	return &style
}

// NewTable returns a table writer mirrored to w. A nil style renders plain
// ascii, which is what tests and pipes want.
func NewTable(w io.Writer, style *table.Style, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if style != nil {
		t.SetStyle(*style)
	} else {
		t.SetStyle(table.StyleDefault)
	}

	t.AppendHeader(header)
	return t
}

func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return MissingValue
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintHeading writes a one line heading, highlighted when withColor is set.
func PrintHeading(w io.Writer, withColor bool, format string, args ...interface{}) {
	if withColor {
		color.New(color.FgHiYellow).Fprintf(w, format+"\n", args...)
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}
