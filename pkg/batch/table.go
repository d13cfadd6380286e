package batch

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/c9s/xfactor/pkg/accumulator"
)

var (
	// ErrMissingColumn is returned when the time or the category column is not in the header.
	ErrMissingColumn = errors.New("column not found in the header")

	// ErrInvalidTimeFormat is returned when a time cell matches none of the supported layouts.
	ErrInvalidTimeFormat = errors.New("cannot parse time string")

	// ErrInvalidValueFormat is returned when a field cell is neither a number nor a bool.
	ErrInvalidValueFormat = errors.New("field value must be a number or a bool")
)

// TimeLayouts are tried in order when parsing the time column; integers are
// read as unix seconds.
var TimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Table is a time indexed table, optionally grouped by a category column.
type Table struct {
	// Fields are the lower-cased value columns
	Fields []string

	// Category is the name of the category column, empty when there is none
	Category string

	Rows []Row
}

type Row struct {
	Time     time.Time
	Category string
	Fields   accumulator.Record
}

// HasField reports whether the table carries the given value column.
func (t *Table) HasField(field string) bool {
	field = strings.ToLower(field)
	for _, f := range t.Fields {
		if f == field {
			return true
		}
	}
	return false
}

type Options struct {
	TimeColumn     string
	CategoryColumn string
}

const DefaultTimeColumn = "date"

func ReadCSVFile(filename string, options Options) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f, options)
}

// ReadCSV reads a table whose first line is the header. Every column that is
// neither the time nor the category column is a value column. Empty cells
// are left out of the row.
func ReadCSV(r io.Reader, options Options) (*Table, error) {
	if options.TimeColumn == "" {
		options.TimeColumn = DefaultTimeColumn
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read the csv header")
	}

	timeIdx, categoryIdx := -1, -1
	table := &Table{}
	var fieldIdx []int
	for i, col := range header {
		col = strings.TrimSpace(col)
		switch {
		case strings.EqualFold(col, options.TimeColumn):
			timeIdx = i
		case options.CategoryColumn != "" && strings.EqualFold(col, options.CategoryColumn):
			categoryIdx = i
			table.Category = col
		default:
			fieldIdx = append(fieldIdx, i)
			table.Fields = append(table.Fields, strings.ToLower(col))
		}
	}

	if timeIdx < 0 {
		return nil, errors.Wrapf(ErrMissingColumn, "time column %q", options.TimeColumn)
	}
	if options.CategoryColumn != "" && categoryIdx < 0 {
		return nil, errors.Wrapf(ErrMissingColumn, "category column %q", options.CategoryColumn)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		row := Row{Fields: accumulator.Record{}}
		row.Time, err = ParseTime(record[timeIdx])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		if categoryIdx >= 0 {
			row.Category = strings.TrimSpace(record[categoryIdx])
		}

		for k, i := range fieldIdx {
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}

			v, err := ParseValue(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %s", line, table.Fields[k])
			}
			row.Fields[table.Fields[k]] = v
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}

	return time.Time{}, errors.Wrapf(ErrInvalidTimeFormat, "given %q", s)
}

// ParseValue reads a number, or a bool as 1 / 0.
func ParseValue(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "true":
		return 1.0, nil
	case "false":
		return 0.0, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidValueFormat, "given %q", s)
	}
	return v, nil
}
