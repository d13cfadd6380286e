package batch

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

// TimeFormat is the layout of the time column written by the Writer.
const TimeFormat = time.RFC3339

// Writer writes transform outputs in long format:
// time, [category,] factor, value.
type Writer struct {
	file io.Closer

	*csv.Writer
}

func NewWriter(w io.Writer, comma rune) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	writer := &Writer{Writer: cw}
	if c, ok := w.(io.Closer); ok {
		writer.file = c
	}
	return writer
}

func NewCSVWriter(w io.Writer) *Writer { return NewWriter(w, ',') }
func NewTSVWriter(w io.Writer) *Writer { return NewWriter(w, '\t') }

// NewWriterFile creates filename, writing tab separated values when tsv is set.
func NewWriterFile(filename string, tsv bool) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	if tsv {
		return NewTSVWriter(f), nil
	}
	return NewCSVWriter(f), nil
}

// WriteOutputs writes the header and the rows of every output, in order.
func (w *Writer) WriteOutputs(outputs ...*Output) error {
	useCategory := false
	for _, o := range outputs {
		useCategory = useCategory || o.UseCategory
	}

	header := []string{"time", "factor", "value"}
	if useCategory {
		header = []string{"time", "category", "factor", "value"}
	}

	if err := w.Write(header); err != nil {
		return err
	}

	for _, o := range outputs {
		for _, row := range o.Rows {
			record := []string{row.Time.Format(TimeFormat), o.Name, FormatValue(row.Value)}
			if useCategory {
				record = []string{row.Time.Format(TimeFormat), row.Category, o.Name, FormatValue(row.Value)}
			}

			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func (w *Writer) Close() error {
	w.Writer.Flush()
	if w.file != nil {
		return w.file.Close()
	}
	return w.Writer.Error()
}

// FormatValue uses the shortest representation that reads back the same float.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteCSV(w io.Writer, outputs ...*Output) error {
	return NewCSVWriter(w).WriteOutputs(outputs...)
}

func WriteTSV(w io.Writer, outputs ...*Output) error {
	return NewTSVWriter(w).WriteOutputs(outputs...)
}
