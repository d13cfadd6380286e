package batch

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/c9s/xfactor/pkg/holder"
)

var log = logrus.WithField("component", "batch")

var (
	ErrMissingField      = errors.New("dependency field is not a table column")
	ErrDuplicateCategory = errors.New("duplicate category within one timestamp")
	ErrNoCategoryColumn  = errors.New("table has no category column")
)

// ImplicitEntity is the entity key used when the table has no category.
const ImplicitEntity = "__all__"

const DefaultOutputName = "transformed"

type TransformOptions struct {
	Name        string
	UseCategory bool
}

type Output struct {
	Name        string
	UseCategory bool
	Rows        []OutputRow
}

type OutputRow struct {
	Time     time.Time
	Category string
	Value    float64
}

// Transform replays the table through a copy of h, tick by tick, and
// collects the values aligned with the input rows in time order. Rows
// without a value are dropped.
//
// With UseCategory, the rows sharing a timestamp form one tick keyed by
// category. Without it, every row is a tick of the single entity
// ImplicitEntity, even when timestamps repeat.
func Transform(h holder.Holder, table *Table, options TransformOptions) (*Output, error) {
	if err := checkDependency(h, table); err != nil {
		return nil, err
	}

	if options.UseCategory && table.Category == "" {
		return nil, ErrNoCategoryColumn
	}

	if options.Name == "" {
		options.Name = DefaultOutputName
	}

	h = h.Clone()

	rows := make([]Row, len(table.Rows))
	copy(rows, table.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time.Before(rows[j].Time)
	})

	output := &Output{Name: options.Name, UseCategory: options.UseCategory}

	var err error
	if options.UseCategory {
		err = transformByCategory(h, rows, output)
	} else {
		transformRows(h, rows, output)
	}

	if err != nil {
		return nil, err
	}

	dropped := len(rows) - len(output.Rows)
	rowsTransformedMetrics.WithLabelValues(output.Name).Add(float64(len(output.Rows)))
	rowsDroppedMetrics.WithLabelValues(output.Name).Add(float64(dropped))
	if dropped > 0 {
		log.Debugf("%s: %d of %d rows dropped without value", output.Name, dropped, len(rows))
	}

	return output, nil
}

func checkDependency(h holder.Holder, table *Table) (err error) {
	for _, field := range h.Dependency() {
		if !table.HasField(field) {
			err = multierr.Append(err, errors.Wrapf(ErrMissingField, "%q", field))
		}
	}
	return err
}

func transformRows(h holder.Holder, rows []Row, output *Output) {
	for _, row := range rows {
		h.Push(holder.Tick{ImplicitEntity: row.Fields})

		v := h.ValueByName(ImplicitEntity)
		if math.IsNaN(v) {
			continue
		}
		output.Rows = append(output.Rows, OutputRow{Time: row.Time, Value: v})
	}
}

func transformByCategory(h holder.Holder, rows []Row, output *Output) error {
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Time.Equal(rows[start].Time) {
			end++
		}

		group := rows[start:end]
		tick := make(holder.Tick, len(group))
		names := make([]string, len(group))
		for i, row := range group {
			name := strings.ToLower(row.Category)
			if _, ok := tick[name]; ok {
				return errors.Wrapf(ErrDuplicateCategory, "%s at %s", row.Category, row.Time)
			}
			tick[name] = row.Fields
			names[i] = name
		}

		h.Push(tick)
		values := h.ValueByNames(names)

		for i, row := range group {
			v := values[names[i]]
			if math.IsNaN(v) {
				continue
			}
			output.Rows = append(output.Rows, OutputRow{Time: row.Time, Category: row.Category, Value: v})
		}

		start = end
	}
	return nil
}
