package holder

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/c9s/xfactor/pkg/accumulator"
)

var log = logrus.WithField("component", "holder")

var (
	ErrNoHolderOperand = errors.New("at least one operand should be a holder or a node")
	ErrInvalidOperand  = errors.New("operand should be a holder, a node, a number, a bool or a field name")
	ErrScalarTemplate  = errors.New("holder template should be scalar valued")
)

// Tick is the cross-section of one timestamp: entity -> fields.
type Tick map[string]accumulator.Record

// Holder lifts a single entity expression to every entity of the stream.
//
// Holders are single-writer: ticks must be pushed from one goroutine in time
// order. Value is cached until the next push.
type Holder interface {
	Push(tick Tick)

	// Value returns the value of every known entity, NaN when missing.
	Value() Values

	ValueByName(name string) float64
	ValueByNames(names []string) Values

	// SymbolList returns the sorted entity keys; the list only grows.
	SymbolList() []string

	IsFull() bool
	IsFullByName(name string) bool

	Window() int
	Dependency() []string

	Clone() Holder
}

// cache is the freshness bit plus the last full read.
type cache struct {
	values Values
	fresh  bool
}

func (c *cache) invalidate() {
	c.fresh = false
	c.values = nil
}

func (c *cache) store(values Values) Values {
	c.values = values
	c.fresh = true
	return values.Copy()
}

func (c *cache) lookup(name string) (float64, bool) {
	if !c.fresh {
		return 0, false
	}

	if v, ok := c.values[name]; ok {
		return v, true
	}
	return math.NaN(), true
}

// asHolder coerces a combinator operand: holders are cloned, nodes become
// broadcast holders, field names become Latest holders and numbers or
// bools become constant holders.
func asHolder(x interface{}) (Holder, error) {
	switch tp := x.(type) {
	case Holder:
		return tp.Clone(), nil
	case accumulator.Node:
		h, err := New(tp)
		if err != nil {
			return nil, err
		}
		return h, nil
	case string:
		return Latest(tp)
	}

	if f, ok := toFloat(x); ok {
		return Identity(f), nil
	}

	return nil, errors.Wrapf(ErrInvalidOperand, "given %T", x)
}

func isHolderLike(x interface{}) bool {
	switch x.(type) {
	case Holder, accumulator.Node:
		return true
	}
	return false
}

func toFloat(x interface{}) (float64, bool) {
	switch tp := x.(type) {
	case float64:
		return tp, true
	case float32:
		return float64(tp), true
	case int:
		return float64(tp), true
	case int32:
		return float64(tp), true
	case int64:
		return float64(tp), true
	case bool:
		if tp {
			return 1.0, true
		}
		return 0.0, true
	}
	return 0, false
}

func normalizeTick(tick Tick) Tick {
	out := make(Tick, len(tick))
	for name, record := range tick {
		r := make(accumulator.Record, len(record))
		for field, v := range record {
			r[strings.ToLower(field)] = v
		}
		out[strings.ToLower(name)] = r
	}
	return out
}
