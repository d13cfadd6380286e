package holder

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/c9s/xfactor/pkg/accumulator"
)

// SecurityHolder keeps one private clone of a node template per entity.
// Clones are created on the first tick an entity shows up and are never
// removed.
type SecurityHolder struct {
	template accumulator.Node
	upstream Holder

	// field is the template input fed from the upstream values
	field string

	states  map[string]accumulator.Node
	symbols []string

	cache cache
}

// New builds a broadcast holder from a scalar node template.
func New(template accumulator.Node) (*SecurityHolder, error) {
	if template.Arity() != 1 {
		return nil, errors.Wrapf(ErrScalarTemplate, "given arity %d", template.Arity())
	}

	return &SecurityHolder{
		template: template.Clone(),
		states:   map[string]accumulator.Node{},
	}, nil
}

// NewCompounded feeds the values of upstream into the single input field of
// template, entity by entity.
func NewCompounded(upstream Holder, template accumulator.Node) (*SecurityHolder, error) {
	if template.Arity() != 1 {
		return nil, errors.Wrapf(ErrScalarTemplate, "given arity %d", template.Arity())
	}

	fields := template.Dependency()
	if len(fields) != 1 {
		return nil, errors.Wrapf(accumulator.ErrFieldCount, "compounded template should read exactly one field, given %v", fields)
	}

	return &SecurityHolder{
		template: template.Clone(),
		upstream: upstream.Clone(),
		field:    fields[0],
		states:   map[string]accumulator.Node{},
	}, nil
}

func (h *SecurityHolder) state(name string) accumulator.Node {
	node, ok := h.states[name]
	if ok {
		return node
	}

	node = h.template.Clone()
	h.states[name] = node

	idx := sort.SearchStrings(h.symbols, name)
	h.symbols = append(h.symbols, "")
	copy(h.symbols[idx+1:], h.symbols[idx:])
	h.symbols[idx] = name

	entitiesDiscoveredMetrics.Inc()
	log.Debugf("new entity %s discovered", name)
	return node
}

func (h *SecurityHolder) Push(tick Tick) {
	h.cache.invalidate()

	if h.upstream != nil {
		h.upstream.Push(tick)
		for name, v := range h.upstream.Value() {
			node := h.state(name)
			if math.IsNaN(v) {
				continue
			}
			node.Push(accumulator.Record{h.field: v})
		}
		return
	}

	for name, record := range normalizeTick(tick) {
		h.state(name).Push(record)
	}
}

// compute evaluates one entity. Errors, and panics raised by leaf
// collaborators, are turned into NaN.
func (h *SecurityHolder) compute(name string) (f float64) {
	node, ok := h.states[name]
	if !ok {
		return math.NaN()
	}

	defer func() {
		if r := recover(); r != nil {
			computeFailuresMetrics.Inc()
			log.Debugf("entity %s: recovered from %v", name, r)
			f = math.NaN()
		}
	}()

	v, err := node.Result()
	if err != nil {
		if !accumulator.IsMissing(err) {
			computeFailuresMetrics.Inc()
			log.WithError(err).Debugf("entity %s: unable to compute the value", name)
		}
		return math.NaN()
	}

	return v.Float()
}

func (h *SecurityHolder) Value() Values {
	if h.cache.fresh {
		return h.cache.values.Copy()
	}

	values := make(Values, len(h.states))
	for name := range h.states {
		values[name] = h.compute(name)
	}
	return h.cache.store(values)
}

func (h *SecurityHolder) ValueByName(name string) float64 {
	if v, ok := h.cache.lookup(name); ok {
		return v
	}
	return h.compute(name)
}

func (h *SecurityHolder) ValueByNames(names []string) Values {
	out := make(Values, len(names))
	for _, name := range names {
		out[name] = h.ValueByName(name)
	}
	return out
}

func (h *SecurityHolder) SymbolList() []string {
	out := make([]string, len(h.symbols))
	copy(out, h.symbols)
	return out
}

// IsFull reports whether every known entity has filled its window.
func (h *SecurityHolder) IsFull() bool {
	if len(h.states) == 0 {
		return false
	}

	for name := range h.states {
		if !h.IsFullByName(name) {
			return false
		}
	}
	return true
}

func (h *SecurityHolder) IsFullByName(name string) bool {
	node, ok := h.states[name]
	if !ok {
		return false
	}

	if h.upstream != nil && !h.upstream.IsFullByName(name) {
		return false
	}
	return node.IsFull()
}

func (h *SecurityHolder) Window() int {
	if h.upstream != nil {
		return h.upstream.Window() + h.template.Window() - 1
	}
	return h.template.Window()
}

func (h *SecurityHolder) Dependency() []string {
	if h.upstream != nil {
		return h.upstream.Dependency()
	}
	return h.template.Dependency()
}

func (h *SecurityHolder) Clone() Holder {
	c := &SecurityHolder{
		template: h.template.Clone(),
		field:    h.field,
		states:   make(map[string]accumulator.Node, len(h.states)),
		symbols:  h.SymbolList(),
	}

	if h.upstream != nil {
		c.upstream = h.upstream.Clone()
	}

	for name, node := range h.states {
		c.states[name] = node.Clone()
	}
	return c
}

func (h *SecurityHolder) String() string {
	return fmt.Sprintf("SecurityHolder(window=%d, dependency=%v, entities=%d)", h.Window(), h.Dependency(), len(h.states))
}
