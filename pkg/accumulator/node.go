package accumulator

import (
	"math"
	"sort"
	"strings"
)

// Record is the set of named fields pushed into a node at one tick.
// Boolean inputs are encoded as 1 and 0.
type Record map[string]float64

// Value is the result of a node. Scalar nodes return a single element,
// tuple nodes return Arity() elements.
type Value []float64

func Scalar(f float64) Value {
	return Value{f}
}

// Float returns the first element of the value, NaN for an empty value.
func (v Value) Float() float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	return v[0]
}

func (v Value) Copy() Value {
	o := make(Value, len(v))
	copy(o, v)
	return o
}

// Truthy reports whether f should be read as a boolean true.
func Truthy(f float64) bool {
	return f != 0 && !math.IsNaN(f)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// Node is the contract every accumulator satisfies, leaf or composite.
//
// Nodes are single-writer: Push must be called from one goroutine, in tick
// order. Result is pure with respect to the state built by previous pushes.
type Node interface {
	// Push updates the node with the fields of one tick. Missing fields
	// leave the state untouched.
	Push(record Record)

	// Result returns the current value, or ErrNoData / ErrNotEnoughData when
	// the node has not observed enough ticks. Composites and window
	// statistics compute at most once between two pushes.
	Result() (Value, error)

	// Window is the minimum number of ticks needed for a meaningful result.
	Window() int

	// Arity is the number of elements returned by Result.
	Arity() int

	// Dependency returns the lower-cased field names the node reads.
	Dependency() []string

	// IsFull reports whether the node has accumulated Window() ticks.
	IsFull() bool

	// Clone returns a structural deep copy with independent state.
	Clone() Node
}

// memo holds the result of a node until the next push. The cached value is
// never handed out, callers get a copy.
type memo struct {
	value Value
	err   error
	fresh bool
}

func (m *memo) invalidate() {
	m.value, m.err, m.fresh = nil, nil, false
}

func (m *memo) get(compute func() (Value, error)) (Value, error) {
	if !m.fresh {
		m.value, m.err = compute()
		m.fresh = true
	}

	if m.err != nil {
		return nil, m.err
	}
	return m.value.Copy(), nil
}

func normalizeFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.ToLower(f)
	}
	return out
}

func unionFields(lists ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range lists {
		for _, f := range list {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
