package factorconfig

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/c9s/xfactor/pkg/holder"
)

var (
	ErrUnknownOp = errors.New("unknown op")
	ErrArgCount  = errors.New("unexpected number of arguments")
)

// BuildFunc builds the holder of expr, whose arguments are already built.
type BuildFunc func(expr *Expr, args []holder.Holder) (holder.Holder, error)

// Op describes how to build one op. MinArgs and MaxArgs bound the number of
// sub expressions.
type Op struct {
	MinArgs, MaxArgs int
	Build            BuildFunc
}

var registry = map[string]Op{}

// RegisterOp adds or replaces an op; names are case insensitive.
func RegisterOp(name string, op Op) {
	registry[strings.ToLower(name)] = op
}

// Ops returns the sorted registered op names.
func Ops() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build turns an expression tree into a holder.
func Build(expr *Expr) (holder.Holder, error) {
	name := strings.ToLower(expr.Op)
	op, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOp, "%q", expr.Op)
	}

	if len(expr.Args) < op.MinArgs || len(expr.Args) > op.MaxArgs {
		return nil, errors.Wrapf(ErrArgCount, "%s expects %d to %d arguments, given %d", name, op.MinArgs, op.MaxArgs, len(expr.Args))
	}

	args := make([]holder.Holder, len(expr.Args))
	for i := range expr.Args {
		h, err := Build(&expr.Args[i])
		if err != nil {
			return nil, errors.Wrapf(err, "%s argument #%d", name, i)
		}
		args[i] = h
	}

	h, err := op.Build(expr, args)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return h, nil
}
