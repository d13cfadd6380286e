package factorconfig

import (
	"github.com/pkg/errors"

	"github.com/c9s/xfactor/pkg/holder"
)

// lift drops the concrete holder type, keeping a nil interface on error.
func lift[T holder.Holder](h T, err error) (holder.Holder, error) {
	if err != nil {
		return nil, err
	}
	return h, nil
}

// dependency returns the upstream holder when the expression has one
// argument, else the declared field(s).
func dependency(expr *Expr, args []holder.Holder) interface{} {
	switch {
	case len(args) == 1:
		return args[0]
	case len(expr.Fields) > 0:
		return expr.Fields
	case expr.Field != "":
		return expr.Field
	}
	return nil
}

func binary(ctor func(left, right interface{}) (*holder.Combined, error)) Op {
	return Op{MinArgs: 2, MaxArgs: 2, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(ctor(args[0], args[1]))
	}}
}

func unary(ctor func(x interface{}) (*holder.Mapped, error)) Op {
	return Op{MinArgs: 1, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(ctor(args[0]))
	}}
}

func crossSection(ctor func(x interface{}) (*holder.CrossSection, error)) Op {
	return Op{MinArgs: 1, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(ctor(args[0]))
	}}
}

func moving(ctor func(window int, dependency interface{}) (holder.Holder, error)) Op {
	return Op{MinArgs: 0, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return ctor(expr.Window, dependency(expr, args))
	}}
}

func cumulative(ctor func(dependency interface{}) (holder.Holder, error)) Op {
	return Op{MinArgs: 0, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return ctor(dependency(expr, args))
	}}
}

func init() {
	latest := Op{Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		if expr.Field == "" {
			return nil, errors.New("field is required")
		}
		return holder.Latest(expr.Field)
	}}
	RegisterOp("last", latest)
	RegisterOp("latest", latest)

	RegisterOp("const", Op{Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		if expr.Value == nil {
			return nil, errors.New("value is required")
		}
		return holder.Identity(*expr.Value), nil
	}})

	RegisterOp("add", binary(holder.Add))
	RegisterOp("sub", binary(holder.Sub))
	RegisterOp("mul", binary(holder.Mul))
	RegisterOp("div", binary(holder.Div))
	RegisterOp("lt", binary(holder.Lt))
	RegisterOp("le", binary(holder.Le))
	RegisterOp("gt", binary(holder.Gt))
	RegisterOp("ge", binary(holder.Ge))
	RegisterOp("eq", binary(holder.Eq))
	RegisterOp("ne", binary(holder.Ne))
	RegisterOp("and", binary(holder.And))
	RegisterOp("or", binary(holder.Or))

	RegisterOp("neg", unary(holder.Neg))
	RegisterOp("abs", unary(holder.Abs))
	RegisterOp("exp", unary(holder.Exp))
	RegisterOp("log", unary(holder.Log))
	RegisterOp("sqrt", unary(holder.Sqrt))
	RegisterOp("sign", unary(holder.Sign))
	RegisterOp("acos", unary(holder.Acos))
	RegisterOp("acosh", unary(holder.Acosh))
	RegisterOp("asin", unary(holder.Asin))
	RegisterOp("asinh", unary(holder.Asinh))
	RegisterOp("pow", Op{MinArgs: 1, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		if expr.Value == nil {
			return nil, errors.New("value is required as the exponent")
		}
		return lift(holder.Pow(args[0], *expr.Value))
	}})

	RegisterOp("ma", moving(holder.MA))
	RegisterOp("msum", moving(holder.MSum))
	RegisterOp("mvariance", moving(holder.MVariance))
	RegisterOp("mstd", moving(holder.MStd))
	RegisterOp("mmax", moving(holder.MMax))
	RegisterOp("mmin", moving(holder.MMin))
	RegisterOp("mquantile", moving(holder.MQuantile))
	RegisterOp("mrank", moving(holder.MRank))
	RegisterOp("malltrue", moving(holder.MAllTrue))
	RegisterOp("manytrue", moving(holder.MAnyTrue))
	RegisterOp("mnpositive", moving(holder.MNPositive))
	RegisterOp("mapositive", moving(holder.MAPositive))
	RegisterOp("rsi", moving(holder.RSI))
	RegisterOp("ema", moving(holder.EMA))
	RegisterOp("mlogreturn", moving(holder.MLogReturn))
	RegisterOp("mcorrelation", moving(holder.MCorrelation))
	RegisterOp("mresidue", moving(holder.MResidue))
	RegisterOp("msharp", moving(holder.MSharp))
	RegisterOp("msortino", moving(holder.MSortino))

	RegisterOp("macd", Op{MinArgs: 0, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return holder.MACD(expr.Short, expr.Long, dependency(expr, args))
	}})

	RegisterOp("diff", cumulative(holder.Diff))
	RegisterOp("return", cumulative(holder.ReturnSimple))
	RegisterOp("logreturn", cumulative(holder.ReturnLog))
	RegisterOp("maximum", cumulative(holder.Maximum))
	RegisterOp("minimum", cumulative(holder.Minimum))

	RegisterOp("shift", Op{MinArgs: 1, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(holder.Shift(args[0], expr.N))
	}})

	RegisterOp("filter", Op{MinArgs: 2, MaxArgs: 2, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(holder.Filter(args[0], args[1]))
	}})

	RegisterOp("iif", Op{MinArgs: 3, MaxArgs: 3, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(holder.NewIIF(args[0], args[1], args[2]))
	}})

	RegisterOp("csrank", crossSection(holder.CSRank))
	RegisterOp("csquantile", crossSection(holder.CSQuantile))
	RegisterOp("csmean", crossSection(holder.CSMean))
	RegisterOp("csmeanadjusted", crossSection(holder.CSMeanAdjusted))
	RegisterOp("cszscore", crossSection(holder.CSZScore))
	RegisterOp("cspercentile", Op{MinArgs: 1, MaxArgs: 1, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(holder.CSPercentile(args[0], expr.Percent))
	}})
	RegisterOp("csres", Op{MinArgs: 2, MaxArgs: 2, Build: func(expr *Expr, args []holder.Holder) (holder.Holder, error) {
		return lift(holder.CSRes(args[0], args[1]))
	}})
}
