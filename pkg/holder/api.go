package holder

import (
	"github.com/c9s/xfactor/pkg/accumulator"
)

// The factories below take a dependency that is either a field name, a list
// of field names or an upstream Holder, whose values are fed into the leaf.

type leafConstructor func(dependency interface{}) (accumulator.Node, error)

func build(dependency interface{}, ctor leafConstructor) (Holder, error) {
	if upstream, ok := dependency.(Holder); ok {
		template, err := ctor(nil)
		if err != nil {
			return nil, err
		}

		h, err := NewCompounded(upstream, template)
		if err != nil {
			return nil, err
		}
		return h, nil
	}

	template, err := ctor(dependency)
	if err != nil {
		return nil, err
	}

	h, err := New(template)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func windowed(window int, ctor func(window int, dependency interface{}) (accumulator.Node, error)) leafConstructor {
	return func(dependency interface{}) (accumulator.Node, error) {
		return ctor(window, dependency)
	}
}

// Latest holds the last value of a field for every entity.
func Latest(field string) (Holder, error) {
	return New(accumulator.NewLatest(field))
}

func Last(field string) (Holder, error) { return Latest(field) }

// Identity yields value for every entity seen in the stream.
func Identity(value float64) Holder {
	h, _ := New(accumulator.NewConstant(value, 1))
	return h
}

func MA(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingAverage))
}

func MSum(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingSum))
}

func MVariance(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingVariance))
}

func MStd(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingStandardDeviation))
}

func MMax(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingMax))
}

func MMin(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingMin))
}

func MQuantile(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingQuantile))
}

func MRank(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingRank))
}

func MAllTrue(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingAllTrue))
}

func MAnyTrue(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingAnyTrue))
}

// MNPositive counts the positive values of the window.
func MNPositive(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingCountedPositive))
}

// MAPositive averages the positive values of the window.
func MAPositive(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingPositiveAverage))
}

func RSI(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingRSI))
}

func MLogReturn(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingLogReturn))
}

func EMA(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewXAverage))
}

func MACD(short, long int, dependency interface{}) (Holder, error) {
	return build(dependency, func(dependency interface{}) (accumulator.Node, error) {
		return accumulator.NewMACD(short, long, dependency)
	})
}

func Diff(dependency interface{}) (Holder, error) {
	return build(dependency, accumulator.NewDiff)
}

func ReturnSimple(dependency interface{}) (Holder, error) {
	return build(dependency, accumulator.NewSimpleReturn)
}

func ReturnLog(dependency interface{}) (Holder, error) {
	return build(dependency, accumulator.NewLogReturn)
}

// MCorrelation reads two fields, e.g. []string{"close", "open"}.
func MCorrelation(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingCorrelation))
}

// MResidue reads the (y, x) fields.
func MResidue(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingResidue))
}

// MSharp reads the (ret, riskfree) fields.
func MSharp(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingSharp))
}

// MSortino reads the (ret, riskfree) fields.
func MSortino(window int, dependency interface{}) (Holder, error) {
	return build(dependency, windowed(window, accumulator.NewMovingSortino))
}

func Maximum(dependency interface{}) (Holder, error) {
	return build(dependency, accumulator.NewMaximum)
}

func Minimum(dependency interface{}) (Holder, error) {
	return build(dependency, accumulator.NewMinimum)
}
