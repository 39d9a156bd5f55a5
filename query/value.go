package query

import (
	"math"
	"strconv"
)

// NoData is shown wherever a metric has nothing to report.
const NoData = "-"

// Kind tells which field of a Value is set.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindText
)

// Value is one table cell.
type Value struct {
	Kind  Kind
	Int   int
	Float float64
	Text  string
}

// None is the "no data" cell.
func None() Value { return Value{} }

func Int(n int) Value { return Value{Kind: KindInt, Int: n} }

// Float rounds f to one decimal.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: math.Round(f*10) / 10} }

func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// textOrNone wraps the result of an argmax.
func textOrNone(key string, ok bool) Value {
	if !ok {
		return None()
	}
	return Text(key)
}

// ratio guards the division behind per-message averages.
func ratio(num, den int) Value {
	if den == 0 {
		return None()
	}
	return Float(float64(num) / float64(den))
}

// IsNone reports whether v is the "no data" cell.
func (v Value) IsNone() bool { return v.Kind == KindNone }

// Number returns the numeric value of an int or float cell.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	return 0, false
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', 1, 64)
	case KindText:
		return v.Text
	}
	return NoData
}
