// Package numeric holds the money-safety helpers shared by the sale and cash
// register flows. Every untrusted amount goes through ToFinite before it takes
// part in arithmetic, so NaN, ±Inf, nil or garbage strings never leak into a
// persisted total.
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance is the maximum absolute gap accepted when two money amounts are
// compared (one cent).
const Tolerance = 0.01

// ToFinite converts v to a finite float64. Anything that is not a number, or
// is NaN / ±Inf, becomes 0.
func ToFinite(v interface{}) float64 {
	f, _ := Parse(v)
	return f
}

// Parse is ToFinite with a flag: ok is false when v was not a finite number
// (nil, garbage, NaN, ±Inf) and 0 was returned in its place.
func Parse(v interface{}) (f float64, ok bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case decimal.Decimal:
		f = n.InexactFloat64()
	case *decimal.Decimal:
		if n == nil {
			return 0, false
		}
		f = n.InexactFloat64()
	default:
		return 0, false
	}
	if !IsFinite(f) {
		return 0, false
	}
	return f, true
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Money rounds a finite float to cents. Callers must check IsFinite first.
func Money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// Equal compares two amounts within Tolerance.
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(decimal.NewFromFloat(Tolerance))
}

// SafeDiv returns a / b, or zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
