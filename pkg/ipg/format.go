package ipg

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// TxnDateTimeLayout is the gateway's YYYY:MM:DD-HH:mm:ss timestamp.
const TxnDateTimeLayout = "2006:01:02-15:04:05"

// FormatTxnDateTime renders t in loc using TxnDateTimeLayout. A nil loc
// means UTC.
func FormatTxnDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TxnDateTimeLayout)
}

// FormatChargeTotal renders total with exactly two decimals. Rounding is
// decided on the exact binary value of total with ties away from zero, so
// 1.005 (stored as 1.00499...) becomes "1.00" and 0.125 becomes "0.13". The
// gateway recomputes the signature over this string, so it must match what
// browsers produce for Number.prototype.toFixed(2).
func FormatChargeTotal(total float64) string {
	switch {
	case math.IsNaN(total):
		return "NaN"
	case math.Abs(total) >= 1e21:
		return formatNumber(total)
	}

	sign := ""
	if total < 0 {
		sign = "-"
	}

	// 200 bits holds |total|*100 + 0.5 exactly.
	x := new(big.Float).SetPrec(200).SetFloat64(math.Abs(total))
	x.Mul(x, big.NewFloat(100))
	x.Add(x, big.NewFloat(0.5))
	cents, _ := x.Int(nil)

	digits := cents.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

// stringify converts a field value to the text a browser would submit for
// it. The second return value is false for nil.
func stringify(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), true
	case float32:
		return formatNumber(float64(v)), true
	case float64:
		return formatNumber(v), true
	case json.Number:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// formatNumber writes f the way JavaScript's String(number) does: shortest
// round-trip digits, plain notation between 1e-6 and 1e21, exponent notation
// outside that range.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	expSign, expDigits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + expSign + expDigits
}
