// Package money implements an exact decimal amount of hundredths.
//
// All arithmetic is exact. Values are immutable; every operation returns a
// new Money. Parsing truncates to two decimals and division truncates toward
// zero, so a division never allocates more than the original amount.
// Precision is unbounded; only the int64 view returned by Cents is limited.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "bookkeeper/internal/errors"
)

// scale is the number of fractional digits kept by Money.
const scale = 2

var amountPattern = regexp.MustCompile(`^[-+]?\d*([.,]\d*)?$`)

// Money is an exact amount with two decimal places.
// The zero value is a valid zero amount.
type Money struct {
	d decimal.Decimal
}

var (
	// Zero is the zero amount.
	Zero = Money{}
	// Cent is the smallest representable positive amount, 0.01.
	Cent = Money{d: decimal.New(1, -scale)}
)

// From parses a decimal-like value into Money. Accepted inputs are Money,
// decimal.Decimal, integer kinds, finite floats and strings with an optional sign,
// digits and an optional decimal point or comma. Anything else fails with
// an INVALID_AMOUNT error.
func From(v any) (Money, error) {
	switch x := v.(type) {
	case Money:
		return x, nil
	case *Money:
		if x == nil {
			return Zero, invalidAmount(v)
		}
		return *x, nil
	case decimal.Decimal:
		return fromDecimal(x), nil
	case int:
		return fromDecimal(decimal.NewFromInt(int64(x))), nil
	case int8:
		return fromDecimal(decimal.NewFromInt(int64(x))), nil
	case int16:
		return fromDecimal(decimal.NewFromInt(int64(x))), nil
	case int32:
		return fromDecimal(decimal.NewFromInt(int64(x))), nil
	case int64:
		return fromDecimal(decimal.NewFromInt(x)), nil
	case uint:
		return fromDecimal(decimal.NewFromUint64(uint64(x))), nil
	case uint8:
		return fromDecimal(decimal.NewFromUint64(uint64(x))), nil
	case uint16:
		return fromDecimal(decimal.NewFromUint64(uint64(x))), nil
	case uint32:
		return fromDecimal(decimal.NewFromUint64(uint64(x))), nil
	case uint64:
		return fromDecimal(decimal.NewFromUint64(x)), nil
	case float32:
		return fromFloat(float64(x), v)
	case float64:
		return fromFloat(x, v)
	case string:
		return parse(x)
	default:
		return Zero, invalidAmount(v)
	}
}

// MustFrom is like From but panics on invalid input. Intended for constants
// and tests.
func MustFrom(v any) Money {
	m, err := From(v)
	if err != nil {
		panic(err)
	}
	return m
}

// FromCents creates Money from a number of hundredths.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -scale)}
}

func parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) || !strings.ContainsAny(s, "0123456789") {
		return Zero, invalidAmount(s)
	}
	normalized := strings.Replace(s, ",", ".", 1)
	if strings.HasSuffix(normalized, ".") {
		normalized += "0"
	}
	if strings.HasPrefix(normalized, ".") || strings.HasPrefix(normalized, "-.") || strings.HasPrefix(normalized, "+.") {
		normalized = strings.Replace(normalized, ".", "0.", 1)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Zero, apperrors.Wrap(invalidAmount(s), err)
	}
	return fromDecimal(d), nil
}

func fromFloat(f float64, v any) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, invalidAmount(v)
	}
	return fromDecimal(decimal.NewFromFloat(f)), nil
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Truncate(scale)}
}

func invalidAmount(v any) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrInvalidAmount, fmt.Sprintf("Invalid amount: %v", v))
}

// Plus returns m + o.
func (m Money) Plus(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Minus returns m - o.
func (m Money) Minus(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// Negate returns -m.
func (m Money) Negate() Money { return Money{d: m.d.Neg()} }

// Abs returns |m|.
func (m Money) Abs() Money { return Money{d: m.d.Abs()} }

// Multiply returns m * weight.
func (m Money) Multiply(weight int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(weight))}
}

// Divide returns m / divisor truncated toward zero at two decimals.
// The divisor must be positive.
func (m Money) Divide(divisor int64) Money {
	if divisor <= 0 {
		panic(fmt.Sprintf("money: non-positive divisor %d", divisor))
	}
	cents := m.bigCents()
	cents.Quo(cents, big.NewInt(divisor))
	return Money{d: decimal.NewFromBigInt(cents, -scale)}
}

// Cents returns the amount as an integer number of hundredths. It panics
// when the amount does not fit in an int64; use Decimal for larger values.
func (m Money) Cents() int64 {
	cents := m.bigCents()
	if !cents.IsInt64() {
		panic(fmt.Sprintf("money: %s hundredths overflow int64", cents))
	}
	return cents.Int64()
}

func (m Money) bigCents() *big.Int {
	return m.d.Shift(scale).Truncate(0).BigInt()
}

// Equals reports whether m and o have the same value.
func (m Money) Equals(o Money) bool { return m.d.Equal(o.d) }

// Gt reports whether m > o.
func (m Money) Gt(o Money) bool { return m.d.GreaterThan(o.d) }

// Gte reports whether m >= o.
func (m Money) Gte(o Money) bool { return m.d.GreaterThanOrEqual(o.d) }

// Lt reports whether m < o.
func (m Money) Lt(o Money) bool { return m.d.LessThan(o.d) }

// Lte reports whether m <= o.
func (m Money) Lte(o Money) bool { return m.d.LessThanOrEqual(o.d) }

// IsZero reports whether m is zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// Sign returns -1, 0 or 1 depending on the sign of m.
func (m Money) Sign() int { return m.d.Sign() }

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// String renders m with exactly two fractional digits.
func (m Money) String() string { return m.d.StringFixed(scale) }

// Format renders m with the given number of fractional digits, truncating
// digits beyond it.
func (m Money) Format(digits int32) string {
	return m.d.Truncate(digits).StringFixed(digits)
}

// Sum adds up all given amounts.
func Sum(values ...Money) Money {
	total := Zero
	for _, v := range values {
		total = total.Plus(v)
	}
	return total
}

// MarshalJSON encodes m as a string with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return apperrors.Wrap(invalidAmount(raw), err)
		}
		raw = s
	}
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer. Amounts are stored as exact decimal text.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return apperrors.Wrap(invalidAmount(value), err)
	}
	*m = fromDecimal(d)
	return nil
}
