package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// scale is the fixed number of decimal places for all monetary values.
const scale = 2

// Money is an immutable, non-negative monetary value with a fixed
// 2-digit scale. Every construction and arithmetic result is rounded
// half-up. Create instances through the factory functions; the zero
// value of the struct is a valid zero amount.
type Money struct {
	amount decimal.Decimal
}

// New creates a Money from a decimal value.
func New(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("money amount cannot be negative: %s", d)
	}
	return Money{amount: d.Round(scale)}, nil
}

// FromFloat creates a Money from a float64.
func FromFloat(v float64) (Money, error) {
	return New(decimal.NewFromFloat(v))
}

// MustFromFloat is FromFloat that panics on a negative input.
// Intended for constants and tests.
func MustFromFloat(v float64) Money {
	m, err := FromFloat(v)
	if err != nil {
		panic(err)
	}
	return m
}

// FromString creates a Money from a decimal string such as "10.50".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return New(d)
}

// Zero returns a zero-valued Money.
func Zero() Money {
	return Money{amount: decimal.Zero.Round(scale)}
}

// Add returns the sum of two values.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount).Round(scale)}
}

// Sub returns the difference of two values. A result below zero is an
// error; Money never goes negative.
func (m Money) Sub(other Money) (Money, error) {
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, fmt.Errorf("money subtraction result cannot be negative: %s - %s", m.amount, other.amount)
	}
	return Money{amount: result.Round(scale)}, nil
}

// MulInt multiplies by a non-negative integer quantity.
func (m Money) MulInt(qty int) (Money, error) {
	if qty < 0 {
		return Money{}, fmt.Errorf("money multiplier cannot be negative: %d", qty)
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(qty))).Round(scale)}, nil
}

// MulFrac multiplies by a non-negative fraction (0.20 = 20%).
// Used for margin calculations.
func (m Money) MulFrac(frac float64) (Money, error) {
	if frac < 0 {
		return Money{}, fmt.Errorf("money fraction cannot be negative: %v", frac)
	}
	return Money{amount: m.amount.Mul(decimal.NewFromFloat(frac)).Round(scale)}, nil
}

// DivInt divides by a positive integer, rounding half-up to 2 places.
func (m Money) DivInt(divisor int) (Money, error) {
	if divisor <= 0 {
		return Money{}, fmt.Errorf("money divisor must be positive: %d", divisor)
	}
	return Money{amount: m.amount.DivRound(decimal.NewFromInt(int64(divisor)), scale)}, nil
}

// Equal reports whether two values represent the same amount.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// GreaterThan reports whether m is strictly greater than other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// LessThan reports whether m is strictly less than other.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Decimal returns the underlying decimal amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount.Round(scale)
}

// Float64 returns the amount as a float64 for serialization at the
// boundary. Domain arithmetic must never round-trip through this.
func (m Money) Float64() float64 {
	f, _ := m.amount.Round(scale).Float64()
	return f
}

// String formats the amount as "R$ <amount>".
func (m Money) String() string {
	return "R$ " + m.amount.StringFixed(scale)
}
