// Package amount implements the fixed-point quantity type used for every
// token value in the engine: an unsigned 128-bit integer counted in attos
// (10^18 attos per whole token).
//
// All arithmetic is checked. Addition past the 128-bit cap and subtraction
// below zero return errors instead of wrapping or clamping; ratio math goes
// through MulDiv, which computes the intermediate product in 256-bit space so
// it cannot overflow for in-domain operands.
package amount

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// AttosPerToken is the fixed-point scale: one whole token in attos.
const AttosPerToken = 1_000_000_000_000_000_000

var (
	// ErrOverflow is returned when a result exceeds the 128-bit domain.
	ErrOverflow = errors.New("amount overflow")

	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("amount underflow")

	// ErrDivisionByZero is returned by MulDiv with a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOutOfRange is returned when parsing a value outside the domain.
	ErrOutOfRange = errors.New("amount out of range")
)

// maxAmount is 2^128 - 1, the largest representable Amount.
var maxAmount = func() uint256.Int {
	var m uint256.Int
	m.SetAllOne()
	m.Rsh(&m, 128)
	return m
}()

// Amount is a non-negative 128-bit fixed-point quantity in attos.
// The zero value is zero attos and ready to use.
type Amount struct {
	v uint256.Int
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// Max returns the largest representable amount (2^128 - 1 attos).
func Max() Amount {
	return Amount{v: maxAmount}
}

// FromAttos returns the amount of n attos.
func FromAttos(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// FromTokens returns the amount of n whole tokens.
// n*10^18 always fits: 2^64 * 10^18 < 2^128.
func FromTokens(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	a.v.Mul(&a.v, uint256.NewInt(AttosPerToken))
	return a
}

// Parse parses a decimal atto count.
func Parse(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if v.Gt(&maxAmount) {
		return Amount{}, ErrOutOfRange
	}
	return Amount{v: *v}, nil
}

// Attos returns the atto count as a uint64 and whether it fit.
func (a Amount) Attos() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// Add returns a+o, failing with ErrOverflow past the 128-bit cap.
func (a Amount) Add(o Amount) (Amount, error) {
	var sum Amount
	sum.v.Add(&a.v, &o.v)
	if sum.v.Gt(&maxAmount) {
		return Amount{}, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-o, failing with ErrUnderflow if o > a.
// There is deliberately no saturating variant.
func (a Amount) Sub(o Amount) (Amount, error) {
	if o.v.Gt(&a.v) {
		return Amount{}, ErrUnderflow
	}
	var diff Amount
	diff.v.Sub(&a.v, &o.v)
	return diff, nil
}

// MulDiv returns floor(a*b/den). The product is taken in 256-bit space, so
// the intermediate never overflows; the quotient is checked against the
// 128-bit cap. This is the one ratio routine shared by share minting, share
// redemption, swap quoting and fee computation.
func MulDiv(a, b, den Amount) (Amount, error) {
	if den.v.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	var prod uint256.Int
	prod.Mul(&a.v, &b.v) // 128-bit * 128-bit fits in 256 bits
	var q Amount
	q.v.Div(&prod, &den.v)
	if q.v.Gt(&maxAmount) {
		return Amount{}, ErrOverflow
	}
	return q, nil
}

// Cmp returns -1, 0 or +1 comparing a against o.
func (a Amount) Cmp(o Amount) int {
	return a.v.Cmp(&o.v)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Lt reports a < o.
func (a Amount) Lt(o Amount) bool {
	return a.v.Lt(&o.v)
}

// Gt reports a > o.
func (a Amount) Gt(o Amount) bool {
	return a.v.Gt(&o.v)
}

// Equal reports a == o.
func (a Amount) Equal(o Amount) bool {
	return a.v.Eq(&o.v)
}

// String renders the amount as a decimal atto count.
func (a Amount) String() string {
	return a.v.Dec()
}

// MarshalText implements encoding.TextMarshaler (decimal attos).
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Bytes returns the big-endian byte representation (at most 16 bytes).
func (a Amount) Bytes() []byte {
	return a.v.Bytes()
}

// SetBytes interprets b as a big-endian atto count.
func (a *Amount) SetBytes(b []byte) error {
	if len(b) > 16 {
		return ErrOutOfRange
	}
	a.v.SetBytes(b)
	return nil
}
