// Package decmath provides the logarithmic and exponential functions the
// settlement engines need, evaluated in decimal arithmetic at a fixed number
// of fractional digits so long bet sequences do not accumulate binary
// floating-point error.
package decmath

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of digits kept after the decimal point by
// Ln, Exp and Div.
const DefaultPrecision int32 = 24

var (
	one  = decimal.NewFromInt(1)
	half = decimal.New(5, -1)
	ln10 = decimal.RequireFromString("2.302585092994045684017991454684364")
)

// Calc evaluates transcendental functions at a fixed precision.
type Calc struct {
	prec int32
}

// New returns a Calc keeping prec fractional digits. Non-positive values
// select DefaultPrecision.
func New(prec int32) Calc {
	if prec <= 0 {
		prec = DefaultPrecision
	}
	return Calc{prec: prec}
}

// Precision returns the number of fractional digits kept.
func (c Calc) Precision() int32 { return c.prec }

// Ln returns the natural logarithm of d. It fails for d <= 0.
func (c Calc) Ln(d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("decmath: ln of non-positive value %s", d.String())
	}
	return d.Ln(c.prec)
}

// Exp returns e raised to d. Arguments below -(prec+1)·ln 10 return zero,
// since the result is smaller than the last kept digit; arguments above
// (prec+1)·ln 10 are rejected. ExpTaylor's cost grows with |d|, so neither
// reaches the series.
func (c Calc) Exp(d decimal.Decimal) (decimal.Decimal, error) {
	limit := ln10.Mul(decimal.NewFromInt32(c.prec + 1))
	if d.LessThan(limit.Neg()) {
		return decimal.Zero, nil
	}
	if d.GreaterThan(limit) {
		return decimal.Zero, fmt.Errorf("decmath: exp of %s exceeds %d digits", d.String(), c.prec+1)
	}
	return d.ExpTaylor(c.prec)
}

// Div returns a/b rounded half-up at the calculator's precision.
func (c Calc) Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, c.prec)
}

// DivDown returns a/b truncated toward zero at the calculator's precision,
// so the result's magnitude never exceeds the exact quotient's.
func (c Calc) DivDown(a, b decimal.Decimal) decimal.Decimal {
	q, _ := a.QuoRem(b, c.prec)
	return q
}

// Logit returns ln(p/(1-p)) for 0 < p < 1.
func (c Calc) Logit(p decimal.Decimal) (decimal.Decimal, error) {
	yes, err := c.Ln(p)
	if err != nil {
		return decimal.Zero, err
	}
	no, err := c.Ln(one.Sub(p))
	if err != nil {
		return decimal.Zero, err
	}
	return yes.Sub(no), nil
}

// InvLogit returns 1/(1+e^-x), the probability whose log-odds are x.
func (c Calc) InvLogit(x decimal.Decimal) (decimal.Decimal, error) {
	e, err := c.Exp(x.Neg())
	if err != nil {
		return decimal.Zero, err
	}
	return c.Div(one, one.Add(e)), nil
}

// Half is the neutral probability, 0.5.
func Half() decimal.Decimal { return half }
