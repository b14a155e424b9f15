package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/decmath"
	"github.com/alanyoungcy/betledger/internal/domain"
)

var one = decimal.NewFromInt(1)

// Calibrate derives the log-score scale from the market maker's opening
// probability p0 and endowment:
//
//	scale = min(-endowment/ln(p0), -endowment/ln(1-p0))
//
// Both quotients are truncated toward zero, so scale·ln(p0) and
// scale·ln(1-p0) are never below -endowment.
func Calibrate(calc decmath.Calc, p0, endowment decimal.Decimal) (decimal.Decimal, error) {
	if err := domain.CheckProbability(p0); err != nil {
		return decimal.Zero, fmt.Errorf("calibrate: opening quote: %w", err)
	}
	if !endowment.IsPositive() {
		return decimal.Zero, fmt.Errorf("calibrate: %w: got %s", domain.ErrInvalidEndowment, endowment.String())
	}

	lnYes, err := calc.Ln(p0)
	if err != nil {
		return decimal.Zero, fmt.Errorf("calibrate: %w", err)
	}
	lnNo, err := calc.Ln(one.Sub(p0))
	if err != nil {
		return decimal.Zero, fmt.Errorf("calibrate: %w", err)
	}

	loss := endowment.Neg()
	scale := decimal.Min(calc.DivDown(loss, lnYes), calc.DivDown(loss, lnNo))
	if !scale.IsPositive() {
		return decimal.Zero, fmt.Errorf("calibrate: %w: %s vanishes at %d digits",
			domain.ErrInvalidEndowment, endowment.String(), calc.Precision())
	}
	return scale, nil
}
