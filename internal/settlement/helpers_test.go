package settlement

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// near asserts |got-want| < tol.
func near(t *testing.T, want string, got decimal.Decimal, tol string, msgAndArgs ...any) {
	t.Helper()
	diff := got.Sub(dec(want)).Abs()
	assert.Truef(t, diff.LessThan(dec(tol)), "want %s ± %s, got %s %v", want, tol, got.String(), msgAndArgs)
}

func assertZeroSum(t *testing.T, pos Positions) {
	t.Helper()
	yes, no := pos.Sum()
	assert.Truef(t, yes.IsZero(), "if-yes payoffs sum to %s", yes.String())
	assert.Truef(t, no.IsZero(), "if-no payoffs sum to %s", no.String())
	assert.True(t, pos.ZeroSum())
}
