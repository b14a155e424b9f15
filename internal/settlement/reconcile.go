package settlement

import "github.com/shopspring/decimal"

// Positions holds each participant's running payoff under both resolutions.
// A Positions value is owned by the settlement call that builds it; the
// reconciler never modifies its input.
type Positions struct {
	IfYes map[string]decimal.Decimal
	IfNo  map[string]decimal.Decimal
	names []string
}

// NewPositions returns empty positions.
func NewPositions() Positions {
	return Positions{
		IfYes: make(map[string]decimal.Decimal),
		IfNo:  make(map[string]decimal.Decimal),
	}
}

// Add accumulates a payoff pair into name's totals.
func (p *Positions) Add(name string, ifYes, ifNo decimal.Decimal) {
	if _, ok := p.IfYes[name]; !ok {
		p.names = append(p.names, name)
		p.IfYes[name] = decimal.Zero
		p.IfNo[name] = decimal.Zero
	}
	p.IfYes[name] = p.IfYes[name].Add(ifYes)
	p.IfNo[name] = p.IfNo[name].Add(ifNo)
}

// Names returns participants in order of first appearance.
func (p Positions) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Get returns name's totals; zero when name has none.
func (p Positions) Get(name string) (ifYes, ifNo decimal.Decimal) {
	return p.IfYes[name], p.IfNo[name]
}

// Sum returns the total payoff across all participants for each resolution.
func (p Positions) Sum() (ifYes, ifNo decimal.Decimal) {
	ifYes, ifNo = decimal.Zero, decimal.Zero
	for _, n := range p.names {
		ifYes = ifYes.Add(p.IfYes[n])
		ifNo = ifNo.Add(p.IfNo[n])
	}
	return ifYes, ifNo
}

// ZeroSum reports whether payoffs cancel exactly under both resolutions.
func (p Positions) ZeroSum() bool {
	y, n := p.Sum()
	return y.IsZero() && n.IsZero()
}

// Reconcile returns new positions in which the market maker holds the
// negated sum of every other participant's totals, so each resolution sums
// to exactly zero. Any totals already recorded under the market maker's name
// are replaced by the residual. The market maker is listed first.
func Reconcile(marketMaker string, pos Positions) Positions {
	out := NewPositions()
	out.Add(marketMaker, decimal.Zero, decimal.Zero)

	yes, no := decimal.Zero, decimal.Zero
	for _, n := range pos.names {
		if n == marketMaker {
			continue
		}
		y, x := pos.Get(n)
		out.Add(n, y, x)
		yes = yes.Add(y)
		no = no.Add(x)
	}
	out.IfYes[marketMaker] = yes.Neg()
	out.IfNo[marketMaker] = no.Neg()
	return out
}
