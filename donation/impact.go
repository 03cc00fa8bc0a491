/*
impact.go - Donor-history-aware impact messages

PURPOSE:
  Generates the encouraging message attached to every donation at creation.
  The wording escalates with the donor's running contribution: first-timers
  get a generic message, repeat donors get a "thanks again", and donors past
  three donations see their cumulative total.

STATE:
  Per-donor counters (total pounds saved, donation count) live in an explicit
  map owned by this generator and are mutated ONLY through Message. They are
  process-wide, not persisted, and deliberately separate from the ledger's
  record collection.

FAILURE CONTRACT:
  Message never fails and never blocks donation creation. Bad input falls
  back to a minimal generic message.

SEE ALSO:
  - ledger.go: Calls Message during Create
  - api/handlers.go: WeightImpact backs the standalone impact endpoint
*/
package donation

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IMPACT GENERATOR - Per-donor running totals and tiered messages
// =============================================================================

type donorTotals struct {
	TotalSaved    decimal.Decimal
	DonationCount int
}

// ImpactGenerator tracks each donor's cumulative contribution and produces
// tiered impact messages. Safe for concurrent use.
type ImpactGenerator struct {
	mu     sync.Mutex
	donors map[UserID]*donorTotals
}

func NewImpactGenerator() *ImpactGenerator {
	return &ImpactGenerator{
		donors: make(map[UserID]*donorTotals),
	}
}

// Message records lbs against the donor's running totals and returns the
// message for this donation. Counters are incremented BEFORE tier selection,
// so the donation being created counts toward its own tier.
func (g *ImpactGenerator) Message(lbs decimal.Decimal, donorID UserID) string {
	if lbs.Sign() <= 0 {
		// Defensible only as a fallback: the ledger validates before calling.
		return fmt.Sprintf("You saved %s pounds of food! Thank you for reducing waste.", lbs)
	}

	if donorID == "" {
		return firstTimeMessage(lbs)
	}

	g.mu.Lock()
	totals, ok := g.donors[donorID]
	if !ok {
		totals = &donorTotals{}
		g.donors[donorID] = totals
	}
	totals.TotalSaved = totals.TotalSaved.Add(lbs)
	totals.DonationCount++
	count := totals.DonationCount
	totalSaved := totals.TotalSaved
	g.mu.Unlock()

	switch {
	case count > 3:
		return fmt.Sprintf(
			"Amazing work! You've now saved %s more pounds of food, bringing your total to %s pounds rescued from landfill. You're making a significant environmental impact! 🌍⭐",
			lbs, totalSaved.StringFixed(1))
	case count > 1:
		return fmt.Sprintf(
			"Thank you for donating again! You just saved %s pounds of food from going to landfill. Keep up the great work! 🌍👏",
			lbs)
	default:
		return firstTimeMessage(lbs)
	}
}

func firstTimeMessage(lbs decimal.Decimal) string {
	return fmt.Sprintf("You just saved %s pounds of food from going to landfill. Well done! 🌍👏", lbs)
}

// =============================================================================
// WEIGHT IMPACT - Stateless message tiers by total pounds
// =============================================================================

// WeightImpact returns a message tiered purely by weight, independent of any
// donor history. Backs the standalone impact endpoint.
func WeightImpact(lbs decimal.Decimal) string {
	meals := lbs.Mul(decimal.NewFromFloat(0.75)).Round(0)
	switch {
	case lbs.GreaterThan(decimal.NewFromInt(50)):
		return fmt.Sprintf(
			"Incredible! You've saved %s pounds of food from the landfill. That's about %s meals that will nourish people in need! 🌍🍎",
			lbs, meals)
	case lbs.GreaterThan(decimal.NewFromInt(20)):
		co2 := lbs.Mul(decimal.NewFromFloat(0.9))
		trees := lbs.Div(decimal.NewFromInt(10)).Round(0)
		return fmt.Sprintf(
			"Amazing! By saving %s pounds of food, you've prevented %s kg of CO2 from entering the atmosphere. That's like planting %s trees! 🌱",
			lbs, co2.StringFixed(1), trees)
	default:
		return fmt.Sprintf(
			"You just saved %s pounds of food from going to waste! That's approximately %s meals that can feed people in need. Thank you! 🍽️",
			lbs, meals)
	}
}
