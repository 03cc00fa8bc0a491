/*
Package donation provides the core marketplace engine.

PURPOSE:
  This package contains the types and algorithms for tracking surplus-food
  donations: the authoritative record collection (the ledger), the one-time
  claim state machine, the per-donor impact message generator, and the
  derived per-user history view.

KEY CONCEPTS IN THIS FILE (types.go):
  - Donation: An immutable-once-written record of posted surplus food
  - DonationID/UserID: Type-safe identifiers
  - CreateInput: Validated input for posting a donation

DESIGN PRINCIPLES:
  1. One-time transition: a donation moves Open -> Claimed exactly once
  2. Precision: Uses decimal.Decimal so lbs = weight * quantity is exact
  3. Stable history: lbs and the impact message are fixed at creation and
     never recomputed, so past reports do not drift
  4. Explicit identity: callers always pass a resolved identity; the engine
     never reaches into ambient session state

SEE ALSO:
  - ledger.go: Create/ListAvailable/Claim operations and their invariants
  - impact.go: Donor-history-aware impact messages
  - history.go: Per-user derived view and statistics
  - store.go: Record persistence interface
*/
package donation

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type DonationID string
type UserID string

// =============================================================================
// DONATION - The sole entity of the marketplace core
// =============================================================================

// Donation is a single posted-food record.
//
// INVARIANTS:
//   - ID is unique for the lifetime of the process.
//   - Claimed == false  <=>  ReceiverID == "" and ClaimedAt == nil.
//   - Once Claimed is true it never reverts.
//   - DonorID != ReceiverID for any claimed record.
//   - Pounds is computed once at creation (Weight * Quantity) and never
//     recomputed, so historical stats stay stable.
type Donation struct {
	ID       DonationID
	Item     string
	Quantity decimal.Decimal // units posted, > 0
	Weight   decimal.Decimal // pounds per unit, > 0
	Pounds   decimal.Decimal // Weight * Quantity, fixed at creation

	PickupTime string // caller-supplied, opaque to the ledger
	Address    string

	DonorID    UserID
	Claimed    bool
	ReceiverID UserID // empty until claimed

	PostedAt  time.Time
	ClaimedAt *time.Time // nil until claimed

	// ImpactMessage is generated once at creation and replayed in responses.
	ImpactMessage string
}

// Open reports whether the donation is still available to claim.
func (d Donation) Open() bool { return !d.Claimed }

// CreateInput carries the caller-supplied fields for a new donation.
// Validation happens in Ledger.Create, in a fixed field order.
type CreateInput struct {
	Item       string
	Quantity   float64
	Weight     float64
	PickupTime string
	Address    string
	DonorID    UserID
}

// History is the derived per-user view of the ledger.
type History struct {
	Posted   []Donation
	Received []Donation
	Stats    Stats
}

// Stats summarizes a user's marketplace activity.
type Stats struct {
	TotalPoundsSaved    decimal.Decimal
	TotalPoundsReceived decimal.Decimal
	TotalTransactions   int
}
