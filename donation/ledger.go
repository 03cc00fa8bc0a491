/*
ledger.go - The donation ledger and its claim state machine

PURPOSE:
  The Ledger is the single source of truth for donation records. It owns
  creation (with fixed-order validation), the available-donations view, and
  the one-time Open -> Claimed transition.

STATE MACHINE:
  states = {Open, Claimed}. A record is created Open. The only transition is
  Open -> Claimed, fired exactly once by a successful Claim. Nothing
  transitions out of Claimed, ever.

CONCURRENCY:
  A single mutex scoped to the whole collection serializes mutations
  (Create, Claim), so the claim check-and-set is atomic and exactly one of
  N concurrent claimants wins. Reads go through the Store's snapshot
  contract and may run concurrently.

VALIDATION ORDER:
  item -> quantity -> weight -> pickupTime -> address -> donorId.
  The order is fixed so error messages are deterministic.

ATOMICITY:
  A failed Create or Claim leaves the collection exactly as it was. The only
  cross-component side effect of Create is the impact generator's per-donor
  counters, which are updated after validation passes.

SEE ALSO:
  - store.go: Persistence interface
  - impact.go: Message generation invoked during Create
  - history.go: Read-only aggregation over the same store
*/
package donation

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger owns the donation collection. Construct one at process start with
// NewLedger and pass it to whatever serves requests; it is never reached
// through ambient globals.
type Ledger struct {
	mu     sync.Mutex // serializes Create and Claim against the collection
	store  Store
	impact *ImpactGenerator

	now   func() time.Time
	newID func() DonationID
}

func NewLedger(store Store, impact *ImpactGenerator) *Ledger {
	return &Ledger{
		store:  store,
		impact: impact,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() DonationID { return DonationID(uuid.NewString()) },
	}
}

// =============================================================================
// CREATE
// =============================================================================

// Create validates the input, computes the pound total, generates the impact
// message, and appends a new Open record. The returned record carries the
// assigned id, the computed pounds, and the impact message so the caller can
// report "pounds saved" without a second lookup.
func (l *Ledger) Create(ctx context.Context, in CreateInput) (Donation, error) {
	if err := validateCreate(in); err != nil {
		return Donation{}, err
	}

	quantity := decimal.NewFromFloat(in.Quantity)
	weight := decimal.NewFromFloat(in.Weight)
	lbs := weight.Mul(quantity)

	// Counters move only after validation, so a rejected create never
	// shifts the donor's message tier.
	message := l.impact.Message(lbs, in.DonorID)

	d := Donation{
		ID:            l.newID(),
		Item:          in.Item,
		Quantity:      quantity,
		Weight:        weight,
		Pounds:        lbs,
		PickupTime:    in.PickupTime,
		Address:       in.Address,
		DonorID:       in.DonorID,
		Claimed:       false,
		PostedAt:      l.now(),
		ImpactMessage: message,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Insert(ctx, d); err != nil {
		return Donation{}, err
	}
	return d, nil
}

func validateCreate(in CreateInput) error {
	if in.Item == "" {
		return &ValidationError{Field: "item", Message: "item name required"}
	}
	if !isFinite(in.Quantity) || in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be > 0"}
	}
	if !isFinite(in.Weight) || in.Weight <= 0 {
		return &ValidationError{Field: "weight", Message: "weight must be a positive number"}
	}
	if in.PickupTime == "" {
		return &ValidationError{Field: "pickupTime", Message: "pickup time required"}
	}
	if in.Address == "" {
		return &ValidationError{Field: "address", Message: "pickup address required"}
	}
	if in.DonorID == "" {
		return &ValidationError{Field: "donorId", Message: "donor id required"}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// =============================================================================
// LIST AVAILABLE
// =============================================================================

// ListAvailable returns a snapshot of all unclaimed records, most recently
// posted first. No pagination, no filtering.
func (l *Ledger) ListAvailable(ctx context.Context) ([]Donation, error) {
	return l.store.ListOpen(ctx)
}

// =============================================================================
// CLAIM
// =============================================================================

// Claim transitions a record from Open to Claimed.
//
// Both the payload-provided receiver id and, when present, the authenticated
// caller identity are checked against the record's donor: if either matches,
// the claim is rejected. There is no delegation capability.
func (l *Ledger) Claim(ctx context.Context, id DonationID, receiverID, caller UserID) (Donation, error) {
	if id == "" {
		return Donation{}, &ValidationError{Field: "donationId", Message: "donation id required"}
	}
	if receiverID == "" {
		return Donation{}, &ValidationError{Field: "receiverId", Message: "receiver id required"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	d, err := l.store.Get(ctx, id)
	if err != nil {
		return Donation{}, err
	}
	if d.Claimed {
		return Donation{}, ErrAlreadyClaimed
	}
	if d.DonorID == receiverID {
		return Donation{}, ErrSelfClaim
	}
	if caller != "" && d.DonorID == caller {
		return Donation{}, ErrSelfClaim
	}

	claimedAt := l.now()
	d.Claimed = true
	d.ReceiverID = receiverID
	d.ClaimedAt = &claimedAt

	if err := l.store.Update(ctx, d); err != nil {
		return Donation{}, err
	}
	return d, nil
}
