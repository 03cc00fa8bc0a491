/*
history.go - Per-user derived view of the ledger

PURPOSE:
  Computes, for one user, the donations they posted, the donations they
  received, and summary statistics. Everything here is derived by scanning
  the record collection on demand; nothing is cached or incrementally
  maintained at this scale.

READ-ONLY CONTRACT:
  Aggregation never mutates the ledger and never touches the impact
  generator's counters. Repeated calls against the same ledger state return
  the same result.

STATS:
  TotalPoundsSaved    = sum of Pounds over posted records
  TotalPoundsReceived = sum of Pounds over received records
  TotalTransactions   = len(posted) + len(received)

  A donor's TotalPoundsSaved is unaffected by claims: Pounds is fixed at
  creation and posted records never leave the collection.

AUTHORIZATION:
  Callers may only request their own history. The identity comparison
  happens in the API layer before aggregation; this package only supplies
  ErrForbidden for it.

SEE ALSO:
  - ledger.go: Writes the records this reads
  - api/handlers.go: Performs the identity check
*/
package donation

import "context"

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator derives per-user history views from the record collection.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// History returns the user's posted and received donations with summary
// statistics. Posted records come back in insertion order.
func (a *Aggregator) History(ctx context.Context, userID UserID) (History, error) {
	posted, err := a.store.ListByDonor(ctx, userID)
	if err != nil {
		return History{}, err
	}
	received, err := a.store.ListByReceiver(ctx, userID)
	if err != nil {
		return History{}, err
	}

	var stats Stats
	for _, d := range posted {
		stats.TotalPoundsSaved = stats.TotalPoundsSaved.Add(d.Pounds)
	}
	for _, d := range received {
		stats.TotalPoundsReceived = stats.TotalPoundsReceived.Add(d.Pounds)
	}
	stats.TotalTransactions = len(posted) + len(received)

	return History{Posted: posted, Received: received, Stats: stats}, nil
}
