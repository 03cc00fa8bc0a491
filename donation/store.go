/*
store.go - Persistence interface for donation records

PURPOSE:
  Defines the interface between the ledger and the record collection.
  The default implementation is in-memory (the marketplace core is specified
  as a single-process, no-durability store); a SQLite implementation exists
  for operators who want records to survive a restart.

OWNERSHIP CONTRACT:
  The Ledger exclusively owns mutation. Store implementations only execute
  what the ledger decided; they never apply business rules. There is no
  Delete - records persist for the process lifetime.

SNAPSHOT CONTRACT:
  Every read returns copies. Mutating a returned slice or record must never
  affect the collection, and a returned sequence is unaffected by later
  ledger mutations.

IMPLEMENTATIONS:
  - donation/store/memory.go: In-memory (default, and used by tests)
  - store/sqlite/sqlite.go: SQLite-backed

SEE ALSO:
  - ledger.go: The only writer
  - history.go: Read-only consumer
*/
package donation

import "context"

// Store persists donation records.
//
// Implementations must be safe for concurrent use, but they do NOT enforce
// claim semantics: the Ledger serializes mutations and performs the
// check-and-set. Update is only ever called for the Open -> Claimed
// transition.
type Store interface {
	// Insert appends a new record. Fails if the id already exists.
	Insert(ctx context.Context, d Donation) error

	// Get returns the record with the given id, or ErrDonationNotFound.
	Get(ctx context.Context, id DonationID) (Donation, error)

	// Update replaces the record with the same id.
	// Returns ErrDonationNotFound if it doesn't exist.
	Update(ctx context.Context, d Donation) error

	// ListOpen returns all unclaimed records, most recently posted first.
	ListOpen(ctx context.Context) ([]Donation, error)

	// ListByDonor returns records posted by the user, in insertion order.
	ListByDonor(ctx context.Context, donorID UserID) ([]Donation, error)

	// ListByReceiver returns claimed records received by the user,
	// in insertion order.
	ListByReceiver(ctx context.Context, receiverID UserID) ([]Donation, error)
}
