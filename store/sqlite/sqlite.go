/*
Package sqlite provides a SQLite-backed implementation of donation.Store.

PURPOSE:
  Optional durable record collection for operators who want donations to
  survive a restart. The marketplace core defaults to the in-memory store;
  this implementation is selected with the -db flag on the server binary.

INTERFACES IMPLEMENTED:
  donation.Store: Donation record persistence

SEMANTICS:
  Same contract as the memory store:
  - Insert only appends; there is no delete
  - Update is only ever the Open -> Claimed transition, decided by the ledger
  - Reads return fully-formed copies in deterministic order

NUMERIC FIDELITY:
  Quantity, weight, and pounds are stored as decimal TEXT, never as REAL,
  so lbs == weight * quantity holds exactly across a round-trip.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/marketplace.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := donation.NewLedger(store, donation.NewImpactGenerator())

SEE ALSO:
  - donation/store.go: Interface definition
  - donation/store/memory.go: In-memory implementation (the default)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/waste2give/marketplace/donation"
)

// Store implements donation.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS donations (
		id TEXT PRIMARY KEY,
		item TEXT NOT NULL,
		quantity TEXT NOT NULL,
		weight TEXT NOT NULL,
		pounds TEXT NOT NULL,
		pickup_time TEXT NOT NULL,
		address TEXT NOT NULL,
		donor_id TEXT NOT NULL,
		claimed INTEGER NOT NULL DEFAULT 0,
		receiver_id TEXT NOT NULL DEFAULT '',
		posted_at TEXT NOT NULL,
		claimed_at TEXT,
		impact_message TEXT NOT NULL,
		seq INTEGER -- insertion order for stable history views
	);

	CREATE INDEX IF NOT EXISTS idx_donations_open
		ON donations(claimed, posted_at DESC);
	CREATE INDEX IF NOT EXISTS idx_donations_donor
		ON donations(donor_id, seq);
	CREATE INDEX IF NOT EXISTS idx_donations_receiver
		ON donations(receiver_id, seq) WHERE claimed = 1;
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

func (s *Store) Insert(ctx context.Context, d donation.Donation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donations
			(id, item, quantity, weight, pounds, pickup_time, address,
			 donor_id, claimed, receiver_id, posted_at, claimed_at,
			 impact_message, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM donations))`,
		string(d.ID), d.Item,
		d.Quantity.String(), d.Weight.String(), d.Pounds.String(),
		d.PickupTime, d.Address,
		string(d.DonorID), boolToInt(d.Claimed), string(d.ReceiverID),
		d.PostedAt.Format(time.RFC3339Nano), timePtrString(d.ClaimedAt),
		d.ImpactMessage)
	if err != nil && isUniqueViolation(err) {
		return donation.ErrDuplicateID
	}
	return err
}

func (s *Store) Update(ctx context.Context, d donation.Donation) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE donations
		SET claimed = ?, receiver_id = ?, claimed_at = ?
		WHERE id = ?`,
		boolToInt(d.Claimed), string(d.ReceiverID), timePtrString(d.ClaimedAt),
		string(d.ID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return donation.ErrDonationNotFound
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

const donationColumns = `id, item, quantity, weight, pounds, pickup_time,
	address, donor_id, claimed, receiver_id, posted_at, claimed_at,
	impact_message`

func (s *Store) Get(ctx context.Context, id donation.DonationID) (donation.Donation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE id = ?`, string(id))
	d, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return donation.Donation{}, donation.ErrDonationNotFound
	}
	return d, err
}

func (s *Store) ListOpen(ctx context.Context) ([]donation.Donation, error) {
	return s.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE claimed = 0 ORDER BY posted_at DESC, seq ASC`)
}

func (s *Store) ListByDonor(ctx context.Context, donorID donation.UserID) ([]donation.Donation, error) {
	return s.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE donor_id = ? ORDER BY seq ASC`, string(donorID))
}

func (s *Store) ListByReceiver(ctx context.Context, receiverID donation.UserID) ([]donation.Donation, error) {
	return s.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE claimed = 1 AND receiver_id = ? ORDER BY seq ASC`, string(receiverID))
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]donation.Donation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []donation.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// =============================================================================
// ROW MAPPING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanDonation(row scanner) (donation.Donation, error) {
	var (
		d                           donation.Donation
		id, donorID, receiverID     string
		quantity, weight, pounds    string
		postedAt                    string
		claimedAt                   sql.NullString
		claimed                     int
	)
	err := row.Scan(&id, &d.Item, &quantity, &weight, &pounds, &d.PickupTime,
		&d.Address, &donorID, &claimed, &receiverID, &postedAt, &claimedAt,
		&d.ImpactMessage)
	if err != nil {
		return donation.Donation{}, err
	}

	d.ID = donation.DonationID(id)
	d.DonorID = donation.UserID(donorID)
	d.ReceiverID = donation.UserID(receiverID)
	d.Claimed = claimed != 0

	if d.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return donation.Donation{}, fmt.Errorf("corrupt quantity %q: %w", quantity, err)
	}
	if d.Weight, err = decimal.NewFromString(weight); err != nil {
		return donation.Donation{}, fmt.Errorf("corrupt weight %q: %w", weight, err)
	}
	if d.Pounds, err = decimal.NewFromString(pounds); err != nil {
		return donation.Donation{}, fmt.Errorf("corrupt pounds %q: %w", pounds, err)
	}
	if d.PostedAt, err = time.Parse(time.RFC3339Nano, postedAt); err != nil {
		return donation.Donation{}, fmt.Errorf("corrupt posted_at %q: %w", postedAt, err)
	}
	if claimedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, claimedAt.String)
		if err != nil {
			return donation.Donation{}, fmt.Errorf("corrupt claimed_at %q: %w", claimedAt.String, err)
		}
		d.ClaimedAt = &t
	}
	return d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	// Message match keeps the driver import limited to the blank registration.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
