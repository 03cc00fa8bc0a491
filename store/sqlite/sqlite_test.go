package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waste2give/marketplace/donation"
	"github.com/waste2give/marketplace/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDonation(id string, postedAt time.Time) donation.Donation {
	return donation.Donation{
		ID:            donation.DonationID(id),
		Item:          "Bread",
		Quantity:      decimal.NewFromInt(2),
		Weight:        decimal.NewFromInt(3),
		Pounds:        decimal.NewFromInt(6),
		PickupTime:    "2024-01-01T10:00",
		Address:       "1 Main St",
		DonorID:       "A",
		PostedAt:      postedAt,
		ImpactMessage: "You just saved 6 pounds of food from going to landfill. Well done! 🌍👏",
	}
}

func TestSQLite_RoundTripPreservesDecimals(t *testing.T) {
	// Quantity/weight/pounds are stored as decimal TEXT, so the invariant
	// lbs == weight * quantity survives persistence exactly.

	s := newTestStore(t)
	ctx := context.Background()

	in := sampleDonation("d1", time.Now().UTC())
	in.Quantity = decimal.RequireFromString("2.75")
	in.Weight = decimal.RequireFromString("1.1")
	in.Pounds = in.Weight.Mul(in.Quantity)
	require.NoError(t, s.Insert(ctx, in))

	out, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, out.Pounds.Equal(out.Weight.Mul(out.Quantity)),
		"lbs %s != weight*quantity after round trip", out.Pounds)
	assert.True(t, out.Pounds.Equal(in.Pounds))
	assert.Equal(t, in.ImpactMessage, out.ImpactMessage)
	assert.Nil(t, out.ClaimedAt)
}

func TestSQLite_DuplicateIDRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := sampleDonation("d1", time.Now().UTC())
	require.NoError(t, s.Insert(ctx, d))
	assert.ErrorIs(t, s.Insert(ctx, d), donation.ErrDuplicateID)
}

func TestSQLite_ClaimUpdateAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, s.Insert(ctx, sampleDonation("old", base)))
	require.NoError(t, s.Insert(ctx, sampleDonation("new", base.Add(time.Second))))

	open, err := s.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, donation.DonationID("new"), open[0].ID, "most recent first")

	d, err := s.Get(ctx, "old")
	require.NoError(t, err)
	claimedAt := base.Add(time.Minute)
	d.Claimed = true
	d.ReceiverID = "B"
	d.ClaimedAt = &claimedAt
	require.NoError(t, s.Update(ctx, d))

	open, err = s.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, donation.DonationID("new"), open[0].ID)

	received, err := s.ListByReceiver(ctx, "B")
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.NotNil(t, received[0].ClaimedAt)
	assert.True(t, received[0].ClaimedAt.Equal(claimedAt))

	posted, err := s.ListByDonor(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, posted, 2)

	ghost := sampleDonation("ghost", base)
	assert.ErrorIs(t, s.Update(ctx, ghost), donation.ErrDonationNotFound)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, donation.ErrDonationNotFound)
}
