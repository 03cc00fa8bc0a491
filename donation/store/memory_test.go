package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waste2give/marketplace/donation"
	"github.com/waste2give/marketplace/donation/store"
)

func record(id, donor string, postedAt time.Time) donation.Donation {
	return donation.Donation{
		ID:         donation.DonationID(id),
		Item:       "Apples",
		Quantity:   decimal.NewFromInt(4),
		Weight:     decimal.NewFromInt(1),
		Pounds:     decimal.NewFromInt(4),
		PickupTime: "2024-03-01T12:00",
		Address:    "9 Orchard Rd",
		DonorID:    donation.UserID(donor),
		PostedAt:   postedAt,
	}
}

func TestMemory_InsertGetUpdate(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, m.Insert(ctx, record("d1", "A", now)))

	// Duplicate id is a programming error, not silently accepted.
	err := m.Insert(ctx, record("d1", "A", now))
	assert.ErrorIs(t, err, donation.ErrDuplicateID)

	got, err := m.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, donation.UserID("A"), got.DonorID)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, donation.ErrDonationNotFound)

	claimedAt := now.Add(time.Minute)
	got.Claimed = true
	got.ReceiverID = "B"
	got.ClaimedAt = &claimedAt
	require.NoError(t, m.Update(ctx, got))

	updated, err := m.Get(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, updated.Claimed)
	assert.Equal(t, donation.UserID("B"), updated.ReceiverID)

	missing := record("ghost", "A", now)
	assert.ErrorIs(t, m.Update(ctx, missing), donation.ErrDonationNotFound)
}

func TestMemory_ListOpenOrderAndFilters(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, m.Insert(ctx, record("old", "A", base)))
	require.NoError(t, m.Insert(ctx, record("new", "B", base.Add(time.Second))))
	require.NoError(t, m.Insert(ctx, record("mid", "A", base.Add(time.Millisecond))))

	open, err := m.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, donation.DonationID("new"), open[0].ID)
	assert.Equal(t, donation.DonationID("mid"), open[1].ID)
	assert.Equal(t, donation.DonationID("old"), open[2].ID)

	// ListByDonor keeps insertion order.
	posted, err := m.ListByDonor(ctx, "A")
	require.NoError(t, err)
	require.Len(t, posted, 2)
	assert.Equal(t, donation.DonationID("old"), posted[0].ID)
	assert.Equal(t, donation.DonationID("mid"), posted[1].ID)

	// Claim "old" and verify both filters react.
	d, err := m.Get(ctx, "old")
	require.NoError(t, err)
	claimedAt := base.Add(time.Minute)
	d.Claimed = true
	d.ReceiverID = "B"
	d.ClaimedAt = &claimedAt
	require.NoError(t, m.Update(ctx, d))

	open, err = m.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	received, err := m.ListByReceiver(ctx, "B")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, donation.DonationID("old"), received[0].ID)
}
