// Package store provides donation.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/waste2give/marketplace/donation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (the specified default)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records []donation.Donation // insertion order
	index   map[donation.DonationID]int
}

func NewMemory() *Memory {
	return &Memory{
		index: make(map[donation.DonationID]int),
	}
}

// Insert appends a new record. Records are never removed.
func (m *Memory) Insert(_ context.Context, d donation.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[d.ID]; exists {
		return donation.ErrDuplicateID
	}
	m.index[d.ID] = len(m.records)
	m.records = append(m.records, d)
	return nil
}

func (m *Memory) Get(_ context.Context, id donation.DonationID) (donation.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return donation.Donation{}, donation.ErrDonationNotFound
	}
	return m.records[i], nil
}

// Update replaces the record in place. Insertion order is preserved so
// per-user history stays stable across repeated reads.
func (m *Memory) Update(_ context.Context, d donation.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[d.ID]
	if !ok {
		return donation.ErrDonationNotFound
	}
	m.records[i] = d
	return nil
}

func (m *Memory) ListOpen(_ context.Context) ([]donation.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []donation.Donation
	for _, d := range m.records {
		if !d.Claimed {
			result = append(result, d)
		}
	}
	// Most recent first. Stable sort keeps insertion order deterministic for
	// records sharing a PostedAt (the clock has finite resolution).
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].PostedAt.After(result[j].PostedAt)
	})
	return result, nil
}

func (m *Memory) ListByDonor(_ context.Context, donorID donation.UserID) ([]donation.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []donation.Donation
	for _, d := range m.records {
		if d.DonorID == donorID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *Memory) ListByReceiver(_ context.Context, receiverID donation.UserID) ([]donation.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []donation.Donation
	for _, d := range m.records {
		if d.Claimed && d.ReceiverID == receiverID {
			result = append(result, d)
		}
	}
	return result, nil
}
