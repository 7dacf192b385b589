// AngelaMos | 2026
// memory.go

package alerts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
)

// MemoryRepository is a mutex-guarded in-memory Repository. It backs demo
// mode, where alert history should not outlive the process, and the
// dispatcher tests.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]HistoryEntry
	subs    map[string]PushSubscription
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[string]HistoryEntry),
		subs:    make(map[string]PushSubscription),
	}
}

func pairKey(userID, dealID string) string {
	return userID + "\x00" + dealID
}

func subKey(userID, endpoint string) string {
	return userID + "\x00" + endpoint
}

func (r *MemoryRepository) RecordIfNew(
	_ context.Context,
	userID, dealID, alertType string,
	sentAt time.Time,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(userID, dealID)
	if _, exists := r.entries[key]; exists {
		return false, nil
	}

	r.entries[key] = HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		DealID:    dealID,
		AlertType: alertType,
		SentAt:    sentAt,
	}
	return true, nil
}

func (r *MemoryRepository) HistoryForUser(
	_ context.Context,
	userID string,
	limit int,
) ([]HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []HistoryEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SentAt.After(entries[j].SentAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *MemoryRepository) CountSince(
	_ context.Context,
	userID string,
	since time.Time,
) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, e := range r.entries {
		if e.UserID == userID && !e.SentAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) SaveSubscription(
	_ context.Context,
	sub *PushSubscription,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	r.subs[subKey(sub.UserID, sub.Endpoint)] = *sub
	return nil
}

func (r *MemoryRepository) DeleteSubscription(
	_ context.Context,
	userID, endpoint string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := subKey(userID, endpoint)
	if _, exists := r.subs[key]; !exists {
		return fmt.Errorf("delete push subscription: %w", core.ErrNotFound)
	}
	delete(r.subs, key)
	return nil
}

func (r *MemoryRepository) SubscriptionsForUser(
	_ context.Context,
	userID string,
) ([]PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var subs []PushSubscription
	for _, s := range r.subs {
		if s.UserID == userID {
			subs = append(subs, s)
		}
	}

	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs, nil
}
