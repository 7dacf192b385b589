// AngelaMos | 2026
// service_test.go

package alerts

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazzlabs/ripcity-dispatch/internal/config"
	"github.com/mazzlabs/ripcity-dispatch/internal/deals"
	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
	"github.com/mazzlabs/ripcity-dispatch/internal/user"
	"github.com/mazzlabs/ripcity-dispatch/internal/venues"
)

var dispatchNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testDispatcher(repo Repository) *Dispatcher {
	d := NewDispatcher(repo, config.AlertsConfig{
		DailyLimits: map[string]int{
			"free":       3,
			"pro":        15,
			"premium":    50,
			"enterprise": 0,
		},
	}, slog.Default())
	d.now = func() time.Time { return dispatchNow }
	return d
}

func scoredDeal(id string, savings float64) deals.ScoredDeal {
	return deals.ScoredDeal{
		Listing: inventory.RawListing{
			ID:       id,
			Name:     "Event " + id,
			Category: "music",
			MinPrice: 40,
			StartsAt: dispatchNow.AddDate(0, 0, 7),
		},
		Venue:          venues.EnrichedVenue{Name: "Crystal Ballroom", Popularity: 8},
		Score:          70,
		SavingsPercent: savings,
		ComputedAt:     dispatchNow,
	}
}

func candidate(userID, dealID string) Candidate {
	return Candidate{
		UserID: userID,
		Tier:   "pro",
		Deal:   scoredDeal(dealID, 25),
	}
}

func TestRecordIfNew(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.RecordIfNew(ctx, "u1", "d1", TypeDealAlert, dispatchNow)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.RecordIfNew(ctx, "u1", "d1", TypeDealAlert, dispatchNow)
	require.NoError(t, err)
	assert.False(t, created)

	// Different deal or different user is a fresh pair.
	created, err = repo.RecordIfNew(ctx, "u1", "d2", TypeDealAlert, dispatchNow)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.RecordIfNew(ctx, "u2", "d1", TypeDealAlert, dispatchNow)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestRecordIfNewConcurrent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const goroutines = 32
	results := make([]bool, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := repo.RecordIfNew(
				ctx, "u1", "d1", TypeDealAlert, dispatchNow,
			)
			assert.NoError(t, err)
			results[i] = created
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, created := range results {
		if created {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestDispatchDeal(t *testing.T) {
	t.Run("first dispatch sends, repeat is deduped", func(t *testing.T) {
		d := testDispatcher(NewMemoryRepository())
		ctx := context.Background()

		outcome, err := d.DispatchDeal(ctx, candidate("u1", "d1"))
		require.NoError(t, err)
		assert.True(t, outcome.Sent)

		outcome, err = d.DispatchDeal(ctx, candidate("u1", "d1"))
		require.NoError(t, err)
		assert.False(t, outcome.Sent)
		assert.Equal(t, reasonDuplicate, outcome.Reason)
	})

	t.Run("preference mismatch skips without ledger write", func(t *testing.T) {
		repo := NewMemoryRepository()
		d := testDispatcher(repo)
		ctx := context.Background()

		c := candidate("u1", "d1")
		c.Preferences = user.Preferences{Categories: []string{"sports"}}

		outcome, err := d.DispatchDeal(ctx, c)
		require.NoError(t, err)
		assert.False(t, outcome.Sent)
		assert.Equal(t, reasonPreferenceMiss, outcome.Reason)

		// The pair stays unrecorded, so a later match can still alert.
		count, err := repo.CountSince(ctx, "u1", time.Time{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("daily limit enforced per tier", func(t *testing.T) {
		d := testDispatcher(NewMemoryRepository())
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			c := candidate("u1", "deal-"+string(rune('a'+i)))
			c.Tier = "free"
			outcome, err := d.DispatchDeal(ctx, c)
			require.NoError(t, err)
			assert.True(t, outcome.Sent, i)
		}

		c := candidate("u1", "deal-overflow")
		c.Tier = "free"
		outcome, err := d.DispatchDeal(ctx, c)
		require.NoError(t, err)
		assert.False(t, outcome.Sent)
		assert.Equal(t, reasonDailyLimit, outcome.Reason)
	})

	t.Run("zero limit means unlimited", func(t *testing.T) {
		d := testDispatcher(NewMemoryRepository())
		ctx := context.Background()

		for i := 0; i < 60; i++ {
			c := candidate("u1", "deal-"+string(rune('A'+i)))
			c.Tier = "enterprise"
			outcome, err := d.DispatchDeal(ctx, c)
			require.NoError(t, err)
			require.True(t, outcome.Sent, i)
		}
	})
}

func TestMatchesPreferences(t *testing.T) {
	deal := scoredDeal("d1", 25)

	t.Run("empty preferences match everything", func(t *testing.T) {
		assert.True(t, matchesPreferences(user.Preferences{}, deal))
	})

	t.Run("category filter", func(t *testing.T) {
		assert.True(t, matchesPreferences(
			user.Preferences{Categories: []string{"Music"}}, deal,
		))
		assert.False(t, matchesPreferences(
			user.Preferences{Categories: []string{"sports"}}, deal,
		))
	})

	t.Run("venue filter is substring", func(t *testing.T) {
		assert.True(t, matchesPreferences(
			user.Preferences{Venues: []string{"crystal"}}, deal,
		))
		assert.False(t, matchesPreferences(
			user.Preferences{Venues: []string{"moda"}}, deal,
		))
	})

	t.Run("max price", func(t *testing.T) {
		assert.True(t, matchesPreferences(
			user.Preferences{MaxPrice: 50}, deal,
		))
		assert.False(t, matchesPreferences(
			user.Preferences{MaxPrice: 30}, deal,
		))
	})

	t.Run("max price ignores unpriced deals", func(t *testing.T) {
		unpriced := scoredDeal("d2", 0)
		unpriced.Listing.MinPrice = 0

		assert.True(t, matchesPreferences(
			user.Preferences{MaxPrice: 10}, unpriced,
		))
	})

	t.Run("min savings", func(t *testing.T) {
		assert.True(t, matchesPreferences(
			user.Preferences{MinSavings: 20}, deal,
		))
		assert.False(t, matchesPreferences(
			user.Preferences{MinSavings: 40}, deal,
		))
	})
}

func TestEvaluateUser(t *testing.T) {
	d := testDispatcher(NewMemoryRepository())
	ctx := context.Background()

	u := &user.User{
		ID:   "u1",
		Tier: "pro",
		Preferences: user.Preferences{
			MinSavings: 20,
		},
	}

	feed := []deals.ScoredDeal{
		scoredDeal("big-discount", 45),
		scoredDeal("small-discount", 5),
	}

	results, err := d.EvaluateUser(ctx, u, feed)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Outcome.Sent)
	assert.False(t, results[1].Outcome.Sent)
	assert.Equal(t, reasonPreferenceMiss, results[1].Outcome.Reason)

	// A second evaluation of the same feed is fully deduped.
	results, err = d.EvaluateUser(ctx, u, feed)
	require.NoError(t, err)
	assert.False(t, results[0].Outcome.Sent)
	assert.Equal(t, reasonDuplicate, results[0].Outcome.Reason)
}
