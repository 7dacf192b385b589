// AngelaMos | 2026
// scorer_test.go

package deals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
	"github.com/mazzlabs/ripcity-dispatch/internal/venues"
)

var scoreNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func listing(id string, minPrice float64, startsAt time.Time) inventory.RawListing {
	return inventory.RawListing{
		ID:       id,
		Name:     "Event " + id,
		Category: "sports",
		MinPrice: minPrice,
		MaxPrice: minPrice * 2,
		StartsAt: startsAt,
		Source:   "test",
	}
}

func withVenue(l inventory.RawListing, popularity int) ListingWithVenue {
	return ListingWithVenue{
		Listing: l,
		Venue:   venues.EnrichedVenue{Name: l.VenueName, Popularity: popularity},
	}
}

func TestScorerScore(t *testing.T) {
	scorer := NewScorer()

	t.Run("weighted blend on known inputs", func(t *testing.T) {
		// Category baseline is the mean of 50 and 150, so the cheap
		// listing carries a 0.5 discount signal and the expensive one
		// clamps to zero.
		batch := []ListingWithVenue{
			withVenue(listing("a", 50, scoreNow.AddDate(0, 0, 15)), 10),
			withVenue(listing("b", 150, scoreNow.AddDate(0, 0, 15)), 10),
		}

		scored := scorer.Score(scoreNow, batch)
		require.Len(t, scored, 2)

		// 100 * (0.5*0.5 + 0.3*1.0 + 0.2*0.5)
		assert.InDelta(t, 65.0, scored[0].Score, 0.001)
		// 100 * (0.5*0.0 + 0.3*1.0 + 0.2*0.5)
		assert.InDelta(t, 40.0, scored[1].Score, 0.001)

		assert.InDelta(t, 50.0, scored[0].SavingsPercent, 0.001)
		assert.Zero(t, scored[1].SavingsPercent)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		batch := []ListingWithVenue{
			withVenue(listing("a", 42, scoreNow.AddDate(0, 0, 3)), 8),
			withVenue(listing("b", 99, scoreNow.AddDate(0, 0, 21)), 5),
			withVenue(listing("c", 0, scoreNow.AddDate(0, 0, 10)), 7),
		}

		first := scorer.Score(scoreNow, batch)
		second := scorer.Score(scoreNow, batch)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Score, second[i].Score, first[i].Listing.ID)
			assert.Equal(t, first[i].ComputedAt, second[i].ComputedAt)
		}
	})

	t.Run("unpriced listing scored with zero discount", func(t *testing.T) {
		batch := []ListingWithVenue{
			withVenue(listing("priced", 80, scoreNow.AddDate(0, 0, 5)), 5),
			withVenue(listing("unpriced", 0, scoreNow.AddDate(0, 0, 5)), 5),
		}

		scored := scorer.Score(scoreNow, batch)
		require.Len(t, scored, 2)

		var unpriced ScoredDeal
		for _, d := range scored {
			if d.Listing.ID == "unpriced" {
				unpriced = d
			}
		}

		assert.Zero(t, unpriced.SavingsPercent)
		// Popularity and recency still contribute.
		assert.Greater(t, unpriced.Score, 0.0)
	})

	t.Run("past or undated events get no recency boost", func(t *testing.T) {
		past := withVenue(listing("past", 100, scoreNow.AddDate(0, 0, -1)), 0)
		undated := withVenue(listing("undated", 100, time.Time{}), 0)
		soon := withVenue(listing("soon", 100, scoreNow.Add(time.Hour)), 0)

		scored := scorer.Score(scoreNow, []ListingWithVenue{past, undated, soon})
		require.Len(t, scored, 3)

		byID := make(map[string]ScoredDeal, 3)
		for _, d := range scored {
			byID[d.Listing.ID] = d
		}

		assert.Zero(t, byID["past"].Score)
		assert.Zero(t, byID["undated"].Score)
		assert.Greater(t, byID["soon"].Score, byID["past"].Score)
	})

	t.Run("empty batch", func(t *testing.T) {
		scored := scorer.Score(scoreNow, nil)
		assert.Empty(t, scored)
	})
}

func TestCategoryBaselines(t *testing.T) {
	t.Run("per category means, unpriced excluded", func(t *testing.T) {
		music := listing("m1", 30, scoreNow)
		music.Category = "music"

		batch := []ListingWithVenue{
			withVenue(listing("s1", 100, scoreNow), 5),
			withVenue(listing("s2", 200, scoreNow), 5),
			withVenue(listing("s3", 0, scoreNow), 5),
			withVenue(music, 5),
		}

		baselines := categoryBaselines(batch)

		assert.InDelta(t, 150.0, baselines.byCategory["sports"], 0.001)
		assert.InDelta(t, 30.0, baselines.byCategory["music"], 0.001)
		assert.InDelta(t, 110.0, baselines.overall, 0.001)
	})

	t.Run("category without priced listings falls back to batch mean",
		func(t *testing.T) {
			comedy := listing("c1", 0, scoreNow)
			comedy.Category = "comedy"

			batch := []ListingWithVenue{
				withVenue(listing("s1", 60, scoreNow), 5),
				withVenue(comedy, 5),
			}

			baselines := categoryBaselines(batch)
			_, hasComedy := baselines.byCategory["comedy"]

			assert.False(t, hasComedy)
			assert.InDelta(t, 60.0, baselines.overall, 0.001)
		})
}
