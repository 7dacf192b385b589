// AngelaMos | 2026
// scorer.go

package deals

import (
	"math"
	"time"

	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
	"github.com/mazzlabs/ripcity-dispatch/internal/venues"
)

// Score weighting. Discount dominates, venue popularity and event urgency
// round out the ranking. The three weights sum to 1; scores land on a
// 0-100 scale.
const (
	discountWeight   = 0.5
	popularityWeight = 0.3
	recencyWeight    = 0.2

	// recencyHorizonDays is the window inside which an approaching event
	// date earns an urgency boost. The boost is clamped, so a same-day
	// event cannot run away from the rest of the field.
	recencyHorizonDays = 30

	maxScore      = 100
	maxPopularity = 10
)

// ListingWithVenue pairs a raw listing with its enriched venue for scoring.
type ListingWithVenue struct {
	Listing inventory.RawListing
	Venue   venues.EnrichedVenue
}

// ScoredDeal wraps a listing, its enriched venue and the computed deal
// score. Transient: built per pipeline run, never persisted.
type ScoredDeal struct {
	Listing inventory.RawListing `json:"listing"`
	Venue   venues.EnrichedVenue `json:"venue"`
	Score   float64              `json:"score"`

	// SavingsPercent is the discount signal on a 0-100 scale, kept
	// alongside the blended score so alert preferences can filter on
	// savings alone.
	SavingsPercent float64   `json:"savings_percent"`
	ComputedAt     time.Time `json:"computed_at"`
}

// Scorer computes deal scores for a batch of listings. Scoring is
// deterministic: the same batch and the same captured now always produce
// the same scores. The only time-sensitive input is the now passed in by
// the caller, captured once per pipeline run.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score scores a batch. The discount signal compares each listing's
// minimum price against the mean listed price of its category within this
// batch, so a listing is a "deal" relative to comparable inventory in the
// same snapshot. Listings without price data get a zero discount signal;
// they are scored, never dropped.
func (s *Scorer) Score(
	now time.Time,
	batch []ListingWithVenue,
) []ScoredDeal {
	baselines := categoryBaselines(batch)

	scored := make([]ScoredDeal, 0, len(batch))
	for _, item := range batch {
		discount := discountSignal(item.Listing, baselines)
		scored = append(scored, ScoredDeal{
			Listing:        item.Listing,
			Venue:          item.Venue,
			Score:          s.scoreOne(now, item, discount),
			SavingsPercent: math.Round(discount*10000) / 100,
			ComputedAt:     now,
		})
	}

	return scored
}

func (s *Scorer) scoreOne(
	now time.Time,
	item ListingWithVenue,
	discount float64,
) float64 {
	popularity := clamp(
		float64(item.Venue.Popularity)/maxPopularity,
		0,
		1,
	)
	recency := recencySignal(now, item.Listing.StartsAt)

	score := maxScore * (discountWeight*discount +
		popularityWeight*popularity +
		recencyWeight*recency)

	// Two decimal places keeps responses tidy without disturbing order.
	return math.Round(score*100) / 100
}

type baselineTable struct {
	byCategory map[string]float64
	overall    float64
}

// categoryBaselines computes the mean listed minimum price per category
// across the priced listings of the batch, with a batch-wide fallback for
// categories that have no priced listings. Purely a function of the batch.
func categoryBaselines(batch []ListingWithVenue) baselineTable {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var overallSum float64
	var overallCount int

	for _, item := range batch {
		if !item.Listing.HasPrice() {
			continue
		}
		sums[item.Listing.Category] += item.Listing.MinPrice
		counts[item.Listing.Category]++
		overallSum += item.Listing.MinPrice
		overallCount++
	}

	byCategory := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		byCategory[cat] = sum / float64(counts[cat])
	}

	var overall float64
	if overallCount > 0 {
		overall = overallSum / float64(overallCount)
	}

	return baselineTable{byCategory: byCategory, overall: overall}
}

func discountSignal(l inventory.RawListing, baselines baselineTable) float64 {
	if !l.HasPrice() {
		return 0
	}

	baseline, ok := baselines.byCategory[l.Category]
	if !ok || baseline <= 0 {
		baseline = baselines.overall
	}
	if baseline <= 0 {
		return 0
	}

	return clamp((baseline-l.MinPrice)/baseline, 0, 1)
}

// recencySignal boosts events approaching inside the horizon. Events with
// no known date or already in the past contribute nothing.
func recencySignal(now, startsAt time.Time) float64 {
	if startsAt.IsZero() || startsAt.Before(now) {
		return 0
	}

	daysUntil := startsAt.Sub(now).Hours() / 24
	return clamp(1-daysUntil/recencyHorizonDays, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
