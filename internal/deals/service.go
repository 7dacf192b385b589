// AngelaMos | 2026
// service.go

package deals

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
	"github.com/mazzlabs/ripcity-dispatch/internal/venues"
)

// homeTeams names the franchises whose games the home-team feed surfaces.
var homeTeams = []string{
	"trail blazers",
	"blazers",
	"timbers",
	"thorns",
}

// topVenuePopularity is the floor for the top-venues feed.
const topVenuePopularity = 8

// Hot feed: only deals at or above the score floor, capped best-first.
const (
	hotScoreFloor = 70.0
	hotDealLimit  = 10
)

// Service runs the deal pipeline: fetch a snapshot from the inventory
// source, enrich each listing's venue, score the batch, rank it. Every
// run works on a fresh snapshot; nothing is cached between requests.
type Service struct {
	source inventory.Source
	scorer *Scorer
	now    func() time.Time
	logger *slog.Logger
}

func NewService(
	source inventory.Source,
	scorer *Scorer,
	logger *slog.Logger,
) *Service {
	return &Service{
		source: source,
		scorer: scorer,
		now:    time.Now,
		logger: logger,
	}
}

// SourceName reports which inventory source backs the pipeline.
func (s *Service) SourceName() string {
	return s.source.Name()
}

// GetDeals fetches, enriches, scores and ranks a snapshot of listings.
// When the upstream source fails the error is surfaced as-is; an empty
// successful response is never fabricated from a failed fetch.
func (s *Service) GetDeals(
	ctx context.Context,
	filters inventory.EventFilters,
) ([]ScoredDeal, error) {
	listings, err := s.source.FetchEvents(ctx, filters)
	if err != nil {
		s.logger.Error("inventory fetch failed",
			"source", s.source.Name(),
			"error", err,
		)
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	// One captured now for the whole batch. Scoring is deterministic
	// from here on.
	now := s.now().UTC()

	batch := make([]ListingWithVenue, 0, len(listings))
	for _, listing := range listings {
		batch = append(batch, ListingWithVenue{
			Listing: listing,
			Venue:   venues.EnrichByName(listing.VenueName),
		})
	}

	scored := s.scorer.Score(now, batch)
	rank(scored)

	s.logger.Debug("deal pipeline run",
		"source", s.source.Name(),
		"listings", len(listings),
		"scored", len(scored),
	)

	return scored, nil
}

// HotDeals keeps only the feed's strongest deals.
func (s *Service) HotDeals(
	ctx context.Context,
	filters inventory.EventFilters,
) ([]ScoredDeal, error) {
	scored, err := s.GetDeals(ctx, filters)
	if err != nil {
		return nil, err
	}

	hot := scored[:0]
	for _, deal := range scored {
		if deal.Score >= hotScoreFloor {
			hot = append(hot, deal)
		}
	}
	if len(hot) > hotDealLimit {
		hot = hot[:hotDealLimit]
	}
	return hot, nil
}

// HomeTeamDeals narrows the sports feed to the local franchises.
func (s *Service) HomeTeamDeals(
	ctx context.Context,
	filters inventory.EventFilters,
) ([]ScoredDeal, error) {
	filters.Category = "sports"

	scored, err := s.GetDeals(ctx, filters)
	if err != nil {
		return nil, err
	}

	matched := scored[:0]
	for _, deal := range scored {
		if matchesHomeTeam(deal.Listing.Name) {
			matched = append(matched, deal)
		}
	}
	return matched, nil
}

// TopVenueDeals keeps only listings at the city's marquee venues.
func (s *Service) TopVenueDeals(
	ctx context.Context,
	filters inventory.EventFilters,
) ([]ScoredDeal, error) {
	scored, err := s.GetDeals(ctx, filters)
	if err != nil {
		return nil, err
	}

	matched := scored[:0]
	for _, deal := range scored {
		if deal.Venue.Popularity >= topVenuePopularity {
			matched = append(matched, deal)
		}
	}
	return matched, nil
}

// GetDeal looks up a single listing by id in a fresh snapshot.
func (s *Service) GetDeal(
	ctx context.Context,
	id string,
) (ScoredDeal, error) {
	scored, err := s.GetDeals(ctx, inventory.EventFilters{})
	if err != nil {
		return ScoredDeal{}, err
	}

	for _, deal := range scored {
		if deal.Listing.ID == id {
			return deal, nil
		}
	}
	return ScoredDeal{}, fmt.Errorf("deal %s: %w", id, core.ErrNotFound)
}

func matchesHomeTeam(eventName string) bool {
	lowered := strings.ToLower(eventName)
	for _, team := range homeTeams {
		if strings.Contains(lowered, team) {
			return true
		}
	}
	return false
}

// rank orders the feed best-first. Ties on score break toward the cheaper
// listing, then the more popular venue, then listing id so ordering is
// total and stable across runs on the same snapshot.
func rank(scored []ScoredDeal) {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Listing.MinPrice != b.Listing.MinPrice {
			return a.Listing.MinPrice < b.Listing.MinPrice
		}
		if a.Venue.Popularity != b.Venue.Popularity {
			return a.Venue.Popularity > b.Venue.Popularity
		}
		return a.Listing.ID < b.Listing.ID
	})
}
