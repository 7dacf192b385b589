// AngelaMos | 2026
// demo.go

package inventory

import (
	"context"
	"strings"
	"time"
)

const sourceDemo = "demo"

// DemoSource serves a fixed snapshot of Portland listings so the service
// stays usable without an upstream API key. It is read-only: requests never
// mutate the fixtures, and every listing is labeled with the demo source so
// clients can tell it apart from live inventory.
type DemoSource struct {
	listings []RawListing
	venues   []RawVenue
}

func NewDemoSource(now time.Time) *DemoSource {
	return &DemoSource{
		listings: demoListings(now),
		venues:   demoVenues(),
	}
}

func (s *DemoSource) Name() string {
	return sourceDemo
}

func (s *DemoSource) FetchEvents(
	ctx context.Context,
	filters EventFilters,
) ([]RawListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]RawListing, 0, len(s.listings))
	for _, l := range s.listings {
		if filters.City != "" && !strings.EqualFold(l.City, filters.City) {
			continue
		}
		if filters.Category != "" && l.Category != filters.Category {
			continue
		}
		if filters.Keyword != "" &&
			!strings.Contains(
				strings.ToLower(l.Name),
				strings.ToLower(filters.Keyword),
			) {
			continue
		}
		if filters.MinPrice > 0 && l.HasPrice() && l.MinPrice < filters.MinPrice {
			continue
		}
		if filters.MaxPrice > 0 && l.HasPrice() && l.MinPrice > filters.MaxPrice {
			continue
		}
		out = append(out, l)
	}

	return out, nil
}

func (s *DemoSource) FetchVenues(
	ctx context.Context,
	region string,
) ([]RawVenue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]RawVenue, len(s.venues))
	copy(out, s.venues)
	return out, nil
}

func demoListings(now time.Time) []RawListing {
	day := 24 * time.Hour

	return []RawListing{
		{
			ID:        "demo_blazers_lakers",
			Name:      "Portland Trail Blazers vs. Los Angeles Lakers",
			VenueName: "Moda Center",
			City:      "Portland",
			StartsAt:  now.Add(3 * day),
			MinPrice:  45,
			MaxPrice:  320,
			Currency:  "USD",
			Category:  "sports",
			Source:    sourceDemo,
		},
		{
			ID:        "demo_blazers_warriors",
			Name:      "Portland Trail Blazers vs. Golden State Warriors",
			VenueName: "Moda Center",
			City:      "Portland",
			StartsAt:  now.Add(12 * day),
			MinPrice:  62,
			MaxPrice:  410,
			Currency:  "USD",
			Category:  "sports",
			Source:    sourceDemo,
		},
		{
			ID:        "demo_timbers_sounders",
			Name:      "Portland Timbers vs. Seattle Sounders FC",
			VenueName: "Providence Park",
			City:      "Portland",
			StartsAt:  now.Add(6 * day),
			MinPrice:  28,
			MaxPrice:  150,
			Currency:  "USD",
			Category:  "sports",
			Source:    sourceDemo,
		},
		{
			ID:        "demo_crystal_indie",
			Name:      "Indie Night at the Crystal Ballroom",
			VenueName: "Crystal Ballroom",
			City:      "Portland",
			StartsAt:  now.Add(2 * day),
			MinPrice:  25,
			MaxPrice:  45,
			Currency:  "USD",
			Category:  "music",
			Source:    sourceDemo,
		},
		{
			ID:        "demo_schnitzer_symphony",
			Name:      "Oregon Symphony: Beethoven's Ninth",
			VenueName: "Arlene Schnitzer Concert Hall",
			City:      "Portland",
			StartsAt:  now.Add(9 * day),
			MinPrice:  35,
			MaxPrice:  120,
			Currency:  "USD",
			Category:  "music",
			Source:    sourceDemo,
		},
		{
			ID:        "demo_keller_broadway",
			Name:      "Broadway in Portland: Wicked",
			VenueName: "Keller Auditorium",
			City:      "Portland",
			StartsAt:  now.Add(20 * day),
			MinPrice:  55,
			MaxPrice:  210,
			Currency:  "USD",
			Category:  "entertainment",
			Source:    sourceDemo,
		},
		{
			// Free community event: no published price range.
			ID:        "demo_revolution_showcase",
			Name:      "Local Artist Showcase",
			VenueName: "Revolution Hall",
			City:      "Portland",
			StartsAt:  now.Add(5 * day),
			Category:  "music",
			Source:    sourceDemo,
		},
	}
}

func demoVenues() []RawVenue {
	return []RawVenue{
		{ID: "demo_v_moda", Name: "Moda Center", City: "Portland", State: "OR"},
		{ID: "demo_v_providence", Name: "Providence Park", City: "Portland", State: "OR"},
		{ID: "demo_v_crystal", Name: "Crystal Ballroom", City: "Portland", State: "OR"},
		{ID: "demo_v_schnitzer", Name: "Arlene Schnitzer Concert Hall", City: "Portland", State: "OR"},
		{ID: "demo_v_keller", Name: "Keller Auditorium", City: "Portland", State: "OR"},
		{ID: "demo_v_revolution", Name: "Revolution Hall", City: "Portland", State: "OR"},
		{ID: "demo_v_roseland", Name: "Roseland Theater", City: "Portland", State: "OR"},
	}
}
