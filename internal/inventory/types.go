// AngelaMos | 2026
// types.go

package inventory

import (
	"context"
	"time"
)

// RawListing is one bookable event offering as returned by the upstream
// inventory provider, already flattened out of the provider's envelope.
// Immutable once received. Zero prices mean the provider published no
// price range for the listing.
type RawListing struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	VenueName string    `json:"venue"`
	City      string    `json:"city"`
	StartsAt  time.Time `json:"starts_at"`
	URL       string    `json:"url,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	MinPrice  float64   `json:"min_price"`
	MaxPrice  float64   `json:"max_price"`
	Currency  string    `json:"currency,omitempty"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
}

// HasPrice reports whether the provider published a price range. Listings
// without one are still scored, with a zero discount contribution.
func (l RawListing) HasPrice() bool {
	return l.MinPrice > 0
}

// RawVenue is an upstream venue record before local enrichment.
type RawVenue struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

// EventFilters narrows an upstream event search. Zero values mean "no
// constraint" for that dimension.
type EventFilters struct {
	City     string
	Category string
	Keyword  string
	MinPrice float64
	MaxPrice float64
}

// Source is the inventory collaborator boundary. Implementations must fail
// discretely: any transport error, error status, timeout or undecodable
// payload surfaces as an error wrapping core.ErrUpstreamUnavailable.
// Individual records missing their identifying fields are dropped from the
// result, not reported as a failure.
type Source interface {
	FetchEvents(ctx context.Context, filters EventFilters) ([]RawListing, error)
	FetchVenues(ctx context.Context, region string) ([]RawVenue, error)

	// Name labels the source in responses and logs, e.g. "ticketmaster"
	// or "demo".
	Name() string
}
