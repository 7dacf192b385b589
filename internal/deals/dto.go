// AngelaMos | 2026
// dto.go

package deals

import (
	"time"

	"github.com/mazzlabs/ripcity-dispatch/internal/venues"
)

// DealResponse flattens a scored deal for the API. Price fields are
// pointers so listings without price data serialize as null rather than
// a misleading zero.
type DealResponse struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Category   string               `json:"category"`
	StartsAt   time.Time            `json:"starts_at"`
	URL        string               `json:"url,omitempty"`
	ImageURL   string               `json:"image_url,omitempty"`
	MinPrice   *float64             `json:"min_price"`
	MaxPrice   *float64             `json:"max_price"`
	Currency   string               `json:"currency,omitempty"`
	Score      float64              `json:"score"`
	Savings    float64              `json:"savings_percent"`
	Venue      venues.EnrichedVenue `json:"venue"`
	Source     string               `json:"source"`
	ComputedAt time.Time            `json:"computed_at"`
}

type DealListResponse struct {
	Deals      []DealResponse `json:"deals"`
	Count      int            `json:"count"`
	Source     string         `json:"source"`
	ComputedAt time.Time      `json:"computed_at"`
}

func ToDealResponse(d ScoredDeal) DealResponse {
	resp := DealResponse{
		ID:         d.Listing.ID,
		Name:       d.Listing.Name,
		Category:   d.Listing.Category,
		StartsAt:   d.Listing.StartsAt,
		URL:        d.Listing.URL,
		ImageURL:   d.Listing.ImageURL,
		Currency:   d.Listing.Currency,
		Score:      d.Score,
		Savings:    d.SavingsPercent,
		Venue:      d.Venue,
		Source:     d.Listing.Source,
		ComputedAt: d.ComputedAt,
	}

	if d.Listing.HasPrice() {
		minPrice := d.Listing.MinPrice
		maxPrice := d.Listing.MaxPrice
		resp.MinPrice = &minPrice
		resp.MaxPrice = &maxPrice
	}

	return resp
}

func ToDealListResponse(deals []ScoredDeal, source string) DealListResponse {
	resp := DealListResponse{
		Deals:  make([]DealResponse, 0, len(deals)),
		Count:  len(deals),
		Source: source,
	}
	for _, d := range deals {
		resp.Deals = append(resp.Deals, ToDealResponse(d))
	}
	if len(deals) > 0 {
		resp.ComputedAt = deals[0].ComputedAt
	}
	return resp
}
