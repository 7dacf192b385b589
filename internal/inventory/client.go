// AngelaMos | 2026
// client.go

package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/mazzlabs/ripcity-dispatch/internal/config"
	"github.com/mazzlabs/ripcity-dispatch/internal/core"
)

const sourceTicketmaster = "ticketmaster"

// classificationNames maps our category filter onto the Discovery API's
// classification names.
var classificationNames = map[string]string{
	"sports":        "Sports",
	"music":         "Music",
	"entertainment": "Arts & Theatre",
}

// Client fetches events and venues from the Ticketmaster Discovery API.
// Every request is bounded by the configured timeout and throttled so a
// burst of pipeline runs cannot exhaust the upstream quota.
type Client struct {
	http     *resty.Client
	apiKey   string
	city     string
	pageSize int
	limiter  *rate.Limiter
}

func NewClient(cfg config.InventoryConfig) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 4
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "RipCityDispatch/1.0")

	return &Client{
		http:     httpClient,
		apiKey:   cfg.APIKey,
		city:     cfg.City,
		pageSize: cfg.PageSize,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Client) Name() string {
	return sourceTicketmaster
}

// Discovery API response envelope, trimmed to the fields we read.

type eventsResponse struct {
	Embedded struct {
		Events []discoveryEvent `json:"events"`
	} `json:"_embedded"`
}

type venuesResponse struct {
	Embedded struct {
		Venues []discoveryVenue `json:"venues"`
	} `json:"_embedded"`
}

type discoveryEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			DateTime  time.Time `json:"dateTime"`
			LocalDate string    `json:"localDate"`
		} `json:"start"`
	} `json:"dates"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	PriceRanges []struct {
		Currency string  `json:"currency"`
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
	} `json:"priceRanges"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
	} `json:"classifications"`
	Embedded struct {
		Venues []discoveryVenue `json:"venues"`
	} `json:"_embedded"`
}

type discoveryVenue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
	PostalCode string `json:"postalCode"`
	Timezone   string `json:"timezone"`
}

func (c *Client) FetchEvents(
	ctx context.Context,
	filters EventFilters,
) ([]RawListing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("inventory throttle: %w", err)
	}

	city := filters.City
	if city == "" {
		city = c.city
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("apikey", c.apiKey).
		SetQueryParam("city", city).
		SetQueryParam("countryCode", "US").
		SetQueryParam("size", strconv.Itoa(c.pageSize)).
		SetQueryParam("sort", "date,asc")

	if name, ok := classificationNames[filters.Category]; ok {
		req.SetQueryParam("classificationName", name)
	}
	if filters.Keyword != "" {
		req.SetQueryParam("keyword", filters.Keyword)
	}
	if filters.MinPrice > 0 {
		req.SetQueryParam(
			"priceMin",
			strconv.FormatFloat(filters.MinPrice, 'f', 2, 64),
		)
	}
	if filters.MaxPrice > 0 {
		req.SetQueryParam(
			"priceMax",
			strconv.FormatFloat(filters.MaxPrice, 'f', 2, 64),
		)
	}

	var payload eventsResponse
	resp, err := req.SetResult(&payload).Get("/events.json")
	if err != nil {
		return nil, fmt.Errorf(
			"fetch events: %v: %w",
			err,
			core.ErrUpstreamUnavailable,
		)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf(
			"fetch events: status %d: %w",
			resp.StatusCode(),
			core.ErrUpstreamUnavailable,
		)
	}

	listings := make([]RawListing, 0, len(payload.Embedded.Events))
	for _, ev := range payload.Embedded.Events {
		listing, ok := c.toRawListing(ev)
		if !ok {
			slog.Debug("dropping malformed listing",
				"id", ev.ID,
				"name", ev.Name,
			)
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func (c *Client) FetchVenues(
	ctx context.Context,
	region string,
) ([]RawVenue, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("inventory throttle: %w", err)
	}

	if region == "" {
		region = c.city
	}

	var payload venuesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("apikey", c.apiKey).
		SetQueryParam("city", region).
		SetQueryParam("countryCode", "US").
		SetQueryParam("size", strconv.Itoa(c.pageSize)).
		SetResult(&payload).
		Get("/venues.json")
	if err != nil {
		return nil, fmt.Errorf(
			"fetch venues: %v: %w",
			err,
			core.ErrUpstreamUnavailable,
		)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf(
			"fetch venues: status %d: %w",
			resp.StatusCode(),
			core.ErrUpstreamUnavailable,
		)
	}

	venues := make([]RawVenue, 0, len(payload.Embedded.Venues))
	for _, v := range payload.Embedded.Venues {
		if v.ID == "" || v.Name == "" {
			continue
		}
		venues = append(venues, RawVenue{
			ID:         v.ID,
			Name:       v.Name,
			City:       v.City.Name,
			State:      v.State.StateCode,
			PostalCode: v.PostalCode,
			Timezone:   v.Timezone,
		})
	}

	return venues, nil
}

// toRawListing flattens a Discovery event. A record missing its id or name
// cannot be deduplicated or ranked deterministically and is dropped; a
// missing price range is fine.
func (c *Client) toRawListing(ev discoveryEvent) (RawListing, bool) {
	if ev.ID == "" || ev.Name == "" {
		return RawListing{}, false
	}

	listing := RawListing{
		ID:       "tm_" + ev.ID,
		Name:     ev.Name,
		URL:      ev.URL,
		StartsAt: ev.Dates.Start.DateTime,
		Category: categoryFromSegment(ev),
		Source:   sourceTicketmaster,
	}

	if listing.StartsAt.IsZero() && ev.Dates.Start.LocalDate != "" {
		if t, err := time.Parse("2006-01-02", ev.Dates.Start.LocalDate); err == nil {
			listing.StartsAt = t
		}
	}

	if len(ev.Embedded.Venues) > 0 {
		listing.VenueName = ev.Embedded.Venues[0].Name
		listing.City = ev.Embedded.Venues[0].City.Name
	}

	if len(ev.PriceRanges) > 0 {
		listing.MinPrice = ev.PriceRanges[0].Min
		listing.MaxPrice = ev.PriceRanges[0].Max
		listing.Currency = ev.PriceRanges[0].Currency
	}

	if len(ev.Images) > 0 {
		listing.ImageURL = ev.Images[0].URL
	}

	return listing, true
}

func categoryFromSegment(ev discoveryEvent) string {
	if len(ev.Classifications) == 0 {
		return "other"
	}

	switch ev.Classifications[0].Segment.Name {
	case "Sports":
		return "sports"
	case "Music":
		return "music"
	case "Arts & Theatre":
		return "entertainment"
	default:
		return "other"
	}
}
