// AngelaMos | 2026
// client_test.go

package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazzlabs/ripcity-dispatch/internal/config"
	"github.com/mazzlabs/ripcity-dispatch/internal/core"
)

const eventsFixture = `{
	"_embedded": {
		"events": [
			{
				"id": "ev1",
				"name": "Portland Trail Blazers vs Lakers",
				"url": "https://tickets.example/ev1",
				"dates": {"start": {"dateTime": "2026-03-15T03:00:00Z"}},
				"priceRanges": [{"currency": "USD", "min": 45, "max": 320}],
				"classifications": [{"segment": {"name": "Sports"}}],
				"_embedded": {
					"venues": [{"id": "v1", "name": "Moda Center",
						"city": {"name": "Portland"}}]
				}
			},
			{
				"id": "ev2",
				"name": "Unpriced Showcase",
				"dates": {"start": {"localDate": "2026-03-20"}},
				"classifications": [{"segment": {"name": "Music"}}]
			},
			{
				"id": "",
				"name": "Broken Record"
			},
			{
				"id": "ev4",
				"name": ""
			}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.InventoryConfig{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		City:           "Portland",
		Timeout:        2 * time.Second,
		PageSize:       50,
		RequestsPerSec: 100,
	})
}

func TestClientFetchEvents(t *testing.T) {
	t.Run("query parameters and flattening", func(t *testing.T) {
		var gotQuery url.Values
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(eventsFixture))
		})

		listings, err := client.FetchEvents(context.Background(), EventFilters{
			Category: "sports",
			Keyword:  "blazers",
			MinPrice: 20,
			MaxPrice: 150,
		})
		require.NoError(t, err)

		assert.Equal(t, "test-key", gotQuery.Get("apikey"))
		assert.Equal(t, "Portland", gotQuery.Get("city"))
		assert.Equal(t, "US", gotQuery.Get("countryCode"))
		assert.Equal(t, "Sports", gotQuery.Get("classificationName"))
		assert.Equal(t, "blazers", gotQuery.Get("keyword"))
		assert.Equal(t, "20.00", gotQuery.Get("priceMin"))
		assert.Equal(t, "150.00", gotQuery.Get("priceMax"))

		// Two of the four fixture events are missing id or name and
		// get dropped; the rest survive.
		require.Len(t, listings, 2)

		blazers := listings[0]
		assert.Equal(t, "tm_ev1", blazers.ID)
		assert.Equal(t, "Moda Center", blazers.VenueName)
		assert.Equal(t, "Portland", blazers.City)
		assert.Equal(t, "sports", blazers.Category)
		assert.Equal(t, 45.0, blazers.MinPrice)
		assert.Equal(t, 320.0, blazers.MaxPrice)
		assert.True(t, blazers.HasPrice())
	})

	t.Run("local date fallback, missing price kept", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(eventsFixture))
		})

		listings, err := client.FetchEvents(context.Background(), EventFilters{})
		require.NoError(t, err)
		require.Len(t, listings, 2)

		unpriced := listings[1]
		assert.Equal(t, "tm_ev2", unpriced.ID)
		assert.False(t, unpriced.HasPrice())
		assert.Equal(t,
			time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			unpriced.StartsAt,
		)
		assert.Equal(t, "music", unpriced.Category)
	})

	t.Run("error status surfaces as upstream unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		listings, err := client.FetchEvents(context.Background(), EventFilters{})

		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
		assert.Nil(t, listings)
	})

	t.Run("unreachable server surfaces as upstream unavailable",
		func(t *testing.T) {
			client := NewClient(config.InventoryConfig{
				APIKey:         "test-key",
				BaseURL:        "http://127.0.0.1:1",
				City:           "Portland",
				Timeout:        500 * time.Millisecond,
				PageSize:       10,
				RequestsPerSec: 100,
			})

			_, err := client.FetchEvents(context.Background(), EventFilters{})

			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
		})

	t.Run("empty page is a valid result", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		})

		listings, err := client.FetchEvents(context.Background(), EventFilters{})

		require.NoError(t, err)
		assert.Empty(t, listings)
	})
}

func TestClientFetchVenues(t *testing.T) {
	const venuesFixture = `{
		"_embedded": {
			"venues": [
				{"id": "v1", "name": "Moda Center",
					"city": {"name": "Portland"},
					"state": {"stateCode": "OR"},
					"postalCode": "97227"},
				{"id": "", "name": "Nameless Corp Arena"},
				{"id": "v3", "name": ""}
			]
		}
	}`

	t.Run("flattens and drops incomplete records", func(t *testing.T) {
		var gotQuery url.Values
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(venuesFixture))
		})

		venues, err := client.FetchVenues(context.Background(), "")
		require.NoError(t, err)

		// Default city applies when no region is given.
		assert.Equal(t, "Portland", gotQuery.Get("city"))

		require.Len(t, venues, 1)
		assert.Equal(t, "v1", venues[0].ID)
		assert.Equal(t, "OR", venues[0].State)
		assert.Equal(t, "97227", venues[0].PostalCode)
	})

	t.Run("error status surfaces as upstream unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.FetchVenues(context.Background(), "Portland")

		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
	})
}

func TestDemoSource(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	source := NewDemoSource(now)

	t.Run("labeled demo", func(t *testing.T) {
		assert.Equal(t, "demo", source.Name())
	})

	t.Run("fixture listings honor filters", func(t *testing.T) {
		all, err := source.FetchEvents(context.Background(), EventFilters{})
		require.NoError(t, err)
		require.NotEmpty(t, all)

		sports, err := source.FetchEvents(context.Background(), EventFilters{
			Category: "sports",
		})
		require.NoError(t, err)
		require.NotEmpty(t, sports)
		assert.Less(t, len(sports), len(all))
		for _, l := range sports {
			assert.Equal(t, "sports", l.Category)
		}
	})

	t.Run("contains an unpriced listing", func(t *testing.T) {
		all, err := source.FetchEvents(context.Background(), EventFilters{})
		require.NoError(t, err)

		unpriced := 0
		for _, l := range all {
			if !l.HasPrice() {
				unpriced++
			}
		}
		assert.Equal(t, 1, unpriced)
	})

	t.Run("venues enumerate", func(t *testing.T) {
		venues, err := source.FetchVenues(context.Background(), "")
		require.NoError(t, err)
		assert.NotEmpty(t, venues)
	})
}
