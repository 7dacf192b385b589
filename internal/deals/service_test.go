// AngelaMos | 2026
// service_test.go

package deals

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
)

type fakeSource struct {
	listings []inventory.RawListing
	err      error
	gotCalls []inventory.EventFilters
}

func (f *fakeSource) FetchEvents(
	_ context.Context,
	filters inventory.EventFilters,
) ([]inventory.RawListing, error) {
	f.gotCalls = append(f.gotCalls, filters)
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

func (f *fakeSource) FetchVenues(
	_ context.Context,
	_ string,
) ([]inventory.RawVenue, error) {
	return nil, nil
}

func (f *fakeSource) Name() string { return "fake" }

func newTestService(source inventory.Source) *Service {
	svc := NewService(source, NewScorer(), slog.Default())
	svc.now = func() time.Time { return scoreNow }
	return svc
}

func TestServiceGetDeals(t *testing.T) {
	t.Run("upstream failure surfaces, never empty success", func(t *testing.T) {
		source := &fakeSource{
			err: fmt.Errorf("fetch events: %w", core.ErrUpstreamUnavailable),
		}
		svc := newTestService(source)

		deals, err := svc.GetDeals(context.Background(), inventory.EventFilters{})

		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
		assert.Nil(t, deals)
	})

	t.Run("empty snapshot is a valid result", func(t *testing.T) {
		svc := newTestService(&fakeSource{})

		deals, err := svc.GetDeals(context.Background(), inventory.EventFilters{})

		require.NoError(t, err)
		assert.Empty(t, deals)
	})

	t.Run("unpriced listings kept, whole batch scored", func(t *testing.T) {
		source := &fakeSource{listings: []inventory.RawListing{
			listing("a", 40, scoreNow.AddDate(0, 0, 10)),
			listing("b", 90, scoreNow.AddDate(0, 0, 10)),
			listing("c", 0, scoreNow.AddDate(0, 0, 10)),
		}}
		svc := newTestService(source)

		deals, err := svc.GetDeals(context.Background(), inventory.EventFilters{})

		require.NoError(t, err)
		require.Len(t, deals, 3)
	})

	t.Run("ranked best first with stable tie-breaks", func(t *testing.T) {
		// Same category, same venue weight, same date: the price is the
		// only discriminator, and equal listings order by id.
		at := scoreNow.AddDate(0, 0, 10)
		source := &fakeSource{listings: []inventory.RawListing{
			listing("z-cheap", 40, at),
			listing("expensive", 120, at),
			listing("a-cheap", 40, at),
		}}
		svc := newTestService(source)

		deals, err := svc.GetDeals(context.Background(), inventory.EventFilters{})
		require.NoError(t, err)
		require.Len(t, deals, 3)

		assert.Equal(t, "a-cheap", deals[0].Listing.ID)
		assert.Equal(t, "z-cheap", deals[1].Listing.ID)
		assert.Equal(t, "expensive", deals[2].Listing.ID)

		for i := 1; i < len(deals); i++ {
			assert.GreaterOrEqual(t, deals[i-1].Score, deals[i].Score)
		}
	})
}

func TestServiceHotDeals(t *testing.T) {
	t.Run("only deals at or above the floor", func(t *testing.T) {
		// Baseline is the mean of 10 and 190, so the cheap listing
		// carries a 0.9 discount signal and clears the floor while the
		// expensive one stays well under it.
		at := scoreNow.AddDate(0, 0, 2)
		source := &fakeSource{listings: []inventory.RawListing{
			listing("steal", 10, at),
			listing("face-value", 190, at),
		}}
		svc := newTestService(source)

		deals, err := svc.HotDeals(context.Background(), inventory.EventFilters{})

		require.NoError(t, err)
		require.Len(t, deals, 1)
		assert.Equal(t, "steal", deals[0].Listing.ID)
		assert.GreaterOrEqual(t, deals[0].Score, hotScoreFloor)
	})

	t.Run("capped when the floor admits too many", func(t *testing.T) {
		// Twelve identically cheap listings against one expensive one
		// all clear the floor; the feed still caps at the limit.
		at := scoreNow.AddDate(0, 0, 2)
		listings := []inventory.RawListing{
			listing("anchor", 1090, at),
		}
		for i := 0; i < 12; i++ {
			listings = append(listings, listing(
				fmt.Sprintf("cheap-%02d", i), 10, at,
			))
		}
		svc := newTestService(&fakeSource{listings: listings})

		deals, err := svc.HotDeals(context.Background(), inventory.EventFilters{})

		require.NoError(t, err)
		require.Len(t, deals, hotDealLimit)
		for _, d := range deals {
			assert.GreaterOrEqual(t, d.Score, hotScoreFloor)
		}
	})
}

func TestServiceHomeTeamDeals(t *testing.T) {
	blazers := listing("blazers", 60, scoreNow.AddDate(0, 0, 7))
	blazers.Name = "Portland Trail Blazers vs Lakers"
	blazers.VenueName = "Moda Center"

	timbers := listing("timbers", 30, scoreNow.AddDate(0, 0, 9))
	timbers.Name = "Portland Timbers vs Seattle Sounders"
	timbers.VenueName = "Providence Park"

	other := listing("other", 25, scoreNow.AddDate(0, 0, 3))
	other.Name = "Winterhawks Hockey"

	source := &fakeSource{listings: []inventory.RawListing{
		blazers, timbers, other,
	}}
	svc := newTestService(source)

	deals, err := svc.HomeTeamDeals(context.Background(), inventory.EventFilters{})
	require.NoError(t, err)

	require.Len(t, deals, 2)
	for _, d := range deals {
		assert.NotEqual(t, "other", d.Listing.ID)
	}

	// The sports category is forced regardless of caller filters.
	require.NotEmpty(t, source.gotCalls)
	assert.Equal(t, "sports", source.gotCalls[0].Category)
}

func TestServiceTopVenueDeals(t *testing.T) {
	marquee := listing("marquee", 50, scoreNow.AddDate(0, 0, 5))
	marquee.VenueName = "Moda Center"

	club := listing("club", 15, scoreNow.AddDate(0, 0, 5))
	club.VenueName = "Doug Fir Lounge"

	svc := newTestService(&fakeSource{listings: []inventory.RawListing{
		marquee, club,
	}})

	deals, err := svc.TopVenueDeals(context.Background(), inventory.EventFilters{})
	require.NoError(t, err)

	require.Len(t, deals, 1)
	assert.Equal(t, "marquee", deals[0].Listing.ID)
}

func TestServiceGetDeal(t *testing.T) {
	svc := newTestService(&fakeSource{listings: []inventory.RawListing{
		listing("wanted", 45, scoreNow.AddDate(0, 0, 4)),
	}})

	t.Run("found", func(t *testing.T) {
		deal, err := svc.GetDeal(context.Background(), "wanted")
		require.NoError(t, err)
		assert.Equal(t, "wanted", deal.Listing.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.GetDeal(context.Background(), "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}
