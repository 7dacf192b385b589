// AngelaMos | 2026
// enricher_test.go

package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
)

func TestEnrich(t *testing.T) {
	t.Run("known venue gets table weight and metadata", func(t *testing.T) {
		enriched := Enrich(inventory.RawVenue{
			ID:   "tm_v1",
			Name: "Moda Center",
			City: "Portland",
		})

		assert.Equal(t, 10, enriched.Popularity)
		assert.Equal(t, 19393, enriched.Capacity)
		assert.Equal(t, "arena", enriched.Type)
		assert.Contains(t, enriched.Teams, "Portland Trail Blazers")
	})

	t.Run("match is case-insensitive substring", func(t *testing.T) {
		enriched := EnrichByName("MODA CENTER - Blazers Night")
		assert.Equal(t, 10, enriched.Popularity)
		assert.Equal(t, 19393, enriched.Capacity)
	})

	t.Run("unknown venue gets default, no metadata", func(t *testing.T) {
		enriched := EnrichByName("Some Random Hall")

		assert.Equal(t, DefaultPopularity, enriched.Popularity)
		assert.Zero(t, enriched.Capacity)
		assert.Empty(t, enriched.Type)
		assert.Empty(t, enriched.Teams)
	})

	t.Run("table entry without metadata still weighted", func(t *testing.T) {
		enriched := EnrichByName("Arlene Schnitzer Concert Hall")

		assert.Equal(t, 8, enriched.Popularity)
		assert.Zero(t, enriched.Capacity)
	})

	t.Run("upstream fields pass through", func(t *testing.T) {
		enriched := Enrich(inventory.RawVenue{
			ID:    "tm_v2",
			Name:  "Doug Fir Lounge",
			City:  "Portland",
			State: "OR",
		})

		assert.Equal(t, "tm_v2", enriched.ID)
		assert.Equal(t, "Doug Fir Lounge", enriched.Name)
		assert.Equal(t, "OR", enriched.State)
		assert.Equal(t, 6, enriched.Popularity)
	})
}

func TestPopularity(t *testing.T) {
	assert.Equal(t, 9, Popularity("Providence Park"))
	assert.Equal(t, 7, Popularity("Keller Auditorium"))
	assert.Equal(t, DefaultPopularity, Popularity("Backyard Stage"))
}
