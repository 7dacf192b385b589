// AngelaMos | 2026
// enricher.go

package venues

import (
	"strings"

	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
)

// EnrichedVenue is an upstream venue merged with the local popularity
// table. Derived per request, never persisted.
type EnrichedVenue struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	Popularity int      `json:"popularity"`
	Capacity   int      `json:"capacity,omitempty"`
	Type       string   `json:"type,omitempty"`
	Address    string   `json:"address,omitempty"`
	Parking    string   `json:"parking,omitempty"`
	Tips       string   `json:"tips,omitempty"`
	Teams      []string `json:"teams,omitempty"`
}

// Enrich merges a raw venue with the popularity table. Pure and total:
// unknown venues come back with the default popularity and no metadata.
func Enrich(raw inventory.RawVenue) EnrichedVenue {
	enriched := EnrichedVenue{
		ID:         raw.ID,
		Name:       raw.Name,
		City:       raw.City,
		State:      raw.State,
		Popularity: DefaultPopularity,
	}

	name := strings.ToLower(raw.Name)
	for _, entry := range popularityTable {
		if !strings.Contains(name, entry.fragment) {
			continue
		}

		enriched.Popularity = entry.popularity
		if entry.meta != nil {
			enriched.Capacity = entry.meta.Capacity
			enriched.Type = entry.meta.Type
			enriched.Address = entry.meta.Address
			enriched.Parking = entry.meta.Parking
			enriched.Tips = entry.meta.Tips
			enriched.Teams = entry.meta.Teams
		}
		break
	}

	return enriched
}

// EnrichByName enriches a venue known only by name, as when a listing
// carries just the venue string.
func EnrichByName(name string) EnrichedVenue {
	return Enrich(inventory.RawVenue{Name: name})
}

// Popularity returns the table weight for a venue name.
func Popularity(name string) int {
	lower := strings.ToLower(name)
	for _, entry := range popularityTable {
		if strings.Contains(lower, entry.fragment) {
			return entry.popularity
		}
	}
	return DefaultPopularity
}
