// AngelaMos | 2026
// handler.go

package venues

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
)

type Handler struct {
	source inventory.Source
}

func NewHandler(source inventory.Source) *Handler {
	return &Handler{source: source}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/venues", h.ListVenues)
}

type VenueListResponse struct {
	Venues []EnrichedVenue `json:"venues"`
	Source string          `json:"source"`
}

// ListVenues returns the region's venues enriched with local metadata,
// sorted by popularity descending (name ascending on ties, so the order
// is stable).
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("city")

	raw, err := h.source.FetchVenues(r.Context(), region)
	if err != nil {
		if errors.Is(err, core.ErrUpstreamUnavailable) {
			core.JSONError(w, core.UpstreamUnavailableError("venue inventory"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	enriched := make([]EnrichedVenue, 0, len(raw))
	for _, v := range raw {
		enriched = append(enriched, Enrich(v))
	}

	sort.Slice(enriched, func(i, j int) bool {
		if enriched[i].Popularity != enriched[j].Popularity {
			return enriched[i].Popularity > enriched[j].Popularity
		}
		return enriched[i].Name < enriched[j].Name
	})

	core.OK(w, VenueListResponse{
		Venues: enriched,
		Source: h.source.Name(),
	})
}
