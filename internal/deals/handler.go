// AngelaMos | 2026
// handler.go

package deals

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the deals endpoints. The browse feeds are
// public but run behind optional auth so signed-in users get their
// tier's rate limit; the hot feed additionally requires authentication
// plus a tier gate supplied by the composition root.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
	rateLimit func(http.Handler) http.Handler,
	authenticate func(http.Handler) http.Handler,
	hotDealsGate func(http.Handler) http.Handler,
) {
	r.Route("/deals", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Use(rateLimit)

		r.Get("/", h.ListDeals)
		r.Get("/home-team", h.HomeTeamDeals)
		r.Get("/top-venues", h.TopVenueDeals)
		r.With(authenticate, hotDealsGate).Get("/hot", h.HotDeals)
		r.Get("/{id}", h.GetDeal)
	})
}

func (h *Handler) ListDeals(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, h.service.GetDeals)
}

func (h *Handler) HotDeals(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, h.service.HotDeals)
}

func (h *Handler) HomeTeamDeals(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, h.service.HomeTeamDeals)
}

func (h *Handler) TopVenueDeals(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, h.service.TopVenueDeals)
}

func (h *Handler) GetDeal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		core.BadRequest(w, "deal id is required")
		return
	}

	deal, err := h.service.GetDeal(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	core.OK(w, ToDealResponse(deal))
}

type feedFunc func(
	ctx context.Context,
	filters inventory.EventFilters,
) ([]ScoredDeal, error)

func (h *Handler) serveFeed(
	w http.ResponseWriter,
	r *http.Request,
	feed feedFunc,
) {
	filters, err := parseFilters(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	deals, err := feed(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}

	core.OK(w, ToDealListResponse(deals, h.service.SourceName()))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUpstreamUnavailable):
		h.logger.Warn("upstream inventory unavailable",
			"source", h.service.SourceName(),
			"error", err,
		)
		core.JSONError(
			w,
			core.UpstreamUnavailableError(h.service.SourceName()),
		)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "deal")
	default:
		core.InternalServerError(w, err)
	}
}

func parseFilters(r *http.Request) (inventory.EventFilters, error) {
	q := r.URL.Query()

	filters := inventory.EventFilters{
		City:     q.Get("city"),
		Category: q.Get("category"),
		Keyword:  q.Get("keyword"),
	}

	var err error
	filters.MinPrice, err = parsePrice(q.Get("min_price"), "min_price")
	if err != nil {
		return inventory.EventFilters{}, err
	}
	filters.MaxPrice, err = parsePrice(q.Get("max_price"), "max_price")
	if err != nil {
		return inventory.EventFilters{}, err
	}

	if filters.MaxPrice > 0 && filters.MinPrice > filters.MaxPrice {
		return inventory.EventFilters{},
			errors.New("min_price cannot exceed max_price")
	}

	return filters, nil
}

func parsePrice(raw, name string) (float64, error) {
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, errors.New(name + " must be a non-negative number")
	}
	return v, nil
}
