// AngelaMos | 2026
// handler.go

package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
	"github.com/mazzlabs/ripcity-dispatch/internal/deals"
	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
	"github.com/mazzlabs/ripcity-dispatch/internal/middleware"
	"github.com/mazzlabs/ripcity-dispatch/internal/user"
)

// DealFeed supplies the ranked feed the evaluate endpoint runs the
// user's preferences against.
type DealFeed interface {
	GetDeals(
		ctx context.Context,
		filters inventory.EventFilters,
	) ([]deals.ScoredDeal, error)
}

// UserDirectory resolves the authenticated user's tier and preferences.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type Handler struct {
	service    *Service
	dispatcher *Dispatcher
	feed       DealFeed
	users      UserDirectory
	validator  *validator.Validate
}

func NewHandler(
	service *Service,
	dispatcher *Dispatcher,
	feed DealFeed,
	users UserDirectory,
) *Handler {
	return &Handler{
		service:    service,
		dispatcher: dispatcher,
		feed:       feed,
		users:      users,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the alerts surface. Everything here is about the
// authenticated user; push subscription management additionally sits
// behind a tier gate supplied by the composition root.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	rateLimit func(http.Handler) http.Handler,
	alertsGate func(http.Handler) http.Handler,
	pushGate func(http.Handler) http.Handler,
) {
	r.Route("/alerts", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(rateLimit)
		r.Use(alertsGate)

		r.Get("/history", h.GetHistory)
		r.Post("/evaluate", h.Evaluate)

		r.Group(func(r chi.Router) {
			r.Use(pushGate)
			r.Get("/subscriptions", h.ListSubscriptions)
			r.Post("/subscriptions", h.Subscribe)
			r.Delete("/subscriptions", h.Unsubscribe)
		})
	})
}

// Evaluate runs the current ranked feed through the user's alert
// preferences and records any new matches in the dedup ledger. Calling
// it twice in a row reports the second batch as already alerted.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	feed, err := h.feed.GetDeals(r.Context(), inventory.EventFilters{})
	if err != nil {
		if errors.Is(err, core.ErrUpstreamUnavailable) {
			core.JSONError(w, core.UpstreamUnavailableError("inventory"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	results, err := h.dispatcher.EvaluateUser(r.Context(), u, feed)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToEvaluateResponse(results))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			core.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToHistoryResponse(entries))
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	subs, err := h.service.Subscriptions(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	resp := make([]SubscriptionResponse, 0, len(subs))
	for i := range subs {
		resp = append(resp, ToSubscriptionResponse(&subs[i]))
	}

	core.OK(w, resp)
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.Subscribe(r.Context(), userID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToSubscriptionResponse(sub))
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.Unsubscribe(r.Context(), userID, req.Endpoint)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "subscription")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
