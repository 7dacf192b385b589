// AngelaMos | 2026
// service.go

package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mazzlabs/ripcity-dispatch/internal/config"
	"github.com/mazzlabs/ripcity-dispatch/internal/deals"
	"github.com/mazzlabs/ripcity-dispatch/internal/user"
)

// Candidate pairs a user with the deal being considered for an alert.
type Candidate struct {
	UserID      string
	Tier        string
	Preferences user.Preferences
	Deal        deals.ScoredDeal
	AlertType   string
}

// Outcome reports what the dispatcher decided for one candidate.
type Outcome struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// Decision reasons surfaced in dispatch outcomes.
const (
	reasonPreferenceMiss = "preference_mismatch"
	reasonDailyLimit     = "daily_limit_reached"
	reasonDuplicate      = "already_alerted"
	reasonSent           = ""
)

// Dispatcher decides whether a scored deal becomes an alert for a user.
// A deal goes out only when it matches the user's preferences, the user
// has daily quota left on their tier, and the (user, deal) pair has never
// been alerted before. The dedup check is last so a preference miss or an
// exhausted quota never burns a ledger row.
type Dispatcher struct {
	repo        Repository
	dailyLimits map[string]int
	now         func() time.Time
	logger      *slog.Logger
}

func NewDispatcher(
	repo Repository,
	cfg config.AlertsConfig,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:        repo,
		dailyLimits: cfg.DailyLimits,
		now:         time.Now,
		logger:      logger,
	}
}

// RecordIfNew writes the (user, deal) pair to the ledger, reporting
// whether this call created it. Exposed for callers that made the send
// decision elsewhere and only need the dedup guarantee.
func (d *Dispatcher) RecordIfNew(
	ctx context.Context,
	userID, dealID, alertType string,
) (bool, error) {
	return d.repo.RecordIfNew(ctx, userID, dealID, alertType, d.now().UTC())
}

// DispatchDeal runs one candidate through the decision chain. The sent
// flag in the outcome is true only when this call recorded the pair.
func (d *Dispatcher) DispatchDeal(
	ctx context.Context,
	c Candidate,
) (Outcome, error) {
	if !matchesPreferences(c.Preferences, c.Deal) {
		return Outcome{Sent: false, Reason: reasonPreferenceMiss}, nil
	}

	now := d.now().UTC()

	allowed, err := d.withinDailyLimit(ctx, c.UserID, c.Tier, now)
	if err != nil {
		return Outcome{}, err
	}
	if !allowed {
		return Outcome{Sent: false, Reason: reasonDailyLimit}, nil
	}

	alertType := c.AlertType
	if alertType == "" {
		alertType = TypeDealAlert
	}

	created, err := d.repo.RecordIfNew(
		ctx,
		c.UserID,
		c.Deal.Listing.ID,
		alertType,
		now,
	)
	if err != nil {
		return Outcome{}, fmt.Errorf("dispatch alert: %w", err)
	}
	if !created {
		return Outcome{Sent: false, Reason: reasonDuplicate}, nil
	}

	d.logger.Info("alert dispatched",
		"user_id", c.UserID,
		"deal_id", c.Deal.Listing.ID,
		"alert_type", alertType,
		"score", c.Deal.Score,
	)

	return Outcome{Sent: true, Reason: reasonSent}, nil
}

// EvaluationResult pairs a deal with the dispatch decision made for it.
type EvaluationResult struct {
	DealID  string  `json:"deal_id"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Outcome Outcome `json:"outcome"`
}

// EvaluateUser runs a ranked feed through the decision chain for one
// user. Deals are considered best-first, so the daily quota goes to the
// strongest deals in the feed.
func (d *Dispatcher) EvaluateUser(
	ctx context.Context,
	u *user.User,
	feed []deals.ScoredDeal,
) ([]EvaluationResult, error) {
	results := make([]EvaluationResult, 0, len(feed))

	for _, deal := range feed {
		outcome, err := d.DispatchDeal(ctx, Candidate{
			UserID:      u.ID,
			Tier:        u.Tier,
			Preferences: u.Preferences,
			Deal:        deal,
			AlertType:   TypeDealAlert,
		})
		if err != nil {
			return nil, err
		}

		results = append(results, EvaluationResult{
			DealID:  deal.Listing.ID,
			Name:    deal.Listing.Name,
			Score:   deal.Score,
			Outcome: outcome,
		})
	}

	return results, nil
}

// withinDailyLimit checks the tier quota against the ledger. A zero limit
// means unlimited; an unknown tier gets the free tier's quota.
func (d *Dispatcher) withinDailyLimit(
	ctx context.Context,
	userID, tier string,
	now time.Time,
) (bool, error) {
	limit, ok := d.dailyLimits[tier]
	if !ok {
		limit = d.dailyLimits["free"]
	}
	if limit <= 0 {
		return true, nil
	}

	dayStart := now.Truncate(24 * time.Hour)
	count, err := d.repo.CountSince(ctx, userID, dayStart)
	if err != nil {
		return false, fmt.Errorf("check daily limit: %w", err)
	}

	return count < limit, nil
}

// matchesPreferences applies the user's alert profile to a deal. Empty
// preference fields match everything; a set field must match.
func matchesPreferences(p user.Preferences, deal deals.ScoredDeal) bool {
	if len(p.Categories) > 0 &&
		!containsFold(p.Categories, deal.Listing.Category) {
		return false
	}

	if len(p.Venues) > 0 && !venueMatch(p.Venues, deal.Venue.Name) {
		return false
	}

	if p.MaxPrice > 0 && deal.Listing.HasPrice() &&
		deal.Listing.MinPrice > p.MaxPrice {
		return false
	}

	if p.MinSavings > 0 && deal.SavingsPercent < p.MinSavings {
		return false
	}

	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

// venueMatch is a substring check so a preference for "moda" matches
// "Moda Center" the same way venue enrichment does.
func venueMatch(wanted []string, venueName string) bool {
	lowered := strings.ToLower(venueName)
	for _, w := range wanted {
		if w == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// Service wraps the read side of the alerts surface: history and push
// subscription management for the authenticated user.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) History(
	ctx context.Context,
	userID string,
	limit int,
) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.HistoryForUser(ctx, userID, limit)
}

func (s *Service) Subscribe(
	ctx context.Context,
	userID string,
	req SubscribeRequest,
) (*PushSubscription, error) {
	sub := &PushSubscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
	}

	if err := s.repo.SaveSubscription(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("push subscription registered", "user_id", userID)
	return sub, nil
}

func (s *Service) Unsubscribe(
	ctx context.Context,
	userID, endpoint string,
) error {
	return s.repo.DeleteSubscription(ctx, userID, endpoint)
}

func (s *Service) Subscriptions(
	ctx context.Context,
	userID string,
) ([]PushSubscription, error) {
	return s.repo.SubscriptionsForUser(ctx, userID)
}
