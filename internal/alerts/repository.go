// AngelaMos | 2026
// repository.go

package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
)

type Repository interface {
	// RecordIfNew inserts a ledger row for (userID, dealID) and reports
	// whether this call created it. A false return means the pair was
	// already recorded; concurrent callers racing on the same pair see
	// exactly one true.
	RecordIfNew(
		ctx context.Context,
		userID, dealID, alertType string,
		sentAt time.Time,
	) (bool, error)

	HistoryForUser(
		ctx context.Context,
		userID string,
		limit int,
	) ([]HistoryEntry, error)

	CountSince(
		ctx context.Context,
		userID string,
		since time.Time,
	) (int, error)

	SaveSubscription(ctx context.Context, sub *PushSubscription) error
	DeleteSubscription(ctx context.Context, userID, endpoint string) error
	SubscriptionsForUser(
		ctx context.Context,
		userID string,
	) ([]PushSubscription, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// The compound uniqueness lives in the database. ON CONFLICT DO NOTHING
// makes the insert race-safe without an explicit lock: exactly one of
// any set of concurrent inserts for a pair affects a row.
func (r *repository) RecordIfNew(
	ctx context.Context,
	userID, dealID, alertType string,
	sentAt time.Time,
) (bool, error) {
	query := `
		INSERT INTO alert_history (id, user_id, deal_id, alert_type, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, deal_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		userID,
		dealID,
		alertType,
		sentAt,
	)
	if err != nil {
		return false, fmt.Errorf("record alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record alert: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) HistoryForUser(
	ctx context.Context,
	userID string,
	limit int,
) ([]HistoryEntry, error) {
	query := `
		SELECT id, user_id, deal_id, alert_type, sent_at
		FROM alert_history
		WHERE user_id = $1
		ORDER BY sent_at DESC
		LIMIT $2`

	var entries []HistoryEntry
	err := r.db.SelectContext(ctx, &entries, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list alert history: %w", err)
	}

	return entries, nil
}

func (r *repository) CountSince(
	ctx context.Context,
	userID string,
	since time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM alert_history
		WHERE user_id = $1 AND sent_at >= $2`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, since)
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}

	return count, nil
}

func (r *repository) SaveSubscription(
	ctx context.Context,
	sub *PushSubscription,
) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh_key, auth_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, endpoint) DO UPDATE
		SET p256dh_key = EXCLUDED.p256dh_key, auth_key = EXCLUDED.auth_key
		RETURNING created_at`

	err := r.db.GetContext(ctx, &sub.CreatedAt, query,
		sub.ID,
		sub.UserID,
		sub.Endpoint,
		sub.P256dhKey,
		sub.AuthKey,
	)
	if err != nil {
		return fmt.Errorf("save push subscription: %w", err)
	}

	return nil
}

func (r *repository) DeleteSubscription(
	ctx context.Context,
	userID, endpoint string,
) error {
	query := `
		DELETE FROM push_subscriptions
		WHERE user_id = $1 AND endpoint = $2`

	result, err := r.db.ExecContext(ctx, query, userID, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete push subscription: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SubscriptionsForUser(
	ctx context.Context,
	userID string,
) ([]PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh_key, auth_key, created_at
		FROM push_subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var subs []PushSubscription
	err := r.db.SelectContext(ctx, &subs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}

	return subs, nil
}
