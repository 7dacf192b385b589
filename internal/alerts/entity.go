// AngelaMos | 2026
// entity.go

package alerts

import (
	"time"
)

// Alert types recorded against the history ledger.
const (
	TypeDealAlert  = "deal"
	TypePriceDrop  = "price_drop"
	TypeLastMinute = "last_minute"
)

// HistoryEntry is one row of the alert dedup ledger. The pair
// (user_id, deal_id) is unique: a user is alerted about a given deal at
// most once regardless of how many pipeline runs resurface it.
type HistoryEntry struct {
	ID        string    `db:"id"         json:"id"`
	UserID    string    `db:"user_id"    json:"user_id"`
	DealID    string    `db:"deal_id"    json:"deal_id"`
	AlertType string    `db:"alert_type" json:"alert_type"`
	SentAt    time.Time `db:"sent_at"    json:"sent_at"`
}

// PushSubscription stores a browser push endpoint registered by a user.
type PushSubscription struct {
	ID        string    `db:"id"         json:"id"`
	UserID    string    `db:"user_id"    json:"user_id"`
	Endpoint  string    `db:"endpoint"   json:"endpoint"`
	P256dhKey string    `db:"p256dh_key" json:"p256dh_key"`
	AuthKey   string    `db:"auth_key"   json:"auth_key"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
