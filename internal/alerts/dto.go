// AngelaMos | 2026
// dto.go

package alerts

import (
	"time"
)

// SubscribeRequest carries a browser push subscription in the shape the
// Push API hands it to the frontend.
type SubscribeRequest struct {
	Endpoint string        `json:"endpoint" validate:"required,url"`
	Keys     SubscribeKeys `json:"keys"     validate:"required"`
}

type SubscribeKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth"   validate:"required"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	DealID    string    `json:"deal_id"`
	AlertType string    `json:"alert_type"`
	SentAt    time.Time `json:"sent_at"`
}

type HistoryResponse struct {
	Alerts []HistoryEntryResponse `json:"alerts"`
	Count  int                    `json:"count"`
}

type SubscriptionResponse struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
}

type EvaluateResponse struct {
	Evaluated int                `json:"evaluated"`
	Sent      int                `json:"sent"`
	Results   []EvaluationResult `json:"results"`
}

func ToEvaluateResponse(results []EvaluationResult) EvaluateResponse {
	resp := EvaluateResponse{
		Evaluated: len(results),
		Results:   results,
	}
	for _, r := range results {
		if r.Outcome.Sent {
			resp.Sent++
		}
	}
	return resp
}

func ToHistoryResponse(entries []HistoryEntry) HistoryResponse {
	resp := HistoryResponse{
		Alerts: make([]HistoryEntryResponse, 0, len(entries)),
		Count:  len(entries),
	}
	for _, e := range entries {
		resp.Alerts = append(resp.Alerts, HistoryEntryResponse{
			ID:        e.ID,
			DealID:    e.DealID,
			AlertType: e.AlertType,
			SentAt:    e.SentAt,
		})
	}
	return resp
}

func ToSubscriptionResponse(sub *PushSubscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        sub.ID,
		Endpoint:  sub.Endpoint,
		CreatedAt: sub.CreatedAt,
	}
}
