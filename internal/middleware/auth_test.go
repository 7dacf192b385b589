// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
)

func authedRequest(userID, tier string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/deals/hot", nil)

	ctx := req.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, UserIDKey, userID)
		ctx = context.WithValue(ctx, UserTierKey, tier)
	}
	return req.WithContext(ctx)
}

func TestRequireTier(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := RequireTier(core.TierPro)(okHandler)

	t.Run("unauthenticated gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, authedRequest("", ""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("insufficient tier gets 402 with detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, authedRequest("u1", core.TierFree))

		require.Equal(t, http.StatusPaymentRequired, rec.Code)

		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code   string            `json:"code"`
				Detail map[string]string `json:"detail"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

		assert.False(t, body.Success)
		assert.Equal(t, "INSUFFICIENT_TIER", body.Error.Code)
		assert.Equal(t, core.TierFree, body.Error.Detail["current_tier"])
		assert.Equal(t, core.TierPro, body.Error.Detail["required_tier"])
	})

	t.Run("boundary tier passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, authedRequest("u1", core.TierPro))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("higher tier passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, authedRequest("u1", core.TierEnterprise))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestExtractToken(t *testing.T) {
	mk := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return req
	}

	assert.Equal(t, "abc", ExtractToken(mk("Bearer abc")))
	assert.Equal(t, "abc", ExtractToken(mk("bearer abc")))
	assert.Empty(t, ExtractToken(mk("")))
	assert.Empty(t, ExtractToken(mk("Basic abc")))
	assert.Empty(t, ExtractToken(mk("Bearer")))
}
