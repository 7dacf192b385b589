// AngelaMos | 2026
// tier_test.go

package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireTier(t *testing.T) {
	t.Run("same tier passes", func(t *testing.T) {
		assert.NoError(t, RequireTier(TierPro, TierPro))
	})

	t.Run("higher tier passes", func(t *testing.T) {
		assert.NoError(t, RequireTier(TierEnterprise, TierPro))
		assert.NoError(t, RequireTier(TierPremium, TierFree))
	})

	t.Run("lower tier rejected with payment required", func(t *testing.T) {
		err := RequireTier(TierFree, TierPro)
		require.Error(t, err)

		appErr, ok := AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusPaymentRequired, appErr.Status)

		detail, ok := appErr.Detail.(map[string]string)
		require.True(t, ok)
		assert.Equal(t, TierFree, detail["current_tier"])
		assert.Equal(t, TierPro, detail["required_tier"])
	})

	t.Run("unknown user tier treated as free", func(t *testing.T) {
		assert.Error(t, RequireTier("platinum", TierPro))
		assert.NoError(t, RequireTier("platinum", TierFree))
	})

	t.Run("unknown minimum never passes", func(t *testing.T) {
		assert.Error(t, RequireTier(TierEnterprise, "platinum"))
	})
}

func TestTierIndex(t *testing.T) {
	assert.Equal(t, 0, TierIndex(TierFree))
	assert.Equal(t, 1, TierIndex(TierPro))
	assert.Equal(t, 2, TierIndex(TierPremium))
	assert.Equal(t, 3, TierIndex(TierEnterprise))
	assert.Equal(t, -1, TierIndex("gold"))
	assert.Equal(t, -1, TierIndex(""))
}

func TestIsValidTier(t *testing.T) {
	for _, tier := range Tiers() {
		assert.True(t, IsValidTier(tier), tier)
	}
	assert.False(t, IsValidTier("admin"))
}
