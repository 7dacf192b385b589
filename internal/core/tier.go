// AngelaMos | 2026
// tier.go

package core

const (
	TierFree       = "free"
	TierPro        = "pro"
	TierPremium    = "premium"
	TierEnterprise = "enterprise"
)

// tierOrder is the fixed total order of subscription tiers. Comparison is
// always by ordinal index in this sequence, never by string comparison.
var tierOrder = []string{TierFree, TierPro, TierPremium, TierEnterprise}

// TierIndex returns the ordinal of a tier, or -1 for an unknown tier.
func TierIndex(tier string) int {
	for i, t := range tierOrder {
		if t == tier {
			return i
		}
	}
	return -1
}

func IsValidTier(tier string) bool {
	return TierIndex(tier) >= 0
}

// Tiers returns the tier names in ascending order of privilege.
func Tiers() []string {
	out := make([]string, len(tierOrder))
	copy(out, tierOrder)
	return out
}

// RequireTier checks that userTier meets minimumTier. The boundary is
// inclusive: a pro user passes a pro requirement. An unknown user tier is
// treated as free; an unknown minimum never passes.
func RequireTier(userTier, minimumTier string) error {
	userIdx := TierIndex(userTier)
	if userIdx < 0 {
		userIdx = 0
		userTier = TierFree
	}

	requiredIdx := TierIndex(minimumTier)
	if requiredIdx < 0 || userIdx < requiredIdx {
		return InsufficientTierError(userTier, minimumTier)
	}

	return nil
}
