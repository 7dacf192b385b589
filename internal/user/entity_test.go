// AngelaMos | 2026
// entity_test.go

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesScan(t *testing.T) {
	t.Run("null column yields empty profile", func(t *testing.T) {
		p := Preferences{Categories: []string{"stale"}}
		require.NoError(t, p.Scan(nil))

		assert.Empty(t, p.Categories)
		assert.Zero(t, p.MaxPrice)
	})

	t.Run("scans jsonb bytes", func(t *testing.T) {
		var p Preferences
		raw := []byte(`{"categories":["sports"],"max_price":80,"alert_methods":["email","push"]}`)
		require.NoError(t, p.Scan(raw))

		assert.Equal(t, []string{"sports"}, p.Categories)
		assert.Equal(t, 80.0, p.MaxPrice)
		assert.True(t, p.WantsMethod("push"))
		assert.False(t, p.WantsMethod("sms"))
	})

	t.Run("scans string source", func(t *testing.T) {
		var p Preferences
		require.NoError(t, p.Scan(`{"venues":["moda"]}`))
		assert.Equal(t, []string{"moda"}, p.Venues)
	})

	t.Run("rejects unsupported source type", func(t *testing.T) {
		var p Preferences
		assert.Error(t, p.Scan(42))
	})

	t.Run("value survives a round trip", func(t *testing.T) {
		in := Preferences{
			Categories: []string{"music"},
			MinSavings: 25,
		}
		v, err := in.Value()
		require.NoError(t, err)

		var out Preferences
		require.NoError(t, out.Scan(v))
		assert.Equal(t, in, out)
	})
}

func TestListUsersParamsNormalize(t *testing.T) {
	t.Run("zero values take defaults", func(t *testing.T) {
		p := ListUsersParams{}
		p.Normalize()

		assert.Equal(t, 1, p.Page)
		assert.Equal(t, defaultPageSize, p.PageSize)
		assert.Zero(t, p.Offset())
	})

	t.Run("oversized page size is clamped", func(t *testing.T) {
		p := ListUsersParams{Page: 3, PageSize: 10_000}
		p.Normalize()

		assert.Equal(t, maxPageSize, p.PageSize)
		assert.Equal(t, 2*maxPageSize, p.Offset())
	})

	t.Run("negative inputs are clamped", func(t *testing.T) {
		p := ListUsersParams{Page: -4, PageSize: -1}
		p.Normalize()

		assert.Equal(t, 1, p.Page)
		assert.Equal(t, defaultPageSize, p.PageSize)
	})
}
