package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCacheGet(t *testing.T) {
	ctx := context.Background()

	t.Run("caches the loaded value", func(t *testing.T) {
		loads := 0
		cache := NewCache(func(ctx context.Context, orgID string) (HealthSettings, error) {
			loads++
			return HealthSettings{Template: TemplateCustom, EngagementWeight: 40}, nil
		}, DefaultHealthSettings, zap.NewNop())

		first := cache.Get(ctx, "org-1")
		second := cache.Get(ctx, "org-1")

		assert.Equal(t, 40, first.EngagementWeight)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, loads)
	})

	t.Run("entries are per organization", func(t *testing.T) {
		cache := NewCache(func(ctx context.Context, orgID string) (HealthSettings, error) {
			cfg := DefaultHealthSettings()
			if orgID == "org-b" {
				cfg.EngagementWeight = 99
			}
			return cfg, nil
		}, DefaultHealthSettings, zap.NewNop())

		assert.Equal(t, 25, cache.Get(ctx, "org-a").EngagementWeight)
		assert.Equal(t, 99, cache.Get(ctx, "org-b").EngagementWeight)
	})

	t.Run("reloads after the ttl expires", func(t *testing.T) {
		clock := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		loads := 0
		cache := NewCache(func(ctx context.Context, orgID string) (HealthSettings, error) {
			loads++
			return DefaultHealthSettings(), nil
		}, DefaultHealthSettings, zap.NewNop(),
			WithClock[HealthSettings](func() time.Time { return clock }))

		cache.Get(ctx, "org-1")
		clock = clock.Add(4 * time.Minute)
		cache.Get(ctx, "org-1")
		assert.Equal(t, 1, loads)

		clock = clock.Add(2 * time.Minute)
		cache.Get(ctx, "org-1")
		assert.Equal(t, 2, loads)
	})

	t.Run("loader failure falls back to defaults", func(t *testing.T) {
		cache := NewCache(func(ctx context.Context, orgID string) (HealthSettings, error) {
			return HealthSettings{}, errors.New("db down")
		}, DefaultHealthSettings, zap.NewNop())

		got := cache.Get(ctx, "org-1")

		assert.Equal(t, DefaultHealthSettings(), got)
	})

	t.Run("clear forces a reload", func(t *testing.T) {
		loads := 0
		cache := NewCache(func(ctx context.Context, orgID string) (ChurnSettings, error) {
			loads++
			cfg := DefaultChurnSettings()
			cfg.ContractWeight = 30 + loads
			return cfg, nil
		}, DefaultChurnSettings, zap.NewNop())

		first := cache.Get(ctx, "org-1")
		cache.Clear("org-1")
		second := cache.Get(ctx, "org-1")

		assert.Equal(t, 31, first.ContractWeight)
		assert.Equal(t, 32, second.ContractWeight)
	})

	t.Run("nil loader panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewCache[HealthSettings](nil, DefaultHealthSettings, zap.NewNop())
		})
	})
}
