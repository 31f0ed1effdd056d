package api

import (
	"context"
	"time"

	"github.com/accountpulse/scoring-server/internal/events"
	"github.com/accountpulse/scoring-server/internal/service"
	"github.com/accountpulse/scoring-server/internal/settings"
)

// Cacher defines the interface for response cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// HealthScorer computes health scores for one account or a whole
// organization.
type HealthScorer interface {
	ScoreAccount(ctx context.Context, orgID, accountID string) (service.HealthBreakdown, error)
	ScoreOrganization(ctx context.Context, orgID string) (map[string]service.HealthBreakdown, error)
}

// ChurnScorer computes churn-risk scores for one account or a whole
// organization.
type ChurnScorer interface {
	ScoreAccount(ctx context.Context, orgID, accountID string) (service.ChurnBreakdown, error)
	ScoreOrganization(ctx context.Context, orgID string) (map[string]service.ChurnBreakdown, error)
}

// SettingsAdmin is the write path for per-organization scoring weights.
type SettingsAdmin interface {
	UpdateHealthSettings(ctx context.Context, orgID string, cfg settings.HealthSettings) error
	UpdateChurnSettings(ctx context.Context, orgID string, cfg settings.ChurnSettings) error
}

// ScorePublisher emits score-computed events after a scoring pass.
type ScorePublisher interface {
	Publish(ctx context.Context, scoreEvents []events.ScoreEvent) error
}
