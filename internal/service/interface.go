package service

import (
	"context"
	"time"

	"github.com/accountpulse/scoring-server/internal/repository/models"
	"github.com/accountpulse/scoring-server/internal/settings"
)

// SignalRepository defines the read operations the scoring engines need from
// the data store.
type SignalRepository interface {
	GetAccount(ctx context.Context, orgID, accountID string) (models.Account, error)
	ListAccounts(ctx context.Context, orgID string) ([]models.Account, error)
	EngagementsSince(ctx context.Context, orgID, accountID string, since time.Time) ([]models.Engagement, error)
	CountEngagements(ctx context.Context, orgID, accountID string, from, to time.Time, completedOnly bool) (int, error)
	NPSResponsesSince(ctx context.Context, orgID, accountID string, since time.Time, limit int) ([]models.NPSResponse, error)
	SupportMetricsSince(ctx context.Context, orgID, accountID string, since time.Time) ([]models.SupportMetric, error)
	LatestGrowthSnapshot(ctx context.Context, orgID, accountID string, before time.Time) (models.GrowthSnapshot, error)
}

// HealthSettingsSource supplies the cached health-score configuration.
type HealthSettingsSource interface {
	Get(ctx context.Context, orgID string) settings.HealthSettings
}

// ChurnSettingsSource supplies the cached churn-risk configuration.
type ChurnSettingsSource interface {
	Get(ctx context.Context, orgID string) settings.ChurnSettings
}
