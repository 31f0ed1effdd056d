package mocks

import (
	"context"
	"database/sql"

	"github.com/accountpulse/scoring-server/internal/settings"
)

func sqlErrNoRows() error { return sql.ErrNoRows }

// MockHealthSettingsSource returns fixed health-score weights; defaults when
// no GetFunc is set.
type MockHealthSettingsSource struct {
	GetFunc func(ctx context.Context, orgID string) settings.HealthSettings
}

func (m *MockHealthSettingsSource) Get(ctx context.Context, orgID string) settings.HealthSettings {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, orgID)
	}
	return settings.DefaultHealthSettings()
}

// MockChurnSettingsSource returns fixed churn-risk weights; defaults when no
// GetFunc is set.
type MockChurnSettingsSource struct {
	GetFunc func(ctx context.Context, orgID string) settings.ChurnSettings
}

func (m *MockChurnSettingsSource) Get(ctx context.Context, orgID string) settings.ChurnSettings {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, orgID)
	}
	return settings.DefaultChurnSettings()
}
