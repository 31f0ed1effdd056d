package mocks

import (
	"context"
	"errors"

	"github.com/accountpulse/scoring-server/internal/events"
	"github.com/accountpulse/scoring-server/internal/service"
	"github.com/accountpulse/scoring-server/internal/settings"
)

// MockHealthScorer is a mock implementation of the HealthScorer interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockHealthScorer struct {
	ScoreAccountFunc      func(ctx context.Context, orgID, accountID string) (service.HealthBreakdown, error)
	ScoreOrganizationFunc func(ctx context.Context, orgID string) (map[string]service.HealthBreakdown, error)
}

// ScoreAccount implements the HealthScorer interface
func (m *MockHealthScorer) ScoreAccount(ctx context.Context, orgID, accountID string) (service.HealthBreakdown, error) {
	if m.ScoreAccountFunc != nil {
		return m.ScoreAccountFunc(ctx, orgID, accountID)
	}
	return service.HealthBreakdown{}, errors.New("ScoreAccountFunc not implemented")
}

// ScoreOrganization implements the HealthScorer interface
func (m *MockHealthScorer) ScoreOrganization(ctx context.Context, orgID string) (map[string]service.HealthBreakdown, error) {
	if m.ScoreOrganizationFunc != nil {
		return m.ScoreOrganizationFunc(ctx, orgID)
	}
	return nil, errors.New("ScoreOrganizationFunc not implemented")
}

// MockChurnScorer is a mock implementation of the ChurnScorer interface.
type MockChurnScorer struct {
	ScoreAccountFunc      func(ctx context.Context, orgID, accountID string) (service.ChurnBreakdown, error)
	ScoreOrganizationFunc func(ctx context.Context, orgID string) (map[string]service.ChurnBreakdown, error)
}

// ScoreAccount implements the ChurnScorer interface
func (m *MockChurnScorer) ScoreAccount(ctx context.Context, orgID, accountID string) (service.ChurnBreakdown, error) {
	if m.ScoreAccountFunc != nil {
		return m.ScoreAccountFunc(ctx, orgID, accountID)
	}
	return service.ChurnBreakdown{}, errors.New("ScoreAccountFunc not implemented")
}

// ScoreOrganization implements the ChurnScorer interface
func (m *MockChurnScorer) ScoreOrganization(ctx context.Context, orgID string) (map[string]service.ChurnBreakdown, error) {
	if m.ScoreOrganizationFunc != nil {
		return m.ScoreOrganizationFunc(ctx, orgID)
	}
	return nil, errors.New("ScoreOrganizationFunc not implemented")
}

// MockSettingsAdmin is a mock implementation of the SettingsAdmin interface.
type MockSettingsAdmin struct {
	UpdateHealthSettingsFunc func(ctx context.Context, orgID string, cfg settings.HealthSettings) error
	UpdateChurnSettingsFunc  func(ctx context.Context, orgID string, cfg settings.ChurnSettings) error
}

// UpdateHealthSettings implements the SettingsAdmin interface
func (m *MockSettingsAdmin) UpdateHealthSettings(ctx context.Context, orgID string, cfg settings.HealthSettings) error {
	if m.UpdateHealthSettingsFunc != nil {
		return m.UpdateHealthSettingsFunc(ctx, orgID, cfg)
	}
	return nil
}

// UpdateChurnSettings implements the SettingsAdmin interface
func (m *MockSettingsAdmin) UpdateChurnSettings(ctx context.Context, orgID string, cfg settings.ChurnSettings) error {
	if m.UpdateChurnSettingsFunc != nil {
		return m.UpdateChurnSettingsFunc(ctx, orgID, cfg)
	}
	return nil
}

// MockPublisher records published score events.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, scoreEvents []events.ScoreEvent) error
}

// Publish implements the ScorePublisher interface
func (m *MockPublisher) Publish(ctx context.Context, scoreEvents []events.ScoreEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, scoreEvents)
	}
	return nil
}
