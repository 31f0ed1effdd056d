package mocks

import (
	"context"
	"time"

	"github.com/accountpulse/scoring-server/internal/repository/models"
)

// MockSignalRepository is a func-field mock of the SignalRepository interface
// for testing the scoring services. Unset funcs behave as an empty data store
// (zero rows, no error) so tests only stub the signals they care about;
// sql.ErrNoRows is still returned for the point lookups that promise it.
type MockSignalRepository struct {
	GetAccountFunc           func(ctx context.Context, orgID, accountID string) (models.Account, error)
	ListAccountsFunc         func(ctx context.Context, orgID string) ([]models.Account, error)
	EngagementsSinceFunc     func(ctx context.Context, orgID, accountID string, since time.Time) ([]models.Engagement, error)
	CountEngagementsFunc     func(ctx context.Context, orgID, accountID string, from, to time.Time, completedOnly bool) (int, error)
	NPSResponsesSinceFunc    func(ctx context.Context, orgID, accountID string, since time.Time, limit int) ([]models.NPSResponse, error)
	SupportMetricsSinceFunc  func(ctx context.Context, orgID, accountID string, since time.Time) ([]models.SupportMetric, error)
	LatestGrowthSnapshotFunc func(ctx context.Context, orgID, accountID string, before time.Time) (models.GrowthSnapshot, error)
}

func (m *MockSignalRepository) GetAccount(ctx context.Context, orgID, accountID string) (models.Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, orgID, accountID)
	}
	return models.Account{}, sqlErrNoRows()
}

func (m *MockSignalRepository) ListAccounts(ctx context.Context, orgID string) ([]models.Account, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx, orgID)
	}
	return nil, nil
}

func (m *MockSignalRepository) EngagementsSince(ctx context.Context, orgID, accountID string, since time.Time) ([]models.Engagement, error) {
	if m.EngagementsSinceFunc != nil {
		return m.EngagementsSinceFunc(ctx, orgID, accountID, since)
	}
	return nil, nil
}

func (m *MockSignalRepository) CountEngagements(ctx context.Context, orgID, accountID string, from, to time.Time, completedOnly bool) (int, error) {
	if m.CountEngagementsFunc != nil {
		return m.CountEngagementsFunc(ctx, orgID, accountID, from, to, completedOnly)
	}
	return 0, nil
}

func (m *MockSignalRepository) NPSResponsesSince(ctx context.Context, orgID, accountID string, since time.Time, limit int) ([]models.NPSResponse, error) {
	if m.NPSResponsesSinceFunc != nil {
		return m.NPSResponsesSinceFunc(ctx, orgID, accountID, since, limit)
	}
	return nil, nil
}

func (m *MockSignalRepository) SupportMetricsSince(ctx context.Context, orgID, accountID string, since time.Time) ([]models.SupportMetric, error) {
	if m.SupportMetricsSinceFunc != nil {
		return m.SupportMetricsSinceFunc(ctx, orgID, accountID, since)
	}
	return nil, nil
}

func (m *MockSignalRepository) LatestGrowthSnapshot(ctx context.Context, orgID, accountID string, before time.Time) (models.GrowthSnapshot, error) {
	if m.LatestGrowthSnapshotFunc != nil {
		return m.LatestGrowthSnapshotFunc(ctx, orgID, accountID, before)
	}
	return models.GrowthSnapshot{}, sqlErrNoRows()
}
