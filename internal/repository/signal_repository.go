package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/accountpulse/scoring-server/internal/repository/models"
	"github.com/accountpulse/scoring-server/pkg/database"
)

// SignalRepository reads the raw scoring signals (accounts, engagements, NPS
// responses, support metrics, growth snapshots) for the scoring engines. All
// queries are filtered by organization id.
type SignalRepository struct {
	db     *sql.DB
	driver string
}

func NewSignalRepository(db *sql.DB, driver string) *SignalRepository {
	return &SignalRepository{db: db, driver: driver}
}

func (r *SignalRepository) rebind(query string) string {
	return database.Rebind(r.driver, query)
}

const accountColumns = `
	id, organization_id, name, tracking_method,
	arr, previous_arr, mrr, previous_mrr, seat_count, previous_seat_count,
	created_at`

func scanAccount(row interface{ Scan(...any) error }, a *models.Account) error {
	return row.Scan(
		&a.ID, &a.OrganizationID, &a.Name, &a.TrackingMethod,
		&a.ARR, &a.PreviousARR, &a.MRR, &a.PreviousMRR, &a.SeatCount, &a.PreviousSeatCount,
		&a.CreatedAt,
	)
}

// GetAccount fetches one account row; sql.ErrNoRows when absent.
func (r *SignalRepository) GetAccount(ctx context.Context, orgID, accountID string) (models.Account, error) {
	query := r.rebind(`
		SELECT` + accountColumns + `
		FROM accounts
		WHERE organization_id = ? AND id = ?
	`)

	var a models.Account
	if err := scanAccount(r.db.QueryRowContext(ctx, query, orgID, accountID), &a); err != nil {
		if err == sql.ErrNoRows {
			return models.Account{}, err
		}
		return models.Account{}, fmt.Errorf("query GetAccount: %w", err)
	}
	return a, nil
}

// ListAccounts returns every account in the organization, oldest first.
func (r *SignalRepository) ListAccounts(ctx context.Context, orgID string) ([]models.Account, error) {
	query := r.rebind(`
		SELECT` + accountColumns + `
		FROM accounts
		WHERE organization_id = ?
		ORDER BY created_at
	`)

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("query ListAccounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, fmt.Errorf("scan ListAccounts row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListAccounts: %w", err)
	}
	return accounts, nil
}

// EngagementsSince returns an account's interactions on or after the cutoff,
// most recent first.
func (r *SignalRepository) EngagementsSince(ctx context.Context, orgID, accountID string, since time.Time) ([]models.Engagement, error) {
	query := r.rebind(`
		SELECT id, account_id, type, status, occurred_at
		FROM engagements
		WHERE organization_id = ? AND account_id = ? AND occurred_at >= ?
		ORDER BY occurred_at DESC
	`)

	rows, err := r.db.QueryContext(ctx, query, orgID, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("query EngagementsSince: %w", err)
	}
	defer rows.Close()

	var engagements []models.Engagement
	for rows.Next() {
		var e models.Engagement
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Status, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan EngagementsSince row: %w", err)
		}
		engagements = append(engagements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate EngagementsSince: %w", err)
	}
	return engagements, nil
}

// CountEngagements counts interactions in [from, to). With completedOnly set
// it counts only interactions whose status is completed.
func (r *SignalRepository) CountEngagements(ctx context.Context, orgID, accountID string, from, to time.Time, completedOnly bool) (int, error) {
	query := `
		SELECT COUNT(id)
		FROM engagements
		WHERE organization_id = ? AND account_id = ? AND occurred_at >= ? AND occurred_at < ?
	`
	args := []any{orgID, accountID, from, to}
	if completedOnly {
		query += ` AND status = ?`
		args = append(args, "completed")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, r.rebind(query), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("query CountEngagements: %w", err)
	}
	return count, nil
}

// NPSResponsesSince returns up to limit survey responses on or after the
// cutoff, most recent first.
func (r *SignalRepository) NPSResponsesSince(ctx context.Context, orgID, accountID string, since time.Time, limit int) ([]models.NPSResponse, error) {
	query := r.rebind(`
		SELECT id, account_id, score, responded_at
		FROM nps_responses
		WHERE organization_id = ? AND account_id = ? AND responded_at >= ?
		ORDER BY responded_at DESC
		LIMIT ?
	`)

	rows, err := r.db.QueryContext(ctx, query, orgID, accountID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query NPSResponsesSince: %w", err)
	}
	defer rows.Close()

	var responses []models.NPSResponse
	for rows.Next() {
		var n models.NPSResponse
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Score, &n.RespondedAt); err != nil {
			return nil, fmt.Errorf("scan NPSResponsesSince row: %w", err)
		}
		responses = append(responses, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate NPSResponsesSince: %w", err)
	}
	return responses, nil
}

// SupportMetricsSince returns per-provider support rollups with a reporting
// period starting on or after the cutoff.
func (r *SignalRepository) SupportMetricsSince(ctx context.Context, orgID, accountID string, since time.Time) ([]models.SupportMetric, error) {
	query := r.rebind(`
		SELECT id, account_id, provider, ticket_count, resolved_count, escalated_count,
		       avg_resolution_hours, volume_trend, period_start
		FROM support_metrics
		WHERE organization_id = ? AND account_id = ? AND period_start >= ?
		ORDER BY period_start DESC
	`)

	rows, err := r.db.QueryContext(ctx, query, orgID, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("query SupportMetricsSince: %w", err)
	}
	defer rows.Close()

	var metrics []models.SupportMetric
	for rows.Next() {
		var m models.SupportMetric
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Provider, &m.TicketCount, &m.ResolvedCount,
			&m.EscalatedCount, &m.AvgResolutionHours, &m.VolumeTrend, &m.PeriodStart); err != nil {
			return nil, fmt.Errorf("scan SupportMetricsSince row: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate SupportMetricsSince: %w", err)
	}
	return metrics, nil
}

// LatestGrowthSnapshot returns the most recent snapshot captured at or before
// the cutoff; sql.ErrNoRows when the account has no history yet.
func (r *SignalRepository) LatestGrowthSnapshot(ctx context.Context, orgID, accountID string, before time.Time) (models.GrowthSnapshot, error) {
	query := r.rebind(`
		SELECT id, account_id, arr, mrr, seat_count, captured_at
		FROM growth_snapshots
		WHERE organization_id = ? AND account_id = ? AND captured_at <= ?
		ORDER BY captured_at DESC
		LIMIT 1
	`)

	var s models.GrowthSnapshot
	err := r.db.QueryRowContext(ctx, query, orgID, accountID, before).
		Scan(&s.ID, &s.AccountID, &s.ARR, &s.MRR, &s.SeatCount, &s.CapturedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.GrowthSnapshot{}, err
		}
		return models.GrowthSnapshot{}, fmt.Errorf("query LatestGrowthSnapshot: %w", err)
	}
	return s, nil
}
