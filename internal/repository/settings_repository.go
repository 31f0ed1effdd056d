package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/accountpulse/scoring-server/internal/repository/models"
	"github.com/accountpulse/scoring-server/pkg/database"
)

// SettingsRepository reads and writes the per-organization weight
// configuration rows.
type SettingsRepository struct {
	db     *sql.DB
	driver string
}

func NewSettingsRepository(db *sql.DB, driver string) *SettingsRepository {
	return &SettingsRepository{db: db, driver: driver}
}

func (r *SettingsRepository) rebind(query string) string {
	return database.Rebind(r.driver, query)
}

// GetHealthSettings fetches the health-score weights for an organization;
// sql.ErrNoRows when the organization has never customized them.
func (r *SettingsRepository) GetHealthSettings(ctx context.Context, orgID string) (models.HealthSettingsRow, error) {
	query := r.rebind(`
		SELECT organization_id, template, engagement_weight, satisfaction_weight,
		       activity_weight, growth_weight, support_weight
		FROM health_score_settings
		WHERE organization_id = ?
	`)

	var row models.HealthSettingsRow
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&row.OrganizationID, &row.Template, &row.EngagementWeight, &row.SatisfactionWeight,
		&row.ActivityWeight, &row.GrowthWeight, &row.SupportWeight,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.HealthSettingsRow{}, err
		}
		return models.HealthSettingsRow{}, fmt.Errorf("query GetHealthSettings: %w", err)
	}
	return row, nil
}

// UpsertHealthSettings inserts or replaces the health-score weights for an
// organization.
func (r *SettingsRepository) UpsertHealthSettings(ctx context.Context, row models.HealthSettingsRow) error {
	query := r.rebind(`
		INSERT INTO health_score_settings
			(organization_id, template, engagement_weight, satisfaction_weight,
			 activity_weight, growth_weight, support_weight)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (organization_id) DO UPDATE SET
			template = excluded.template,
			engagement_weight = excluded.engagement_weight,
			satisfaction_weight = excluded.satisfaction_weight,
			activity_weight = excluded.activity_weight,
			growth_weight = excluded.growth_weight,
			support_weight = excluded.support_weight
	`)

	_, err := r.db.ExecContext(ctx, query,
		row.OrganizationID, row.Template, row.EngagementWeight, row.SatisfactionWeight,
		row.ActivityWeight, row.GrowthWeight, row.SupportWeight,
	)
	if err != nil {
		return fmt.Errorf("exec UpsertHealthSettings: %w", err)
	}
	return nil
}

// GetChurnSettings fetches the churn-risk weights for an organization;
// sql.ErrNoRows when the organization has never customized them.
func (r *SettingsRepository) GetChurnSettings(ctx context.Context, orgID string) (models.ChurnSettingsRow, error) {
	query := r.rebind(`
		SELECT organization_id, template, contract_weight, usage_weight,
		       relationship_weight, satisfaction_weight, renewal_window_days
		FROM churn_risk_settings
		WHERE organization_id = ?
	`)

	var row models.ChurnSettingsRow
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&row.OrganizationID, &row.Template, &row.ContractWeight, &row.UsageWeight,
		&row.RelationshipWeight, &row.SatisfactionWeight, &row.RenewalWindowDays,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ChurnSettingsRow{}, err
		}
		return models.ChurnSettingsRow{}, fmt.Errorf("query GetChurnSettings: %w", err)
	}
	return row, nil
}

// UpsertChurnSettings inserts or replaces the churn-risk weights for an
// organization.
func (r *SettingsRepository) UpsertChurnSettings(ctx context.Context, row models.ChurnSettingsRow) error {
	query := r.rebind(`
		INSERT INTO churn_risk_settings
			(organization_id, template, contract_weight, usage_weight,
			 relationship_weight, satisfaction_weight, renewal_window_days)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (organization_id) DO UPDATE SET
			template = excluded.template,
			contract_weight = excluded.contract_weight,
			usage_weight = excluded.usage_weight,
			relationship_weight = excluded.relationship_weight,
			satisfaction_weight = excluded.satisfaction_weight,
			renewal_window_days = excluded.renewal_window_days
	`)

	_, err := r.db.ExecContext(ctx, query,
		row.OrganizationID, row.Template, row.ContractWeight, row.UsageWeight,
		row.RelationshipWeight, row.SatisfactionWeight, row.RenewalWindowDays,
	)
	if err != nil {
		return fmt.Errorf("exec UpsertChurnSettings: %w", err)
	}
	return nil
}
