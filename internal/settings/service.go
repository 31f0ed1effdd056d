package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accountpulse/scoring-server/internal/repository/models"
	"go.uber.org/zap"
)

// Repository is the persistence contract the settings layer needs.
type Repository interface {
	GetHealthSettings(ctx context.Context, orgID string) (models.HealthSettingsRow, error)
	UpsertHealthSettings(ctx context.Context, row models.HealthSettingsRow) error
	GetChurnSettings(ctx context.Context, orgID string) (models.ChurnSettingsRow, error)
	UpsertChurnSettings(ctx context.Context, row models.ChurnSettingsRow) error
}

// Service owns the cached read path used by the scoring engines and the
// write path used by the admin API. Writes evict the organization's cache
// entry so the next scoring pass sees fresh weights.
type Service struct {
	repo   Repository
	health *Cache[HealthSettings]
	churn  *Cache[ChurnSettings]
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if repo == nil {
		panic("repo must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{repo: repo, logger: logger.Named("settings")}

	s.health = NewCache(func(ctx context.Context, orgID string) (HealthSettings, error) {
		row, err := repo.GetHealthSettings(ctx, orgID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return DefaultHealthSettings(), nil
			}
			return HealthSettings{}, err
		}
		return healthFromRow(row), nil
	}, DefaultHealthSettings, s.logger)

	s.churn = NewCache(func(ctx context.Context, orgID string) (ChurnSettings, error) {
		row, err := repo.GetChurnSettings(ctx, orgID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return DefaultChurnSettings(), nil
			}
			return ChurnSettings{}, err
		}
		return churnFromRow(row), nil
	}, DefaultChurnSettings, s.logger)

	return s
}

// Health returns the cached health-score configuration source.
func (s *Service) Health() *Cache[HealthSettings] { return s.health }

// Churn returns the cached churn-risk configuration source.
func (s *Service) Churn() *Cache[ChurnSettings] { return s.churn }

// UpdateHealthSettings validates and persists an organization's health-score
// weights. Choosing a non-custom template replaces the submitted weights with
// the preset split.
func (s *Service) UpdateHealthSettings(ctx context.Context, orgID string, cfg HealthSettings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Template != TemplateCustom {
		preset, err := HealthTemplate(cfg.Template)
		if err != nil {
			return err
		}
		cfg = preset
	}

	row := models.HealthSettingsRow{
		OrganizationID:     orgID,
		Template:           cfg.Template,
		EngagementWeight:   cfg.EngagementWeight,
		SatisfactionWeight: cfg.SatisfactionWeight,
		ActivityWeight:     cfg.ActivityWeight,
		GrowthWeight:       cfg.GrowthWeight,
		SupportWeight:      cfg.SupportWeight,
	}
	if err := s.repo.UpsertHealthSettings(ctx, row); err != nil {
		return fmt.Errorf("persist health settings: %w", err)
	}

	s.health.Clear(orgID)
	s.logger.Info("health settings updated",
		zap.String("organization_id", orgID),
		zap.String("template", cfg.Template))
	return nil
}

// UpdateChurnSettings validates and persists an organization's churn-risk
// weights.
func (s *Service) UpdateChurnSettings(ctx context.Context, orgID string, cfg ChurnSettings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Template != TemplateCustom {
		preset, err := ChurnTemplate(cfg.Template)
		if err != nil {
			return err
		}
		preset.RenewalWindowDays = cfg.RenewalWindowDays
		cfg = preset
	}

	row := models.ChurnSettingsRow{
		OrganizationID:     orgID,
		Template:           cfg.Template,
		ContractWeight:     cfg.ContractWeight,
		UsageWeight:        cfg.UsageWeight,
		RelationshipWeight: cfg.RelationshipWeight,
		SatisfactionWeight: cfg.SatisfactionWeight,
		RenewalWindowDays:  cfg.RenewalWindowDays,
	}
	if err := s.repo.UpsertChurnSettings(ctx, row); err != nil {
		return fmt.Errorf("persist churn settings: %w", err)
	}

	s.churn.Clear(orgID)
	s.logger.Info("churn settings updated",
		zap.String("organization_id", orgID),
		zap.String("template", cfg.Template))
	return nil
}

func healthFromRow(row models.HealthSettingsRow) HealthSettings {
	return HealthSettings{
		Template:           row.Template,
		EngagementWeight:   row.EngagementWeight,
		SatisfactionWeight: row.SatisfactionWeight,
		ActivityWeight:     row.ActivityWeight,
		GrowthWeight:       row.GrowthWeight,
		SupportWeight:      row.SupportWeight,
	}
}

func churnFromRow(row models.ChurnSettingsRow) ChurnSettings {
	return ChurnSettings{
		Template:           row.Template,
		ContractWeight:     row.ContractWeight,
		UsageWeight:        row.UsageWeight,
		RelationshipWeight: row.RelationshipWeight,
		SatisfactionWeight: row.SatisfactionWeight,
		RenewalWindowDays:  row.RenewalWindowDays,
	}
}
