package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HealthScoreService computes the 0-100 customer health score from five
// weighted sub-scores: engagement, satisfaction (NPS), activity, growth and
// support.
type HealthScoreService struct {
	signals  SignalRepository
	settings HealthSettingsSource
	logger   *zap.Logger
	now      func() time.Time
}

// NewHealthScoreService creates a new HealthScoreService instance.
func NewHealthScoreService(signals SignalRepository, cfg HealthSettingsSource, logger *zap.Logger) *HealthScoreService {
	if signals == nil {
		panic("signals must not be nil")
	}
	if cfg == nil {
		panic("settings must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &HealthScoreService{
		signals:  signals,
		settings: cfg,
		logger:   logger.Named("health-score"),
		now:      time.Now,
	}
}

// CalculateHealthScore scores one account. The five component calculators
// read disjoint data and run concurrently; the weighted combine is the join
// point. This method never returns an error: calculator failures degrade to
// neutral component defaults, and an unexpected pipeline failure degrades to
// an all-defaults breakdown.
func (s *HealthScoreService) CalculateHealthScore(ctx context.Context, acct AccountSnapshot) (breakdown HealthBreakdown) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("health scoring pipeline failed",
				zap.String("account_id", acct.ID),
				zap.Any("panic", r))
			breakdown = fallbackHealthBreakdown(acct.ID, s.now())
		}
	}()

	cfg := s.settings.Get(ctx, acct.OrganizationID)
	weights := HealthWeights{
		Engagement:   cfg.EngagementWeight,
		Satisfaction: cfg.SatisfactionWeight,
		Activity:     cfg.ActivityWeight,
		Growth:       cfg.GrowthWeight,
		Support:      cfg.SupportWeight,
	}

	var (
		engagement   EngagementResult
		satisfaction NPSResult
		activity     ActivityResult
		growth       GrowthResult
		support      SupportResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { engagement = s.calculateEngagement(gctx, acct); return nil })
	g.Go(func() error { satisfaction = s.calculateSatisfaction(gctx, acct); return nil })
	g.Go(func() error { activity = s.calculateActivity(gctx, acct); return nil })
	g.Go(func() error { growth = s.calculateGrowth(gctx, acct); return nil })
	g.Go(func() error { support = s.calculateSupport(gctx, acct); return nil })
	_ = g.Wait()

	overall := clampRound(
		engagement.Score*float64(weights.Engagement)/100 +
			satisfaction.Score*float64(weights.Satisfaction)/100 +
			activity.Score*float64(weights.Activity)/100 +
			growth.Score*float64(weights.Growth)/100 +
			support.Score*float64(weights.Support)/100,
	)

	return HealthBreakdown{
		AccountID:    acct.ID,
		Overall:      overall,
		Degraded:     engagement.Degraded || satisfaction.Degraded || activity.Degraded || growth.Degraded || support.Degraded,
		Engagement:   engagement,
		Satisfaction: satisfaction,
		Activity:     activity,
		Growth:       growth,
		Support:      support,
		Weights:      weights,
		Analysis: HealthAnalysis{
			Engagement:   EngagementAnalysis(engagement),
			Satisfaction: SatisfactionAnalysis(satisfaction),
			Activity:     ActivityAnalysis(activity),
			Growth:       GrowthAnalysis(growth),
			Support:      SupportAnalysis(support),
		},
		ComputedAt: s.now(),
	}
}

// CalculateHealthScores scores the given accounts in batches of ten; each
// batch runs concurrently and completes before the next begins.
func (s *HealthScoreService) CalculateHealthScores(ctx context.Context, accounts []AccountSnapshot) map[string]HealthBreakdown {
	return scoreInBatches(ctx, accounts, scoreBatchSize, s.CalculateHealthScore)
}

// ScoreAccount loads one account and scores it. Account lookup is the only
// error path; scoring itself always succeeds.
func (s *HealthScoreService) ScoreAccount(ctx context.Context, orgID, accountID string) (HealthBreakdown, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	acct, err := s.signals.GetAccount(dbCtx, orgID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return HealthBreakdown{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return HealthBreakdown{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return s.CalculateHealthScore(ctx, snapshotFromAccount(acct)), nil
}

// ScoreOrganization scores every account in the organization.
func (s *HealthScoreService) ScoreOrganization(ctx context.Context, orgID string) (map[string]HealthBreakdown, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	accounts, err := s.signals.ListAccounts(dbCtx, orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	snapshots := make([]AccountSnapshot, len(accounts))
	for i, a := range accounts {
		snapshots[i] = snapshotFromAccount(a)
	}

	s.logger.Info("scoring organization",
		zap.String("organization_id", orgID),
		zap.Int("accounts", len(snapshots)))

	return s.CalculateHealthScores(ctx, snapshots), nil
}

func fallbackHealthBreakdown(accountID string, at time.Time) HealthBreakdown {
	engagement := EngagementResult{Score: neutralScore, LastEngagementDays: lastEngagementNever, Degraded: true}
	satisfaction := NPSResult{Score: neutralScore, Degraded: true}
	activity := ActivityResult{Score: neutralScore, Degraded: true}
	growth := GrowthResult{Score: neutralScore, TrackingMethod: TrackingARR, Degraded: true}
	support := SupportResult{Score: neutralScore, VolumeTrend: "stable", Degraded: true}

	return HealthBreakdown{
		AccountID:    accountID,
		Overall:      int(neutralScore),
		Degraded:     true,
		Engagement:   engagement,
		Satisfaction: satisfaction,
		Activity:     activity,
		Growth:       growth,
		Support:      support,
		Weights: HealthWeights{
			Engagement:   25,
			Satisfaction: 20,
			Activity:     20,
			Growth:       20,
			Support:      15,
		},
		Analysis: HealthAnalysis{
			Engagement:   EngagementAnalysis(engagement),
			Satisfaction: SatisfactionAnalysis(satisfaction),
			Activity:     ActivityAnalysis(activity),
			Growth:       GrowthAnalysis(growth),
			Support:      SupportAnalysis(support),
		},
		ComputedAt: at,
	}
}
