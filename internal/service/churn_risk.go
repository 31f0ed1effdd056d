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

// ChurnRiskService computes the 0-100 churn risk score from four weighted
// sub-scores: contract, usage, relationship and satisfaction. Higher means
// more likely to churn.
type ChurnRiskService struct {
	signals  SignalRepository
	settings ChurnSettingsSource
	logger   *zap.Logger
	now      func() time.Time
}

// NewChurnRiskService creates a new ChurnRiskService instance.
func NewChurnRiskService(signals SignalRepository, cfg ChurnSettingsSource, logger *zap.Logger) *ChurnRiskService {
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
	return &ChurnRiskService{
		signals:  signals,
		settings: cfg,
		logger:   logger.Named("churn-risk"),
		now:      time.Now,
	}
}

// CalculateChurnRisk scores one account. Mirrors the health pipeline: four
// concurrent calculators, weighted combine, clamp, never an error.
func (s *ChurnRiskService) CalculateChurnRisk(ctx context.Context, acct AccountSnapshot) (breakdown ChurnBreakdown) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("churn scoring pipeline failed",
				zap.String("account_id", acct.ID),
				zap.Any("panic", r))
			breakdown = fallbackChurnBreakdown(acct.ID, s.now())
		}
	}()

	cfg := s.settings.Get(ctx, acct.OrganizationID)
	weights := ChurnWeights{
		Contract:     cfg.ContractWeight,
		Usage:        cfg.UsageWeight,
		Relationship: cfg.RelationshipWeight,
		Satisfaction: cfg.SatisfactionWeight,
	}

	var (
		contract     ContractResult
		usage        UsageResult
		relationship RelationshipResult
		satisfaction SatisfactionRiskResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { contract = s.calculateContractRisk(gctx, acct, cfg.RenewalWindowDays); return nil })
	g.Go(func() error { usage = s.calculateUsageRisk(gctx, acct); return nil })
	g.Go(func() error { relationship = s.calculateRelationshipRisk(gctx, acct); return nil })
	g.Go(func() error { satisfaction = s.calculateSatisfactionRisk(gctx, acct); return nil })
	_ = g.Wait()

	overall := clampRound(
		contract.Score*float64(weights.Contract)/100 +
			usage.Score*float64(weights.Usage)/100 +
			relationship.Score*float64(weights.Relationship)/100 +
			satisfaction.Score*float64(weights.Satisfaction)/100,
	)

	return ChurnBreakdown{
		AccountID:    acct.ID,
		Overall:      overall,
		Degraded:     contract.Degraded || usage.Degraded || relationship.Degraded || satisfaction.Degraded,
		Contract:     contract,
		Usage:        usage,
		Relationship: relationship,
		Satisfaction: satisfaction,
		Weights:      weights,
		Analysis: ChurnAnalysis{
			Contract:     ContractRiskAnalysis(contract),
			Usage:        UsageRiskAnalysis(usage),
			Relationship: RelationshipRiskAnalysis(relationship),
			Satisfaction: SatisfactionRiskAnalysis(satisfaction),
		},
		ComputedAt: s.now(),
	}
}

// CalculateChurnRisks scores the given accounts in batches of ten.
func (s *ChurnRiskService) CalculateChurnRisks(ctx context.Context, accounts []AccountSnapshot) map[string]ChurnBreakdown {
	return scoreInBatches(ctx, accounts, scoreBatchSize, s.CalculateChurnRisk)
}

// ScoreAccount loads one account and scores it.
func (s *ChurnRiskService) ScoreAccount(ctx context.Context, orgID, accountID string) (ChurnBreakdown, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	acct, err := s.signals.GetAccount(dbCtx, orgID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ChurnBreakdown{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return ChurnBreakdown{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return s.CalculateChurnRisk(ctx, snapshotFromAccount(acct)), nil
}

// ScoreOrganization scores every account in the organization.
func (s *ChurnRiskService) ScoreOrganization(ctx context.Context, orgID string) (map[string]ChurnBreakdown, error) {
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

	s.logger.Info("assessing organization churn risk",
		zap.String("organization_id", orgID),
		zap.Int("accounts", len(snapshots)))

	return s.CalculateChurnRisks(ctx, snapshots), nil
}

func fallbackChurnBreakdown(accountID string, at time.Time) ChurnBreakdown {
	contract := ContractResult{Score: neutralScore, RenewalWindow: 90, Degraded: true}
	usage := UsageResult{Score: neutralScore, Degraded: true}
	relationship := RelationshipResult{Score: neutralScore, Degraded: true}
	satisfaction := SatisfactionRiskResult{Score: neutralScore, NoFeedback: true, Degraded: true}

	return ChurnBreakdown{
		AccountID:    accountID,
		Overall:      int(neutralScore),
		Degraded:     true,
		Contract:     contract,
		Usage:        usage,
		Relationship: relationship,
		Satisfaction: satisfaction,
		Weights: ChurnWeights{
			Contract:     30,
			Usage:        30,
			Relationship: 20,
			Satisfaction: 20,
		},
		Analysis: ChurnAnalysis{
			Contract:     ContractRiskAnalysis(contract),
			Usage:        UsageRiskAnalysis(usage),
			Relationship: RelationshipRiskAnalysis(relationship),
			Satisfaction: SatisfactionRiskAnalysis(satisfaction),
		},
		ComputedAt: at,
	}
}
