package service

import (
	"context"

	"go.uber.org/zap"
)

// Contracts are assumed to renew on 12-month cycles from the account's
// creation date until real contract records land.
const contractCycleDays = 365

// Placeholder signals pending future integrations. Kept as named terms in the
// formulas so the weighted sums stay stable when billing and stakeholder
// tracking land.
const (
	paymentIssueCount      = 0 // TODO: wire to the billing integration once invoices sync
	paymentIssueRisk       = 15
	stakeholderChangeCount = 0 // TODO: populate from contact-role change events
	stakeholderChangeRisk  = 25
)

func (s *ChurnRiskService) calculateContractRisk(ctx context.Context, acct AccountSnapshot, renewalWindowDays int) ContractResult {
	if renewalWindowDays <= 0 {
		renewalWindowDays = 90
	}

	ageDays := int(s.now().Sub(acct.CreatedAt).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	daysToRenewal := contractCycleDays - ageDays%contractCycleDays

	risk := 20.0
	if daysToRenewal <= renewalWindowDays {
		// Risk ramps linearly from 30 at the window edge to 80 at renewal.
		proximity := 1 - float64(daysToRenewal)/float64(renewalWindowDays)
		risk = 30 + proximity*50
	}
	risk += float64(paymentIssueCount) * paymentIssueRisk

	return ContractResult{
		Score:         clamp(risk),
		DaysToRenewal: daysToRenewal,
		PaymentIssues: paymentIssueCount,
		RenewalWindow: renewalWindowDays,
	}
}

const (
	usageBaseRisk        = 20.0
	usageDeclineFactor   = 0.6
	adoptionIssueRisk    = 30.0
	adoptionIssueMinimum = 2
)

func (s *ChurnRiskService) calculateUsageRisk(ctx context.Context, acct AccountSnapshot) UsageResult {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	now := s.now()
	windowStart := now.AddDate(0, 0, -30)
	priorStart := now.AddDate(0, 0, -60)

	recent, err := s.signals.CountEngagements(dbCtx, acct.OrganizationID, acct.ID, windowStart, now, false)
	if err != nil {
		s.logger.Warn("usage count failed, using neutral risk",
			zap.String("account_id", acct.ID), zap.Error(err))
		return UsageResult{Score: neutralScore, Degraded: true}
	}
	prior, err := s.signals.CountEngagements(dbCtx, acct.OrganizationID, acct.ID, priorStart, windowStart, false)
	if err != nil {
		s.logger.Warn("prior usage count failed, using neutral risk",
			zap.String("account_id", acct.ID), zap.Error(err))
		return UsageResult{Score: neutralScore, Degraded: true}
	}

	decline := declinePercent(recent, prior)
	adoptionIssue := recent < adoptionIssueMinimum

	risk := usageBaseRisk + usageDeclineFactor*decline
	if adoptionIssue {
		risk += adoptionIssueRisk
	}

	return UsageResult{
		Score:             clamp(risk),
		RecentCount:       recent,
		PriorCount:        prior,
		DeclinePercentage: decline,
		AdoptionIssue:     adoptionIssue,
	}
}

const (
	relationshipBaseRisk      = 15.0
	relationshipDeclineFactor = 0.5
)

func (s *ChurnRiskService) calculateRelationshipRisk(ctx context.Context, acct AccountSnapshot) RelationshipResult {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	now := s.now()
	windowStart := now.AddDate(0, 0, -30)
	priorStart := now.AddDate(0, 0, -60)

	recent, err := s.signals.CountEngagements(dbCtx, acct.OrganizationID, acct.ID, windowStart, now, true)
	if err != nil {
		s.logger.Warn("relationship count failed, using neutral risk",
			zap.String("account_id", acct.ID), zap.Error(err))
		return RelationshipResult{Score: neutralScore, Degraded: true}
	}
	prior, err := s.signals.CountEngagements(dbCtx, acct.OrganizationID, acct.ID, priorStart, windowStart, true)
	if err != nil {
		s.logger.Warn("prior relationship count failed, using neutral risk",
			zap.String("account_id", acct.ID), zap.Error(err))
		return RelationshipResult{Score: neutralScore, Degraded: true}
	}

	decline := declinePercent(recent, prior)
	risk := relationshipBaseRisk + relationshipDeclineFactor*decline +
		float64(stakeholderChangeCount)*stakeholderChangeRisk

	return RelationshipResult{
		Score:              clamp(risk),
		RecentCount:        recent,
		PriorCount:         prior,
		DeclinePercentage:  decline,
		StakeholderChanges: stakeholderChangeCount,
	}
}

const (
	satisfactionBaseRisk = 10.0
	detractorRiskFactor  = 60.0
	noFeedbackRisk       = 20.0
	detractorThreshold   = 6.0
	churnRecentResponses = 3
)

func (s *ChurnRiskService) calculateSatisfactionRisk(ctx context.Context, acct AccountSnapshot) SatisfactionRiskResult {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	since := s.now().AddDate(0, 0, -npsWindowDays)
	responses, err := s.signals.NPSResponsesSince(dbCtx, acct.OrganizationID, acct.ID, since, churnRecentResponses)
	if err != nil {
		s.logger.Warn("satisfaction fetch failed, using neutral risk",
			zap.String("account_id", acct.ID), zap.Error(err))
		return SatisfactionRiskResult{Score: neutralScore, NoFeedback: true, Degraded: true}
	}

	if len(responses) == 0 {
		// Silence is itself a signal.
		return SatisfactionRiskResult{
			Score:      clamp(satisfactionBaseRisk + noFeedbackRisk),
			NoFeedback: true,
		}
	}

	detractors := 0
	for _, r := range responses {
		if r.Score <= detractorThreshold {
			detractors++
		}
	}
	ratio := float64(detractors) / float64(len(responses))
	risk := satisfactionBaseRisk + detractorRiskFactor*ratio

	return SatisfactionRiskResult{
		Score:          clamp(risk),
		ResponseCount:  len(responses),
		DetractorCount: detractors,
	}
}
