package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/accountpulse/scoring-server/internal/repository/models"
	"go.uber.org/zap"
)

// Point value per interaction type. Completed interactions get a 1.2x
// multiplier; the summed total is normalized by 1.5 before clamping.
var engagementPoints = map[string]float64{
	"call":       10,
	"meeting":    15,
	"email":      5,
	"demo":       20,
	"qbr":        25,
	"onboarding": 20,
	"support":    8,
}

const (
	completedMultiplier  = 1.2
	engagementNormalizer = 1.5
)

func (s *HealthScoreService) calculateEngagement(ctx context.Context, acct AccountSnapshot) EngagementResult {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	now := s.now()
	since := now.AddDate(0, 0, -engagementWindowDays)

	engagements, err := s.signals.EngagementsSince(dbCtx, acct.OrganizationID, acct.ID, since)
	if err != nil {
		s.logger.Warn("engagement fetch failed, using neutral score",
			zap.String("account_id", acct.ID), zap.Error(err))
		return EngagementResult{Score: neutralScore, LastEngagementDays: lastEngagementNever, Degraded: true}
	}

	if len(engagements) == 0 {
		return EngagementResult{Score: 0, LastEngagementDays: lastEngagementNever}
	}

	var total float64
	completed := 0
	for _, e := range engagements {
		points := engagementPoints[e.Type]
		if e.Status == "completed" {
			points *= completedMultiplier
			completed++
		}
		total += points
	}

	// Rows are ordered most recent first.
	lastDays := int(now.Sub(engagements[0].OccurredAt).Hours() / 24)
	if lastDays < 0 {
		lastDays = 0
	}

	return EngagementResult{
		Score:              clamp(total / engagementNormalizer),
		InteractionCount:   len(engagements),
		CompletedCount:     completed,
		LastEngagementDays: lastDays,
	}
}

// npsDecay is the per-step recency decay: the most recent response has weight
// 1, the next 0.8, then 0.64, and so on.
const npsDecay = 0.8

func (s *HealthScoreService) calculateSatisfaction(ctx context.Context, acct AccountSnapshot) NPSResult {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	since := s.now().AddDate(0, 0, -npsWindowDays)
	responses, err := s.signals.NPSResponsesSince(dbCtx, acct.OrganizationID, acct.ID, since, npsRecentResponses)
	if err != nil {
		s.logger.Warn("nps fetch failed, using neutral score",
			zap.String("account_id", acct.ID), zap.Error(err))
		return NPSResult{Score: neutralScore, Degraded: true}
	}

	if len(responses) == 0 {
		return NPSResult{Score: neutralScore}
	}

	var weighted, weightSum float64
	weight := 1.0
	for _, r := range responses {
		// Raw NPS is on [-100,100]; map to [0,100].
		mapped := (r.Score + 100) / 2
		weighted += mapped * weight
		weightSum += weight
		weight *= npsDecay
	}

	return NPSResult{
		Score:         clamp(weighted / weightSum),
		ResponseCount: len(responses),
		LatestScore:   responses[0].Score,
	}
}

// activityMultiplier converts the 30-day engagement count into the activity
// proxy score.
const activityMultiplier = 15

func (s *HealthScoreService) calculateActivity(ctx context.Context, acct AccountSnapshot) ActivityResult {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	now := s.now()
	count, err := s.signals.CountEngagements(dbCtx, acct.OrganizationID, acct.ID,
		now.AddDate(0, 0, -engagementWindowDays), now, false)
	if err != nil {
		s.logger.Warn("activity count failed, using neutral score",
			zap.String("account_id", acct.ID), zap.Error(err))
		return ActivityResult{Score: neutralScore, Degraded: true}
	}

	return ActivityResult{
		Score:           clamp(float64(count * activityMultiplier)),
		EngagementCount: count,
	}
}

func (s *HealthScoreService) calculateGrowth(ctx context.Context, acct AccountSnapshot) GrowthResult {
	method := acct.TrackingMethod
	if method == "" {
		method = TrackingARR
	}
	current, previous := trackedValues(acct, method)

	degraded := false
	if previous == 0 {
		// No tracked previous value; fall back to the 30-day history
		// snapshot when one exists.
		dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
		defer cancel()

		snap, err := s.signals.LatestGrowthSnapshot(dbCtx, acct.OrganizationID, acct.ID,
			s.now().AddDate(0, 0, -30))
		switch {
		case err == nil:
			previous = snapshotValue(snap, method)
		case errors.Is(err, sql.ErrNoRows):
			// New account, nothing to compare against.
		default:
			s.logger.Warn("growth snapshot fetch failed",
				zap.String("account_id", acct.ID), zap.Error(err))
			degraded = true
		}
	}

	growthPct := percentChange(current, previous)
	ageMonths := monthsSince(acct.CreatedAt, s.now())

	score := 50.0
	score += valueTierBonus(method, current)
	score += growthTierDelta(growthPct)
	score += accountAgeBonus(ageMonths)

	return GrowthResult{
		Score:            clamp(score),
		TrackingMethod:   method,
		CurrentValue:     current,
		PreviousValue:    previous,
		GrowthPercentage: growthPct,
		AccountAgeMonths: ageMonths,
		Degraded:         degraded,
	}
}

func trackedValues(acct AccountSnapshot, method string) (current, previous float64) {
	switch method {
	case TrackingMRR:
		return acct.MRR, acct.PreviousMRR
	case TrackingSeatCount:
		return acct.SeatCount, acct.PreviousSeatCount
	default:
		return acct.ARR, acct.PreviousARR
	}
}

func snapshotValue(snap models.GrowthSnapshot, method string) float64 {
	switch method {
	case TrackingMRR:
		return snap.MRR
	case TrackingSeatCount:
		return snap.SeatCount
	default:
		return snap.ARR
	}
}

// valueTierBonus rewards absolute account size; thresholds are per tracking
// method.
func valueTierBonus(method string, value float64) float64 {
	var tiers [4]float64
	switch method {
	case TrackingMRR:
		tiers = [4]float64{10000, 5000, 1000, 100}
	case TrackingSeatCount:
		tiers = [4]float64{500, 100, 50, 10}
	default:
		tiers = [4]float64{100000, 50000, 10000, 1000}
	}

	switch {
	case value >= tiers[0]:
		return 20
	case value >= tiers[1]:
		return 15
	case value >= tiers[2]:
		return 10
	case value >= tiers[3]:
		return 5
	default:
		return 0
	}
}

func growthTierDelta(pct float64) float64 {
	switch {
	case pct > 20:
		return 20
	case pct > 10:
		return 15
	case pct > 5:
		return 10
	case pct > 0:
		return 5
	case pct < -20:
		return -20
	case pct < -10:
		return -15
	case pct < 0:
		return -10
	default:
		return 0
	}
}

func accountAgeBonus(months int) float64 {
	switch {
	case months > 12:
		return 10
	case months > 6:
		return 7
	case months > 3:
		return 5
	default:
		return 0
	}
}

// Support score deductions and bonuses.
const (
	supportHeavyDailyVolume  = 5.0
	supportHighDailyVolume   = 2.0
	supportNotableDailyLoad  = 1.0
	supportSlowResolutionHrs = 48.0
	supportLaggingResolution = 24.0
	supportHighEscalation    = 0.2
	supportNotableEscalation = 0.1
	supportLowEscalation     = 0.05
)

func (s *HealthScoreService) calculateSupport(ctx context.Context, acct AccountSnapshot) SupportResult {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	since := s.now().AddDate(0, 0, -engagementWindowDays)
	rows, err := s.signals.SupportMetricsSince(dbCtx, acct.OrganizationID, acct.ID, since)
	if err != nil {
		s.logger.Warn("support metrics fetch failed, using no-data score",
			zap.String("account_id", acct.ID), zap.Error(err))
		return SupportResult{Score: noTicketsScore, VolumeTrend: "stable", Degraded: true}
	}

	// No news is good news.
	if len(rows) == 0 {
		return SupportResult{Score: noTicketsScore, VolumeTrend: "stable"}
	}

	agg := aggregateSupport(rows)

	score := 100.0

	perDay := float64(agg.TicketCount) / float64(engagementWindowDays)
	switch {
	case perDay > supportHeavyDailyVolume:
		score -= 20
	case perDay > supportHighDailyVolume:
		score -= 10
	case perDay > supportNotableDailyLoad:
		score -= 5
	}

	switch agg.VolumeTrend {
	case "increasing":
		score -= 15
	case "decreasing":
		score += 5
	}

	switch {
	case agg.AvgResolutionHours > supportSlowResolutionHrs:
		score -= 15
	case agg.AvgResolutionHours > supportLaggingResolution:
		score -= 8
	}

	if agg.TicketCount > 0 {
		escalationRate := float64(agg.EscalatedCount) / float64(agg.TicketCount)
		switch {
		case escalationRate > supportHighEscalation:
			score -= 15
		case escalationRate > supportNotableEscalation:
			score -= 8
		case escalationRate < supportLowEscalation:
			score += 5
		}
	}

	agg.Score = clamp(score)
	return agg
}

// aggregateSupport folds per-provider rollups into one result: counts sum,
// resolution time is ticket-weighted, and the trend is decided by majority.
func aggregateSupport(rows []models.SupportMetric) SupportResult {
	var out SupportResult
	var weightedHours float64
	increasing, decreasing := 0, 0

	for _, m := range rows {
		out.TicketCount += m.TicketCount
		out.ResolvedCount += m.ResolvedCount
		out.EscalatedCount += m.EscalatedCount
		weightedHours += m.AvgResolutionHours * float64(m.TicketCount)
		switch m.VolumeTrend {
		case "increasing":
			increasing++
		case "decreasing":
			decreasing++
		}
	}

	if out.TicketCount > 0 {
		out.AvgResolutionHours = weightedHours / float64(out.TicketCount)
	}

	switch {
	case increasing > decreasing:
		out.VolumeTrend = "increasing"
	case decreasing > increasing:
		out.VolumeTrend = "decreasing"
	default:
		out.VolumeTrend = "stable"
	}
	return out
}
