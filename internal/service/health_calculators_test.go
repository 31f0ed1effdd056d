package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/accountpulse/scoring-server/internal/repository/models"
	"github.com/accountpulse/scoring-server/internal/service/mocks"
)

func TestCalculateEngagement(t *testing.T) {
	ctx := context.Background()
	acct := AccountSnapshot{ID: "acct-1", OrganizationID: "org-1"}

	t.Run("no engagements scores zero", func(t *testing.T) {
		svc := newHealthService(t, &mocks.MockSignalRepository{}, nil)

		result := svc.calculateEngagement(ctx, acct)

		assert.Equal(t, 0.0, result.Score)
		assert.Equal(t, lastEngagementNever, result.LastEngagementDays)
		assert.False(t, result.Degraded)
	})

	t.Run("mixed statuses", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			EngagementsSinceFunc: func(ctx context.Context, orgID, accountID string, since time.Time) ([]models.Engagement, error) {
				return []models.Engagement{
					{Type: "meeting", Status: "completed", OccurredAt: testNow.AddDate(0, 0, -3)},
					{Type: "email", Status: "scheduled", OccurredAt: testNow.AddDate(0, 0, -10)},
				}, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		result := svc.calculateEngagement(ctx, acct)

		// 15*1.2 completed + 5 scheduled, over the 1.5 normalizer.
		assert.InDelta(t, (15*1.2+5)/1.5, result.Score, 0.001)
		assert.Equal(t, 2, result.InteractionCount)
		assert.Equal(t, 1, result.CompletedCount)
		assert.Equal(t, 3, result.LastEngagementDays)
	})

	t.Run("heavy activity clamps at 100", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			EngagementsSinceFunc: func(ctx context.Context, orgID, accountID string, since time.Time) ([]models.Engagement, error) {
				var out []models.Engagement
				for i := 0; i < 10; i++ {
					out = append(out, models.Engagement{
						Type: "qbr", Status: "completed", OccurredAt: testNow.AddDate(0, 0, -i),
					})
				}
				return out, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		result := svc.calculateEngagement(ctx, acct)

		assert.Equal(t, 100.0, result.Score)
	})

	t.Run("unknown interaction type counts zero points", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			EngagementsSinceFunc: func(ctx context.Context, orgID, accountID string, since time.Time) ([]models.Engagement, error) {
				return []models.Engagement{
					{Type: "carrier_pigeon", Status: "completed", OccurredAt: testNow.AddDate(0, 0, -1)},
				}, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		result := svc.calculateEngagement(ctx, acct)

		assert.Equal(t, 0.0, result.Score)
		assert.Equal(t, 1, result.InteractionCount)
	})
}

func TestCalculateSatisfaction(t *testing.T) {
	ctx := context.Background()
	acct := AccountSnapshot{ID: "acct-1", OrganizationID: "org-1"}

	t.Run("no responses is neutral", func(t *testing.T) {
		svc := newHealthService(t, &mocks.MockSignalRepository{}, nil)

		result := svc.calculateSatisfaction(ctx, acct)

		assert.Equal(t, neutralScore, result.Score)
		assert.Equal(t, 0, result.ResponseCount)
	})

	t.Run("recency decay favors newer responses", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			NPSResponsesSinceFunc: func(ctx context.Context, orgID, accountID string, since time.Time, limit int) ([]models.NPSResponse, error) {
				assert.Equal(t, npsRecentResponses, limit)
				return []models.NPSResponse{
					{Score: 100, RespondedAt: testNow.AddDate(0, 0, -1)},
					{Score: -100, RespondedAt: testNow.AddDate(0, 0, -30)},
				}, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		result := svc.calculateSatisfaction(ctx, acct)

		// 100 with weight 1, 0 with weight 0.8.
		assert.InDelta(t, 100.0/1.8, result.Score, 0.001)
		assert.Equal(t, 100.0, result.LatestScore)
	})

	t.Run("uniform detractors floor near zero", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			NPSResponsesSinceFunc: func(ctx context.Context, orgID, accountID string, since time.Time, limit int) ([]models.NPSResponse, error) {
				return []models.NPSResponse{
					{Score: -100, RespondedAt: testNow},
					{Score: -100, RespondedAt: testNow},
				}, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		result := svc.calculateSatisfaction(ctx, acct)

		assert.Equal(t, 0.0, result.Score)
	})
}

func TestCalculateActivity(t *testing.T) {
	ctx := context.Background()
	acct := AccountSnapshot{ID: "acct-1", OrganizationID: "org-1"}

	tests := []struct {
		name  string
		count int
		want  float64
	}{
		{"no activity", 0, 0},
		{"moderate activity", 4, 60},
		{"activity clamps at 100", 10, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockSignalRepository{
				CountEngagementsFunc: func(ctx context.Context, orgID, accountID string, from, to time.Time, completedOnly bool) (int, error) {
					return tt.count, nil
				},
			}
			svc := newHealthService(t, repo, nil)

			result := svc.calculateActivity(ctx, acct)

			assert.Equal(t, tt.want, result.Score)
			assert.Equal(t, tt.count, result.EngagementCount)
		})
	}
}

func TestCalculateGrowth(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to history snapshot when previous value is missing", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			LatestGrowthSnapshotFunc: func(ctx context.Context, orgID, accountID string, before time.Time) (models.GrowthSnapshot, error) {
				assert.Equal(t, testNow.AddDate(0, 0, -30), before)
				return models.GrowthSnapshot{MRR: 5000, CapturedAt: before}, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		acct := AccountSnapshot{
			ID:             "acct-1",
			OrganizationID: "org-1",
			TrackingMethod: TrackingMRR,
			MRR:            6000,
			CreatedAt:      testNow.AddDate(0, 0, -60),
		}
		result := svc.calculateGrowth(ctx, acct)

		assert.Equal(t, 5000.0, result.PreviousValue)
		assert.InDelta(t, 20.0, result.GrowthPercentage, 0.001)
		// 50 base + 15 size tier (mrr >= 5000) + 15 growth tier, age 2 months.
		assert.InDelta(t, 80.0, result.Score, 0.001)
		assert.False(t, result.Degraded)
	})

	t.Run("shrinking seat count drags the score down", func(t *testing.T) {
		svc := newHealthService(t, &mocks.MockSignalRepository{}, nil)

		acct := AccountSnapshot{
			ID:                "acct-1",
			OrganizationID:    "org-1",
			TrackingMethod:    TrackingSeatCount,
			SeatCount:         70,
			PreviousSeatCount: 100,
			CreatedAt:         testNow.AddDate(0, 0, -400),
		}
		result := svc.calculateGrowth(ctx, acct)

		// 50 base + 10 size tier (seats >= 50) - 20 decline + 10 age bonus.
		assert.InDelta(t, 50.0, result.Score, 0.001)
		assert.InDelta(t, -30.0, result.GrowthPercentage, 0.001)
	})
}

func TestGrowthTiers(t *testing.T) {
	t.Run("growth tier deltas", func(t *testing.T) {
		tests := []struct {
			pct  float64
			want float64
		}{
			{25, 20}, {15, 15}, {8, 10}, {3, 5}, {0, 0},
			{-5, -10}, {-15, -15}, {-30, -20},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, growthTierDelta(tt.pct), "pct %v", tt.pct)
		}
	})

	t.Run("value tiers per tracking method", func(t *testing.T) {
		assert.Equal(t, 20.0, valueTierBonus(TrackingARR, 150000))
		assert.Equal(t, 5.0, valueTierBonus(TrackingARR, 2000))
		assert.Equal(t, 0.0, valueTierBonus(TrackingARR, 500))
		assert.Equal(t, 20.0, valueTierBonus(TrackingMRR, 12000))
		assert.Equal(t, 10.0, valueTierBonus(TrackingSeatCount, 60))
	})

	t.Run("account age bonus", func(t *testing.T) {
		assert.Equal(t, 0.0, accountAgeBonus(2))
		assert.Equal(t, 5.0, accountAgeBonus(4))
		assert.Equal(t, 7.0, accountAgeBonus(9))
		assert.Equal(t, 10.0, accountAgeBonus(18))
	})
}

func TestCalculateSupport(t *testing.T) {
	ctx := context.Background()
	acct := AccountSnapshot{ID: "acct-1", OrganizationID: "org-1"}

	t.Run("no tickets is a good sign", func(t *testing.T) {
		svc := newHealthService(t, &mocks.MockSignalRepository{}, nil)

		result := svc.calculateSupport(ctx, acct)

		assert.Equal(t, noTicketsScore, result.Score)
		assert.Equal(t, "stable", result.VolumeTrend)
	})

	t.Run("low escalation earns a bonus", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			SupportMetricsSinceFunc: func(ctx context.Context, orgID, accountID string, since time.Time) ([]models.SupportMetric, error) {
				return []models.SupportMetric{
					{Provider: "zendesk", TicketCount: 10, ResolvedCount: 10, EscalatedCount: 0,
						AvgResolutionHours: 6, VolumeTrend: "stable", PeriodStart: testNow.AddDate(0, 0, -7)},
				}, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		result := svc.calculateSupport(ctx, acct)

		// 100 base + 5 low-escalation bonus, no deductions.
		assert.Equal(t, 100.0, result.Score)
	})

	t.Run("heavy troubled load stacks deductions", func(t *testing.T) {
		repo := &mocks.MockSignalRepository{
			SupportMetricsSinceFunc: func(ctx context.Context, orgID, accountID string, since time.Time) ([]models.SupportMetric, error) {
				return []models.SupportMetric{
					{Provider: "zendesk", TicketCount: 200, ResolvedCount: 100, EscalatedCount: 60,
						AvgResolutionHours: 72, VolumeTrend: "increasing", PeriodStart: testNow.AddDate(0, 0, -7)},
				}, nil
			},
		}
		svc := newHealthService(t, repo, nil)

		result := svc.calculateSupport(ctx, acct)

		// 100 - 20 volume - 15 trend - 15 resolution - 15 escalation.
		assert.Equal(t, 35.0, result.Score)
		assert.Equal(t, "increasing", result.VolumeTrend)
	})
}

func TestAggregateSupport(t *testing.T) {
	rows := []models.SupportMetric{
		{Provider: "zendesk", TicketCount: 30, ResolvedCount: 25, EscalatedCount: 3, AvgResolutionHours: 10, VolumeTrend: "increasing"},
		{Provider: "intercom", TicketCount: 10, ResolvedCount: 9, EscalatedCount: 1, AvgResolutionHours: 30, VolumeTrend: "decreasing"},
		{Provider: "jira", TicketCount: 5, ResolvedCount: 5, EscalatedCount: 0, AvgResolutionHours: 2, VolumeTrend: "increasing"},
	}

	agg := aggregateSupport(rows)

	assert.Equal(t, 45, agg.TicketCount)
	assert.Equal(t, 39, agg.ResolvedCount)
	assert.Equal(t, 4, agg.EscalatedCount)
	// Ticket-weighted: (30*10 + 10*30 + 5*2) / 45.
	assert.InDelta(t, 610.0/45.0, agg.AvgResolutionHours, 0.001)
	assert.Equal(t, "increasing", agg.VolumeTrend)
}

func TestScoringHelpers(t *testing.T) {
	t.Run("clamp", func(t *testing.T) {
		assert.Equal(t, 0.0, clamp(-10))
		assert.Equal(t, 55.5, clamp(55.5))
		assert.Equal(t, 100.0, clamp(140))
	})

	t.Run("percentChange", func(t *testing.T) {
		assert.Equal(t, 0.0, percentChange(500, 0))
		assert.InDelta(t, 20.0, percentChange(120, 100), 0.001)
		assert.InDelta(t, -50.0, percentChange(50, 100), 0.001)
	})

	t.Run("declinePercent", func(t *testing.T) {
		assert.Equal(t, 0.0, declinePercent(10, 0))
		assert.Equal(t, 0.0, declinePercent(12, 10))
		assert.InDelta(t, 40.0, declinePercent(6, 10), 0.001)
	})
}
