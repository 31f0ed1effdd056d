package service

import "fmt"

// The analysis generators map raw component metrics to one human-readable
// sentence each. Dashboards display the text verbatim, so the threshold
// ordering (most severe condition first) is part of the contract.

func EngagementAnalysis(r EngagementResult) string {
	switch {
	case r.InteractionCount == 0:
		return "No interactions recorded in the last 30 days. This account has gone dark and needs immediate outreach."
	case r.LastEngagementDays > 21:
		return fmt.Sprintf("Last touchpoint was %d days ago. Engagement is lapsing; schedule a check-in.", r.LastEngagementDays)
	case r.Score < 30:
		return fmt.Sprintf("Only %d interactions in the last 30 days. Engagement is well below a healthy cadence.", r.InteractionCount)
	case r.Score < 60:
		return fmt.Sprintf("%d interactions in the last 30 days (%d completed). Engagement is moderate.", r.InteractionCount, r.CompletedCount)
	default:
		return fmt.Sprintf("Strong engagement: %d interactions in the last 30 days, %d completed.", r.InteractionCount, r.CompletedCount)
	}
}

func SatisfactionAnalysis(r NPSResult) string {
	switch {
	case r.ResponseCount == 0:
		return "No survey responses in the last 90 days. Satisfaction is unknown; consider sending a pulse survey."
	case r.Score < 30:
		return fmt.Sprintf("Recent surveys average %.0f, with the latest at %.0f. Satisfaction is critically low.", r.Score, r.LatestScore)
	case r.Score < 60:
		return fmt.Sprintf("Recent surveys average %.0f. Satisfaction is mixed.", r.Score)
	default:
		return fmt.Sprintf("Recent surveys average %.0f across %d responses. Customers are happy.", r.Score, r.ResponseCount)
	}
}

func ActivityAnalysis(r ActivityResult) string {
	switch {
	case r.EngagementCount == 0:
		return "No product or account activity in the last 30 days."
	case r.Score < 45:
		return fmt.Sprintf("%d activities in the last 30 days. Usage is light.", r.EngagementCount)
	default:
		return fmt.Sprintf("%d activities in the last 30 days. Usage is steady.", r.EngagementCount)
	}
}

func GrowthAnalysis(r GrowthResult) string {
	switch {
	case r.GrowthPercentage < -20:
		return fmt.Sprintf("%s contracted %.1f%% against the previous period. Significant contraction risk.", growthMetricLabel(r.TrackingMethod), -r.GrowthPercentage)
	case r.GrowthPercentage < 0:
		return fmt.Sprintf("%s declined %.1f%% against the previous period.", growthMetricLabel(r.TrackingMethod), -r.GrowthPercentage)
	case r.GrowthPercentage > 20:
		return fmt.Sprintf("%s grew %.1f%%. Strong expansion signal.", growthMetricLabel(r.TrackingMethod), r.GrowthPercentage)
	case r.GrowthPercentage > 0:
		return fmt.Sprintf("%s grew %.1f%% against the previous period.", growthMetricLabel(r.TrackingMethod), r.GrowthPercentage)
	case r.PreviousValue == 0:
		return fmt.Sprintf("No previous %s to compare against yet; the account is %d months old.", growthMetricLabel(r.TrackingMethod), r.AccountAgeMonths)
	default:
		return fmt.Sprintf("%s is flat against the previous period.", growthMetricLabel(r.TrackingMethod))
	}
}

func growthMetricLabel(method string) string {
	switch method {
	case TrackingMRR:
		return "MRR"
	case TrackingSeatCount:
		return "Seat count"
	default:
		return "ARR"
	}
}

func SupportAnalysis(r SupportResult) string {
	switch {
	case r.TicketCount == 0:
		return "No support tickets in the last 30 days."
	case r.VolumeTrend == "increasing" && r.Score < 50:
		return fmt.Sprintf("%d tickets in the last 30 days and volume is rising, with %d escalations. Support experience is a churn driver.", r.TicketCount, r.EscalatedCount)
	case r.EscalatedCount > 0 && r.Score < 60:
		return fmt.Sprintf("%d of %d tickets escalated in the last 30 days. Resolution quality needs attention.", r.EscalatedCount, r.TicketCount)
	case r.AvgResolutionHours > supportSlowResolutionHrs:
		return fmt.Sprintf("Tickets take %.0f hours on average to resolve. Resolution time is hurting the experience.", r.AvgResolutionHours)
	case r.VolumeTrend == "decreasing":
		return fmt.Sprintf("%d tickets in the last 30 days with volume trending down.", r.TicketCount)
	default:
		return fmt.Sprintf("%d tickets in the last 30 days, %d resolved. Support load is manageable.", r.TicketCount, r.ResolvedCount)
	}
}
