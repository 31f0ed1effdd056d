package service

import "fmt"

func ContractRiskAnalysis(r ContractResult) string {
	switch {
	case r.PaymentIssues > 0:
		return fmt.Sprintf("%d payment issues detected with renewal %d days out. Escalate to the account team.", r.PaymentIssues, r.DaysToRenewal)
	case r.DaysToRenewal <= 30:
		return fmt.Sprintf("Renewal is %d days away. This account should be in active renewal conversations now.", r.DaysToRenewal)
	case r.DaysToRenewal <= r.RenewalWindow:
		return fmt.Sprintf("Renewal is %d days away, inside the %d-day watch window.", r.DaysToRenewal, r.RenewalWindow)
	default:
		return fmt.Sprintf("Renewal is %d days out. No near-term contract pressure.", r.DaysToRenewal)
	}
}

func UsageRiskAnalysis(r UsageResult) string {
	switch {
	case r.AdoptionIssue:
		return fmt.Sprintf("Only %d interactions in the last 30 days. The account has an adoption problem.", r.RecentCount)
	case r.DeclinePercentage > 50:
		return fmt.Sprintf("Usage dropped %.0f%% versus the prior 30 days. Sharp disengagement.", r.DeclinePercentage)
	case r.DeclinePercentage > 0:
		return fmt.Sprintf("Usage is down %.0f%% versus the prior 30 days (%d vs %d interactions).", r.DeclinePercentage, r.RecentCount, r.PriorCount)
	default:
		return fmt.Sprintf("Usage is steady or growing: %d interactions in the last 30 days.", r.RecentCount)
	}
}

func RelationshipRiskAnalysis(r RelationshipResult) string {
	switch {
	case r.StakeholderChanges > 0:
		return fmt.Sprintf("%d stakeholder changes detected. Re-establish champion relationships.", r.StakeholderChanges)
	case r.DeclinePercentage > 50:
		return fmt.Sprintf("Completed touchpoints fell %.0f%% versus the prior 30 days. The relationship is cooling fast.", r.DeclinePercentage)
	case r.DeclinePercentage > 0:
		return fmt.Sprintf("Completed touchpoints are down %.0f%% versus the prior 30 days.", r.DeclinePercentage)
	default:
		return fmt.Sprintf("Relationship cadence is holding: %d completed touchpoints in the last 30 days.", r.RecentCount)
	}
}

func SatisfactionRiskAnalysis(r SatisfactionRiskResult) string {
	switch {
	case r.NoFeedback:
		return "No survey feedback in the last 90 days. Lack of response is itself a churn signal."
	case r.DetractorCount == r.ResponseCount:
		return fmt.Sprintf("All %d recent survey responses are detractors. Satisfaction is critical.", r.ResponseCount)
	case r.DetractorCount > 0:
		return fmt.Sprintf("%d of the last %d survey responses are detractors.", r.DetractorCount, r.ResponseCount)
	default:
		return fmt.Sprintf("No detractors among the last %d survey responses.", r.ResponseCount)
	}
}
