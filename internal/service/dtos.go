package service

import "time"

// AccountSnapshot is the caller-supplied input to a scoring pass. The engine
// does not own account records; the snapshot carries the identifiers and
// financial fields scoring needs.
type AccountSnapshot struct {
	ID                string    `json:"id"`
	OrganizationID    string    `json:"organization_id"`
	Name              string    `json:"name,omitempty"`
	TrackingMethod    string    `json:"tracking_method"`
	ARR               float64   `json:"arr"`
	PreviousARR       float64   `json:"previous_arr"`
	MRR               float64   `json:"mrr"`
	PreviousMRR       float64   `json:"previous_mrr"`
	SeatCount         float64   `json:"seat_count"`
	PreviousSeatCount float64   `json:"previous_seat_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// EngagementResult is the engagement component score plus the raw metrics the
// explanation text is built from.
type EngagementResult struct {
	Score              float64 `json:"score"`
	InteractionCount   int     `json:"interaction_count"`
	CompletedCount     int     `json:"completed_count"`
	LastEngagementDays int     `json:"last_engagement_days"`
	Degraded           bool    `json:"-"`
}

// NPSResult is the satisfaction component score derived from recent survey
// responses.
type NPSResult struct {
	Score         float64 `json:"score"`
	ResponseCount int     `json:"response_count"`
	LatestScore   float64 `json:"latest_score"`
	Degraded      bool    `json:"-"`
}

// ActivityResult is the activity proxy score.
type ActivityResult struct {
	Score           float64 `json:"score"`
	EngagementCount int     `json:"engagement_count"`
	Degraded        bool    `json:"-"`
}

// GrowthResult is the growth component score with the inputs that produced
// it.
type GrowthResult struct {
	Score            float64 `json:"score"`
	TrackingMethod   string  `json:"tracking_method"`
	CurrentValue     float64 `json:"current_value"`
	PreviousValue    float64 `json:"previous_value"`
	GrowthPercentage float64 `json:"growth_percentage"`
	AccountAgeMonths int     `json:"account_age_months"`
	Degraded         bool    `json:"-"`
}

// SupportResult is the support component score aggregated across providers.
type SupportResult struct {
	Score              float64 `json:"score"`
	TicketCount        int     `json:"ticket_count"`
	ResolvedCount      int     `json:"resolved_count"`
	EscalatedCount     int     `json:"escalated_count"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
	VolumeTrend        string  `json:"volume_trend"`
	Degraded           bool    `json:"-"`
}

// HealthWeights are the applied per-component weights, echoed back so callers
// can render the breakdown.
type HealthWeights struct {
	Engagement   int `json:"engagement"`
	Satisfaction int `json:"satisfaction"`
	Activity     int `json:"activity"`
	Growth       int `json:"growth"`
	Support      int `json:"support"`
}

// HealthAnalysis carries the per-component explanation sentences, displayed
// verbatim by the dashboards.
type HealthAnalysis struct {
	Engagement   string `json:"engagement"`
	Satisfaction string `json:"satisfaction"`
	Activity     string `json:"activity"`
	Growth       string `json:"growth"`
	Support      string `json:"support"`
}

// HealthBreakdown is the full result of one health scoring pass. Overall and
// every component score are clamped to [0,100]. Degraded is set when any
// component substituted a neutral default because of a read failure, so
// callers can tell "neutral because uncertain" from "neutral because of
// failure".
type HealthBreakdown struct {
	AccountID    string           `json:"account_id"`
	Overall      int              `json:"overall"`
	Degraded     bool             `json:"degraded,omitempty"`
	Engagement   EngagementResult `json:"engagement"`
	Satisfaction NPSResult        `json:"satisfaction"`
	Activity     ActivityResult   `json:"activity"`
	Growth       GrowthResult     `json:"growth"`
	Support      SupportResult    `json:"support"`
	Weights      HealthWeights    `json:"weights"`
	Analysis     HealthAnalysis   `json:"analysis"`
	ComputedAt   time.Time        `json:"computed_at"`
}

// ContractResult is the contract churn component: renewal proximity plus
// detected payment issues.
type ContractResult struct {
	Score         float64 `json:"score"`
	DaysToRenewal int     `json:"days_to_renewal"`
	PaymentIssues int     `json:"payment_issues"`
	RenewalWindow int     `json:"renewal_window_days"`
	Degraded      bool    `json:"-"`
}

// UsageResult is the usage-decline churn component.
type UsageResult struct {
	Score             float64 `json:"score"`
	RecentCount       int     `json:"recent_count"`
	PriorCount        int     `json:"prior_count"`
	DeclinePercentage float64 `json:"decline_percentage"`
	AdoptionIssue     bool    `json:"adoption_issue"`
	Degraded          bool    `json:"-"`
}

// RelationshipResult is the relationship churn component, built from
// completed engagements only.
type RelationshipResult struct {
	Score              float64 `json:"score"`
	RecentCount        int     `json:"recent_count"`
	PriorCount         int     `json:"prior_count"`
	DeclinePercentage  float64 `json:"decline_percentage"`
	StakeholderChanges int     `json:"stakeholder_changes"`
	Degraded           bool    `json:"-"`
}

// SatisfactionRiskResult is the satisfaction churn component built from
// detractor responses.
type SatisfactionRiskResult struct {
	Score          float64 `json:"score"`
	ResponseCount  int     `json:"response_count"`
	DetractorCount int     `json:"detractor_count"`
	NoFeedback     bool    `json:"no_feedback"`
	Degraded       bool    `json:"-"`
}

// ChurnWeights are the applied churn component weights.
type ChurnWeights struct {
	Contract     int `json:"contract"`
	Usage        int `json:"usage"`
	Relationship int `json:"relationship"`
	Satisfaction int `json:"satisfaction"`
}

// ChurnAnalysis carries the per-component churn explanations.
type ChurnAnalysis struct {
	Contract     string `json:"contract"`
	Usage        string `json:"usage"`
	Relationship string `json:"relationship"`
	Satisfaction string `json:"satisfaction"`
}

// ChurnBreakdown is the full result of one churn-risk scoring pass; higher
// overall means higher attrition risk.
type ChurnBreakdown struct {
	AccountID    string                 `json:"account_id"`
	Overall      int                    `json:"overall"`
	Degraded     bool                   `json:"degraded,omitempty"`
	Contract     ContractResult         `json:"contract"`
	Usage        UsageResult            `json:"usage"`
	Relationship RelationshipResult     `json:"relationship"`
	Satisfaction SatisfactionRiskResult `json:"satisfaction"`
	Weights      ChurnWeights           `json:"weights"`
	Analysis     ChurnAnalysis          `json:"analysis"`
	ComputedAt   time.Time              `json:"computed_at"`
}
