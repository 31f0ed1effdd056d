package models

import "time"

// Account is a row from the accounts collection. Current and previous
// financial values are tracked side by side so growth can be computed without
// a history scan; TrackingMethod selects which pair drives the growth signal.
type Account struct {
	ID                string
	OrganizationID    string
	Name              string
	TrackingMethod    string // arr | mrr | seat_count
	ARR               float64
	PreviousARR       float64
	MRR               float64
	PreviousMRR       float64
	SeatCount         float64
	PreviousSeatCount float64
	CreatedAt         time.Time
}

// Engagement is one logged customer interaction (call, meeting, email, demo,
// qbr, onboarding, support).
type Engagement struct {
	ID         string
	AccountID  string
	Type       string
	Status     string // completed | scheduled | cancelled
	OccurredAt time.Time
}

// NPSResponse is one survey answer on the -100..100 scale.
type NPSResponse struct {
	ID          string
	AccountID   string
	Score       float64
	RespondedAt time.Time
}

// SupportMetric is a per-provider rollup of ticket activity for one account
// and reporting period. Accounts integrated with several helpdesk providers
// have one row per provider.
type SupportMetric struct {
	ID                 string
	AccountID          string
	Provider           string
	TicketCount        int
	ResolvedCount      int
	EscalatedCount     int
	AvgResolutionHours float64
	VolumeTrend        string // increasing | decreasing | stable
	PeriodStart        time.Time
}

// GrowthSnapshot is a periodic capture of an account's financial values, used
// as the previous-value fallback when an account has no tracked previous
// figure yet.
type GrowthSnapshot struct {
	ID         string
	AccountID  string
	ARR        float64
	MRR        float64
	SeatCount  float64
	CapturedAt time.Time
}

// HealthSettingsRow is the persisted health-score weight configuration for
// one organization.
type HealthSettingsRow struct {
	OrganizationID     string
	Template           string
	EngagementWeight   int
	SatisfactionWeight int
	ActivityWeight     int
	GrowthWeight       int
	SupportWeight      int
}

// ChurnSettingsRow is the persisted churn-risk weight configuration for one
// organization.
type ChurnSettingsRow struct {
	OrganizationID     string
	Template           string
	ContractWeight     int
	UsageWeight        int
	RelationshipWeight int
	SatisfactionWeight int
	RenewalWindowDays  int
}
