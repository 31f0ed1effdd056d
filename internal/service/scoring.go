package service

import (
	"errors"
	"math"
	"time"

	"github.com/accountpulse/scoring-server/internal/repository/models"
)

const (
	dbTimeout = 1 * time.Second

	engagementWindowDays = 30
	npsWindowDays        = 90
	npsRecentResponses   = 5

	// Sentinel for accounts that have never been engaged.
	lastEngagementNever = 999

	neutralScore   = 50.0
	noTicketsScore = 75.0

	scoreBatchSize = 10
)

// Tracking methods an account can use as its primary growth signal.
const (
	TrackingARR       = "arr"
	TrackingMRR       = "mrr"
	TrackingSeatCount = "seat_count"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrStorageFailure  = errors.New("storage failure")
)

// clamp bounds a score to [0,100]. Intermediate arithmetic is allowed to run
// negative or over 100; nothing leaves the engine unclamped.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampRound(v float64) int {
	return int(clamp(math.Round(v)))
}

// percentChange returns the change from prev to cur in percent; zero when
// there is no previous value to compare against.
func percentChange(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// declinePercent is percentChange folded to the decline direction: positive
// when usage dropped, zero when flat or growing.
func declinePercent(recent, prior int) float64 {
	if prior == 0 || recent >= prior {
		return 0
	}
	return float64(prior-recent) / float64(prior) * 100
}

func monthsSince(t, now time.Time) int {
	days := int(now.Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 30
}

func snapshotFromAccount(a models.Account) AccountSnapshot {
	return AccountSnapshot{
		ID:                a.ID,
		OrganizationID:    a.OrganizationID,
		Name:              a.Name,
		TrackingMethod:    a.TrackingMethod,
		ARR:               a.ARR,
		PreviousARR:       a.PreviousARR,
		MRR:               a.MRR,
		PreviousMRR:       a.PreviousMRR,
		SeatCount:         a.SeatCount,
		PreviousSeatCount: a.PreviousSeatCount,
		CreatedAt:         a.CreatedAt,
	}
}
