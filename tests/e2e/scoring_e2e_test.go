//go:build e2e

package e2e

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/accountpulse/scoring-server/internal/api"
	"github.com/accountpulse/scoring-server/internal/repository"
	"github.com/accountpulse/scoring-server/internal/service"
	"github.com/accountpulse/scoring-server/internal/settings"
	dbbuilder "github.com/accountpulse/scoring-server/pkg/database"
	"github.com/accountpulse/scoring-server/tests/e2e/mocks"
)

const testOrg = "e2e-org"

func setupServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db, "sqlite3"))

	logger := zap.NewNop()
	signalRepo := repository.NewSignalRepository(db, "sqlite3")
	settingsRepo := repository.NewSettingsRepository(db, "sqlite3")

	settingsService := settings.NewService(settingsRepo, logger)
	healthService := service.NewHealthScoreService(signalRepo, settingsService.Health(), logger)
	churnService := service.NewChurnRiskService(signalRepo, settingsService.Churn(), logger)

	handlers := api.NewHandlers(healthService, churnService, settingsService,
		&mocks.PassthroughCache{}, nil, logger, time.Minute)

	srv := httptest.NewServer(handlers.Router())
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})
	return srv, db
}

func seedHealthyAccount(t *testing.T, db *sql.DB, accountID string) {
	t.Helper()
	now := time.Now().UTC()

	_, err := db.Exec(`
		INSERT INTO accounts (id, organization_id, name, tracking_method, arr, previous_arr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		accountID, testOrg, "Acme Robotics", "arr", 120000.0, 100000.0, now.AddDate(0, 0, -240))
	require.NoError(t, err)

	engagements := []struct {
		id   string
		typ  string
		days int
	}{
		{"e1", "meeting", 2}, {"e2", "qbr", 7}, {"e3", "call", 12}, {"e4", "demo", 20},
	}
	for _, e := range engagements {
		_, err := db.Exec(`
			INSERT INTO engagements (id, organization_id, account_id, type, status, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			accountID+e.id, testOrg, accountID, e.typ, "completed", now.AddDate(0, 0, -e.days))
		require.NoError(t, err)
	}

	npsScores := []struct {
		id    string
		score float64
		days  int
	}{
		{"n1", 80, 5}, {"n2", 75, 40},
	}
	for _, n := range npsScores {
		_, err := db.Exec(`
			INSERT INTO nps_responses (id, organization_id, account_id, score, responded_at)
			VALUES (?, ?, ?, ?, ?)`,
			accountID+n.id, testOrg, accountID, n.score, now.AddDate(0, 0, -n.days))
		require.NoError(t, err)
	}
}

func getJSON(t *testing.T, url string, dest any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func TestE2E_HealthScore(t *testing.T) {
	srv, db := setupServer(t)
	seedHealthyAccount(t, db, "acct-1")

	var breakdown service.HealthBreakdown
	code := getJSON(t, srv.URL+"/v1/orgs/"+testOrg+"/accounts/acct-1/health-score", &breakdown)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "acct-1", breakdown.AccountID)
	assert.Equal(t, 73, breakdown.Overall)
	assert.InDelta(t, 56.0, breakdown.Engagement.Score, 0.001)
	assert.InDelta(t, 88.889, breakdown.Satisfaction.Score, 0.001)
	assert.InDelta(t, 60.0, breakdown.Activity.Score, 0.001)
	assert.InDelta(t, 92.0, breakdown.Growth.Score, 0.001)
	assert.InDelta(t, 75.0, breakdown.Support.Score, 0.001)
	assert.Equal(t, 25, breakdown.Weights.Engagement)
	assert.NotEmpty(t, breakdown.Analysis.Growth)
	assert.False(t, breakdown.Degraded)
}

func TestE2E_ChurnRisk(t *testing.T) {
	srv, db := setupServer(t)
	seedHealthyAccount(t, db, "acct-1")

	var breakdown service.ChurnBreakdown
	code := getJSON(t, srv.URL+"/v1/orgs/"+testOrg+"/accounts/acct-1/churn-risk", &breakdown)

	require.Equal(t, http.StatusOK, code)
	// 240-day-old account: 125 days to renewal, healthy usage, no detractors.
	assert.Equal(t, 125, breakdown.Contract.DaysToRenewal)
	assert.InDelta(t, 20.0, breakdown.Contract.Score, 0.001)
	assert.InDelta(t, 20.0, breakdown.Usage.Score, 0.001)
	assert.InDelta(t, 15.0, breakdown.Relationship.Score, 0.001)
	assert.InDelta(t, 10.0, breakdown.Satisfaction.Score, 0.001)
	assert.Equal(t, 17, breakdown.Overall)
}

func TestE2E_UnknownAccount(t *testing.T) {
	srv, _ := setupServer(t)

	code := getJSON(t, srv.URL+"/v1/orgs/"+testOrg+"/accounts/ghost/health-score", nil)

	assert.Equal(t, http.StatusNotFound, code)
}

func TestE2E_OrganizationBatch(t *testing.T) {
	srv, db := setupServer(t)
	seedHealthyAccount(t, db, "acct-1")
	seedHealthyAccount(t, db, "acct-2")

	var resp struct {
		OrganizationID string                             `json:"organization_id"`
		Count          int                                `json:"count"`
		Scores         map[string]service.HealthBreakdown `json:"scores"`
	}
	code := getJSON(t, srv.URL+"/v1/orgs/"+testOrg+"/health-scores", &resp)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, testOrg, resp.OrganizationID)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 73, resp.Scores["acct-1"].Overall)
	assert.Equal(t, 73, resp.Scores["acct-2"].Overall)
}

func TestE2E_SettingsChangeShiftsScores(t *testing.T) {
	srv, db := setupServer(t)
	seedHealthyAccount(t, db, "acct-1")
	scoreURL := srv.URL + "/v1/orgs/" + testOrg + "/accounts/acct-1/health-score"

	var before service.HealthBreakdown
	require.Equal(t, http.StatusOK, getJSON(t, scoreURL, &before))
	assert.Equal(t, 73, before.Overall)

	body := `{"template":"engagement_focused"}`
	req, err := http.NewRequest(http.MethodPut,
		srv.URL+"/v1/orgs/"+testOrg+"/settings/health", strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var after service.HealthBreakdown
	require.Equal(t, http.StatusOK, getJSON(t, scoreURL, &after))

	// Engagement now weighs 40 percent, pulling the overall toward the
	// weaker engagement component.
	assert.Equal(t, 40, after.Weights.Engagement)
	assert.Equal(t, 69, after.Overall)
}

func TestE2E_InvalidSettingsRejected(t *testing.T) {
	srv, _ := setupServer(t)

	body := `{"template":"custom","engagement_weight":400}`
	req, err := http.NewRequest(http.MethodPut,
		srv.URL+"/v1/orgs/"+testOrg+"/settings/health", strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
