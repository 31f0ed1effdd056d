package service

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/accountpulse/scoring-server/internal/repository"
	"github.com/accountpulse/scoring-server/internal/service/mocks"
	dbbuilder "github.com/accountpulse/scoring-server/pkg/database"
)

func setupSignalDB(tb testing.TB) *repository.SignalRepository {
	tb.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	if err != nil {
		tb.Fatalf("failed to create db pool via builder: %v", err)
	}

	if err := repository.AutoMigrate(db, "sqlite3"); err != nil {
		db.Close()
		tb.Fatalf("failed to run migrations: %v", err)
	}

	now := time.Now().UTC()
	seed := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO accounts (id, organization_id, name, tracking_method, arr, previous_arr, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"acct-bench", "org-bench", "Bench Co", "arr", 120000.0, 100000.0, now.AddDate(0, -8, 0)}},
		{`INSERT INTO engagements (id, organization_id, account_id, type, status, occurred_at) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"e1", "org-bench", "acct-bench", "meeting", "completed", now.AddDate(0, 0, -2)}},
		{`INSERT INTO engagements (id, organization_id, account_id, type, status, occurred_at) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"e2", "org-bench", "acct-bench", "qbr", "completed", now.AddDate(0, 0, -9)}},
		{`INSERT INTO engagements (id, organization_id, account_id, type, status, occurred_at) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"e3", "org-bench", "acct-bench", "email", "scheduled", now.AddDate(0, 0, -15)}},
		{`INSERT INTO nps_responses (id, organization_id, account_id, score, responded_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"n1", "org-bench", "acct-bench", 80.0, now.AddDate(0, 0, -5)}},
		{`INSERT INTO nps_responses (id, organization_id, account_id, score, responded_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"n2", "org-bench", "acct-bench", 60.0, now.AddDate(0, 0, -40)}},
		{`INSERT INTO support_metrics (id, organization_id, account_id, provider, ticket_count, resolved_count,
			escalated_count, avg_resolution_hours, volume_trend, period_start)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"s1", "org-bench", "acct-bench", "zendesk", 12, 11, 1, 18.0, "stable", now.AddDate(0, 0, -7)}},
	}
	for _, s := range seed {
		if _, err := db.Exec(s.query, s.args...); err != nil {
			db.Close()
			tb.Fatalf("failed to seed db: %v", err)
		}
	}

	tb.Cleanup(func() { db.Close() })

	return repository.NewSignalRepository(db, "sqlite3")
}

func BenchmarkCalculateHealthScore(b *testing.B) {
	repo := setupSignalDB(b)
	svc := NewHealthScoreService(repo, &mocks.MockHealthSettingsSource{}, zap.NewNop())

	acct := AccountSnapshot{
		ID:             "acct-bench",
		OrganizationID: "org-bench",
		TrackingMethod: TrackingARR,
		ARR:            120000,
		PreviousARR:    100000,
		CreatedAt:      time.Now().AddDate(0, -8, 0),
	}

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = svc.CalculateHealthScore(context.Background(), acct)
	}
}

func BenchmarkCalculateChurnRisk(b *testing.B) {
	repo := setupSignalDB(b)
	svc := NewChurnRiskService(repo, &mocks.MockChurnSettingsSource{}, zap.NewNop())

	acct := AccountSnapshot{
		ID:             "acct-bench",
		OrganizationID: "org-bench",
		CreatedAt:      time.Now().AddDate(0, -10, 0),
	}

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = svc.CalculateChurnRisk(context.Background(), acct)
	}
}
