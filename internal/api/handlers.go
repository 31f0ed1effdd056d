// Package api exposes the scoring engines over HTTP. Score reads are cached
// in Redis with singleflight collapse so dashboard refreshes do not stampede
// the database.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/accountpulse/scoring-server/internal/events"
	"github.com/accountpulse/scoring-server/internal/service"
	"github.com/accountpulse/scoring-server/internal/settings"
)

const (
	defaultCacheDuration  = 10 * time.Minute
	defaultRequestTimeout = 15 * time.Second
	publishTimeout        = 5 * time.Second
)

type cacheKeyType string

const (
	cacheKeyHealthScore  cacheKeyType = "api:health_score"
	cacheKeyChurnRisk    cacheKeyType = "api:churn_risk"
	cacheKeyHealthScores cacheKeyType = "api:health_scores"
	cacheKeyChurnRisks   cacheKeyType = "api:churn_risks"
)

type Handlers struct {
	health   HealthScorer
	churn    ChurnScorer
	admin    SettingsAdmin
	cache    Cacher
	events   ScorePublisher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewHandlers initializes the HTTP handlers. Cache and publisher are
// optional; nil disables response caching and event publishing respectively.
func NewHandlers(health HealthScorer, churn ChurnScorer, admin SettingsAdmin, cache Cacher, publisher ScorePublisher, logger *zap.Logger, ttl time.Duration) *Handlers {
	if health == nil {
		panic("nil HealthScorer provided to NewHandlers")
	}
	if churn == nil {
		panic("nil ChurnScorer provided to NewHandlers")
	}
	if admin == nil {
		panic("nil SettingsAdmin provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Handlers{
		health:   health,
		churn:    churn,
		admin:    admin,
		cache:    cache,
		events:   publisher,
		logger:   logger.Named("api-handler"),
		cacheTTL: ttl,
	}
}

// Router builds the route table.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1/orgs/{org}").Subrouter()
	v1.HandleFunc("/accounts/{account}/health-score", h.getHealthScore).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{account}/churn-risk", h.getChurnRisk).Methods(http.MethodGet)
	v1.HandleFunc("/health-scores", h.getHealthScores).Methods(http.MethodGet)
	v1.HandleFunc("/churn-risks", h.getChurnRisks).Methods(http.MethodGet)
	v1.HandleFunc("/settings/health", h.putHealthSettings).Methods(http.MethodPut)
	v1.HandleFunc("/settings/churn", h.putChurnSettings).Methods(http.MethodPut)
	return r
}

func (h *Handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type healthScoresResponse struct {
	OrganizationID string                             `json:"organization_id"`
	Count          int                                `json:"count"`
	Scores         map[string]service.HealthBreakdown `json:"scores"`
}

type churnRisksResponse struct {
	OrganizationID string                            `json:"organization_id"`
	Count          int                               `json:"count"`
	Scores         map[string]service.ChurnBreakdown `json:"scores"`
}

func (h *Handlers) getHealthScore(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	org, account := vars["org"], vars["account"]

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := fmt.Sprintf("%s:%s:%s", cacheKeyHealthScore, org, account)
	breakdown, err := findAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (service.HealthBreakdown, error) {
		b, err := h.health.ScoreAccount(fetchCtx, org, account)
		if err != nil {
			return service.HealthBreakdown{}, err
		}
		h.publishScores([]events.ScoreEvent{healthEvent(org, b)})
		return b, nil
	})
	if err != nil {
		h.handleError(w, ctx, "GetHealthScore", err)
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handlers) getChurnRisk(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	org, account := vars["org"], vars["account"]

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := fmt.Sprintf("%s:%s:%s", cacheKeyChurnRisk, org, account)
	breakdown, err := findAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (service.ChurnBreakdown, error) {
		b, err := h.churn.ScoreAccount(fetchCtx, org, account)
		if err != nil {
			return service.ChurnBreakdown{}, err
		}
		h.publishScores([]events.ScoreEvent{churnEvent(org, b)})
		return b, nil
	})
	if err != nil {
		h.handleError(w, ctx, "GetChurnRisk", err)
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handlers) getHealthScores(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := fmt.Sprintf("%s:%s", cacheKeyHealthScores, org)
	resp, err := findAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (healthScoresResponse, error) {
		scores, err := h.health.ScoreOrganization(fetchCtx, org)
		if err != nil {
			return healthScoresResponse{}, err
		}

		scoreEvents := make([]events.ScoreEvent, 0, len(scores))
		for _, b := range scores {
			scoreEvents = append(scoreEvents, healthEvent(org, b))
		}
		h.publishScores(scoreEvents)

		return healthScoresResponse{OrganizationID: org, Count: len(scores), Scores: scores}, nil
	})
	if err != nil {
		h.handleError(w, ctx, "GetHealthScores", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) getChurnRisks(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := fmt.Sprintf("%s:%s", cacheKeyChurnRisks, org)
	resp, err := findAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (churnRisksResponse, error) {
		scores, err := h.churn.ScoreOrganization(fetchCtx, org)
		if err != nil {
			return churnRisksResponse{}, err
		}

		scoreEvents := make([]events.ScoreEvent, 0, len(scores))
		for _, b := range scores {
			scoreEvents = append(scoreEvents, churnEvent(org, b))
		}
		h.publishScores(scoreEvents)

		return churnRisksResponse{OrganizationID: org, Count: len(scores), Scores: scores}, nil
	})
	if err != nil {
		h.handleError(w, ctx, "GetChurnRisks", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) putHealthSettings(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]

	var cfg settings.HealthSettings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	if err := h.admin.UpdateHealthSettings(ctx, org, cfg); err != nil {
		h.handleError(w, ctx, "PutHealthSettings", err)
		return
	}

	h.invalidateOrg(ctx, org)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) putChurnSettings(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]

	var cfg settings.ChurnSettings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	if err := h.admin.UpdateChurnSettings(ctx, org, cfg); err != nil {
		h.handleError(w, ctx, "PutChurnSettings", err)
		return
	}

	h.invalidateOrg(ctx, org)
	w.WriteHeader(http.StatusNoContent)
}

// invalidateOrg drops the organization-wide cached score responses after a
// settings change. Per-account entries are left to expire with their TTL.
func (h *Handlers) invalidateOrg(ctx context.Context, org string) {
	if h.cache == nil {
		return
	}
	keys := []string{
		fmt.Sprintf("%s:%s", cacheKeyHealthScores, org),
		fmt.Sprintf("%s:%s", cacheKeyChurnRisks, org),
	}
	if err := h.cache.Delete(ctx, keys...); err != nil {
		h.logger.Warn("cache invalidation failed",
			zap.String("organization_id", org),
			zap.Error(err))
	}
}

// publishScores emits events without blocking the response path. Failures
// are logged only.
func (h *Handlers) publishScores(scoreEvents []events.ScoreEvent) {
	if h.events == nil || len(scoreEvents) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := h.events.Publish(ctx, scoreEvents); err != nil {
			h.logger.Warn("score event publish failed",
				zap.Int("count", len(scoreEvents)),
				zap.Error(err))
		}
	}()
}

func healthEvent(org string, b service.HealthBreakdown) events.ScoreEvent {
	return events.ScoreEvent{
		OrganizationID: org,
		AccountID:      b.AccountID,
		Kind:           events.KindHealth,
		Score:          b.Overall,
		Degraded:       b.Degraded,
		ComputedAt:     b.ComputedAt,
	}
}

func churnEvent(org string, b service.ChurnBreakdown) events.ScoreEvent {
	return events.ScoreEvent{
		OrganizationID: org,
		AccountID:      b.AccountID,
		Kind:           events.KindChurn,
		Score:          b.Overall,
		Degraded:       b.Degraded,
		ComputedAt:     b.ComputedAt,
	}
}

func (h *Handlers) handleError(w http.ResponseWriter, ctx context.Context, op string, err error) {
	switch ctx.Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		writeError(w, http.StatusRequestTimeout, "request canceled")
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}

	switch {
	case errors.Is(err, settings.ErrInvalidSettings):
		h.logger.Info("settings rejected", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAccountNotFound):
		h.logger.Info("account not found", zap.String("op", op))
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", op))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
