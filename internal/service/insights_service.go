// Package service exposes the insights engine over a JSON HTTP API. The
// handlers fetch a transaction snapshot for the requesting user, invoke the
// engine, and serialize its value objects as-is; all analysis semantics
// live in the insights package.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/orionfin/orion/backend/internal/categorize"
	"github.com/orionfin/orion/backend/internal/insights"
	"github.com/orionfin/orion/backend/internal/logger"
	"github.com/orionfin/orion/backend/internal/model"
	"github.com/orionfin/orion/backend/internal/store"
)

// userIDHeader carries the authenticated user's ID, set by the deployment's
// edge; authentication itself is outside this service.
const userIDHeader = "X-User-ID"

// healthWindowDays is the transaction window backing the health score.
const healthWindowDays = 90

// InsightsService wires the engine, the categorizer, and the store behind
// HTTP handlers.
type InsightsService struct {
	store       store.Store
	engine      *insights.Engine
	categorizer *categorize.Categorizer
	log         zerolog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewInsightsService creates the service over the given store.
func NewInsightsService(st store.Store, log zerolog.Logger) *InsightsService {
	return &InsightsService{
		store:       st,
		engine:      insights.NewEngine(),
		categorizer: categorize.New(st, log),
		log:         log,
		now:         time.Now,
	}
}

// Register mounts all insight endpoints on the mux.
func (s *InsightsService) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/insights/spending-patterns", s.handleSpendingPatterns)
	mux.HandleFunc("GET /v1/insights/predict-spending", s.handlePredictSpending)
	mux.HandleFunc("GET /v1/insights/anomalies", s.handleAnomalies)
	mux.HandleFunc("GET /v1/insights/recurring-payments", s.handleRecurringPayments)
	mux.HandleFunc("GET /v1/insights/savings-opportunities", s.handleSavingsOpportunities)
	mux.HandleFunc("GET /v1/insights/financial-health", s.handleFinancialHealth)
	mux.HandleFunc("POST /v1/insights/categorize", s.handleCategorize)
}

func (s *InsightsService) handleSpendingPatterns(w http.ResponseWriter, r *http.Request) {
	userID, months, ok := s.scopeAndMonths(w, r, 12)
	if !ok {
		return
	}

	records, err := s.fetchWindow(r, userID, months)
	if err != nil {
		s.storeError(w, r, "list transactions", err)
		return
	}

	report, err := s.engine.AnalyzeSpending(records, months)
	if err != nil {
		s.engineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *InsightsService) handlePredictSpending(w http.ResponseWriter, r *http.Request) {
	userID, horizon, ok := s.scopeAndMonths(w, r, 6)
	if !ok {
		return
	}

	// Fetch at least twice the horizon of history, 12 months minimum.
	historyMonths := horizon * 2
	if historyMonths < 12 {
		historyMonths = 12
	}
	records, err := s.fetchWindow(r, userID, historyMonths)
	if err != nil {
		s.storeError(w, r, "list transactions", err)
		return
	}

	forecast, err := s.engine.ForecastSpending(records, horizon)
	if err != nil {
		s.engineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, forecast)
}

func (s *InsightsService) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, months, ok := s.scopeAndMonths(w, r, 6)
	if !ok {
		return
	}

	records, err := s.fetchWindow(r, userID, months)
	if err != nil {
		s.storeError(w, r, "list transactions", err)
		return
	}

	findings := s.engine.DetectAnomalies(records)
	if findings == nil {
		findings = []insights.AnomalyFinding{}
	}
	s.writeJSON(w, http.StatusOK, findings)
}

func (s *InsightsService) handleRecurringPayments(w http.ResponseWriter, r *http.Request) {
	userID, months, ok := s.scopeAndMonths(w, r, 12)
	if !ok {
		return
	}

	records, err := s.fetchWindow(r, userID, months)
	if err != nil {
		s.storeError(w, r, "list transactions", err)
		return
	}

	groups := insights.FindRecurring(records)
	if groups == nil {
		groups = []insights.RecurringGroup{}
	}
	s.writeJSON(w, http.StatusOK, groups)
}

func (s *InsightsService) handleSavingsOpportunities(w http.ResponseWriter, r *http.Request) {
	userID, months, ok := s.scopeAndMonths(w, r, 6)
	if !ok {
		return
	}

	records, err := s.fetchWindow(r, userID, months)
	if err != nil {
		s.storeError(w, r, "list transactions", err)
		return
	}

	opportunities := insights.FindSavingsOpportunities(insights.BuildFeatures(records))
	if opportunities == nil {
		opportunities = []insights.SavingsOpportunity{}
	}
	s.writeJSON(w, http.StatusOK, opportunities)
}

func (s *InsightsService) handleFinancialHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.scope(w, r)
	if !ok {
		return
	}

	// Category context comes from a year of history; the score itself from
	// the last 90 days.
	yearRecords, err := s.fetchWindow(r, userID, 12)
	if err != nil {
		s.storeError(w, r, "list transactions", err)
		return
	}
	breakdown := insights.AnalyzeCategories(insights.BuildFeatures(yearRecords))

	end := s.now()
	start := end.AddDate(0, 0, -healthWindowDays)
	recentRecords, err := s.store.ListTransactions(r.Context(), userID, start, end)
	if err != nil {
		s.storeError(w, r, "list transactions", err)
		return
	}

	score := s.engine.FinancialHealth(recentRecords, breakdown)
	s.writeJSON(w, http.StatusOK, score)
}

func (s *InsightsService) handleCategorize(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.scope(w, r)
	if !ok {
		return
	}

	var req struct {
		TransactionIDs []string `json:"transaction_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.categorizer.CategorizeForUser(r.Context(), userID, req.TransactionIDs)
	if err != nil {
		s.storeError(w, r, "categorize transactions", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"categorized": updated,
		"message":     fmt.Sprintf("Successfully categorized %d transactions", updated),
	})
}

// fetchWindow lists the user's transactions for the trailing number of
// months ending now.
func (s *InsightsService) fetchWindow(r *http.Request, userID string, months int) ([]model.Transaction, error) {
	end := s.now()
	start := end.AddDate(0, -months, 0)
	return s.store.ListTransactions(r.Context(), userID, start, end)
}

// scope extracts the requesting user, rejecting unscoped requests.
func (s *InsightsService) scope(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		s.writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return "", false
	}
	return userID, true
}

// scopeAndMonths extracts the user and the months query parameter,
// rejecting non-positive or malformed values before any computation.
func (s *InsightsService) scopeAndMonths(w http.ResponseWriter, r *http.Request, defaultMonths int) (string, int, bool) {
	userID, ok := s.scope(w, r)
	if !ok {
		return "", 0, false
	}

	months := defaultMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "months must be an integer")
			return "", 0, false
		}
		months = parsed
	}
	if months <= 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("months must be positive, got %d", months))
		return "", 0, false
	}
	return userID, months, true
}

func (s *InsightsService) engineError(w http.ResponseWriter, err error) {
	if errors.Is(err, insights.ErrInvalidParameter) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *InsightsService) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := logger.FromContext(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msgf("failed to %s", op)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, "failed to "+op)
}

func (s *InsightsService) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *InsightsService) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
