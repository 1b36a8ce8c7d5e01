package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/XavierBriggs/Janus/adapters/theoddsapi"
	"github.com/XavierBriggs/Janus/internal/arbitrage"
	"github.com/XavierBriggs/Janus/internal/bookmakers"
	"github.com/XavierBriggs/Janus/internal/scanner"
	"github.com/XavierBriggs/Janus/pkg/models"
)

// Scanner is the subset of *scanner.Scanner the handlers call
type Scanner interface {
	ScanSport(ctx context.Context, sport string, commenceTimeFrom time.Time, cfg arbitrage.Config) (*models.ScanResult, error)
	ScanSports(ctx context.Context, sports []string, commenceTimeFrom time.Time, cfg arbitrage.Config) (*models.BatchResult, error)
}

// SportLister returns the provider's sport catalog
type SportLister interface {
	FetchSports(ctx context.Context) ([]models.Sport, error)
}

// HealthFunc reports whether a dependency is reachable
type HealthFunc func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	scanner  Scanner
	sports   SportLister
	defaults arbitrage.Config
	checks   map[string]HealthFunc
	logger   *zap.Logger
}

// NewHandler creates a new handler. defaults apply to every request field
// the caller leaves out.
func NewHandler(s Scanner, sports SportLister, defaults arbitrage.Config, logger *zap.Logger) *Handler {
	return &Handler{
		scanner:  s,
		sports:   sports,
		defaults: defaults,
		checks:   make(map[string]HealthFunc),
		logger:   logger,
	}
}

// AddHealthCheck registers a dependency probed by /health
func (h *Handler) AddHealthCheck(name string, fn HealthFunc) {
	h.checks[name] = fn
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// ScanRequest is the body of POST /api/arbitrage/multiple
type ScanRequest struct {
	Sports           []string `json:"sports"`
	CommenceTimeFrom string   `json:"commenceTimeFrom,omitempty"`
	TotalInvestment  *float64 `json:"totalInvestment,omitempty"`
	Bookmakers       []string `json:"bookmakers,omitempty"`
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.respondError(w, http.StatusServiceUnavailable, name+" unhealthy", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "janus",
	})
}

// GetSports lists the provider's sports
func (h *Handler) GetSports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	sports, err := h.sports.FetchSports(ctx)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to fetch sports", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sports": sports,
	})
}

// GetSportsbooks lists the bookmakers a scan can be restricted to
func (h *Handler) GetSportsbooks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sportsbooks": bookmakers.All(),
		"defaults":    bookmakers.DefaultKeys(),
	})
}

// GetArbitrage scans one sport
// Query params: sport (required), commenceTimeFrom, totalInvestment, bookmakers
func (h *Handler) GetArbitrage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	q := r.URL.Query()
	sport := strings.TrimSpace(q.Get("sport"))
	if sport == "" {
		h.respondError(w, http.StatusBadRequest, "Sport key is required", nil)
		return
	}

	from, err := parseCommenceTime(q.Get("commenceTimeFrom"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	cfg := h.defaults
	if raw := q.Get("totalInvestment"); raw != "" {
		total, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "totalInvestment must be a number", nil)
			return
		}
		cfg.TotalInvestment = total
	}
	if q.Has("bookmakers") {
		cfg.AllowedBookmakers = nonNil(bookmakers.ParseKeys(q.Get("bookmakers")))
	}

	result, err := h.scanner.ScanSport(ctx, sport, from, cfg)
	if err != nil {
		h.respondScanError(w, err)
		return
	}

	resp := map[string]interface{}{
		"sport":         sport,
		"opportunities": result.Opportunities,
		"count":         len(result.Opportunities),
	}
	annotateUnknownBookmakers(resp, cfg.AllowedBookmakers)
	respondJSON(w, http.StatusOK, resp)
}

// ScanMultiple scans several sports; a failing sport is reported in errors
func (h *Handler) ScanMultiple(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if len(req.Sports) == 0 {
		h.respondError(w, http.StatusBadRequest, "Sports array is required", nil)
		return
	}

	from, err := parseCommenceTime(req.CommenceTimeFrom)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	cfg := h.defaults
	if req.TotalInvestment != nil {
		cfg.TotalInvestment = *req.TotalInvestment
	}
	if req.Bookmakers != nil {
		cfg.AllowedBookmakers = nonNil(bookmakers.ParseKeys(strings.Join(req.Bookmakers, ",")))
	}

	batch, err := h.scanner.ScanSports(ctx, req.Sports, from, cfg)
	if err != nil {
		h.respondScanError(w, err)
		return
	}

	errs := batch.Errors
	if errs == nil {
		errs = map[string]string{}
	}
	resp := map[string]interface{}{
		"scanId":        batch.ScanID,
		"opportunities": batch.Opportunities,
		"count":         len(batch.Opportunities),
		"errors":        errs,
	}
	annotateUnknownBookmakers(resp, cfg.AllowedBookmakers)
	respondJSON(w, http.StatusOK, resp)
}

// annotateUnknownBookmakers flags allow-list keys missing from the catalog.
// They are still passed to the engine since the vendor may quote them.
func annotateUnknownBookmakers(resp map[string]interface{}, allowed []string) {
	if unknown := bookmakers.Unknown(allowed); len(unknown) > 0 {
		resp["unknownBookmakers"] = unknown
	}
}

func (h *Handler) respondScanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, arbitrage.ErrInvalidConfig), errors.Is(err, scanner.ErrNoSports):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error(), err)
	}
}

// parseCommenceTime accepts an empty value (provider defaults to now)
func parseCommenceTime(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return theoddsapi.ParseCommenceTime(raw)
}

// nonNil keeps an explicitly supplied but empty allow-list distinguishable
// from "unrestricted"
func nonNil(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Error(message, zap.Int("status", status), zap.Error(err))
	}
	respondJSON(w, status, ErrorResponse{Error: message, Code: status})
}
