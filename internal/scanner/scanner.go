// Package scanner runs the fetch, flatten and detect pipeline for one or
// more sports.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/XavierBriggs/Janus/internal/arbitrage"
	"github.com/XavierBriggs/Janus/internal/metrics"
	"github.com/XavierBriggs/Janus/internal/normalizer"
	"github.com/XavierBriggs/Janus/internal/registry"
	"github.com/XavierBriggs/Janus/pkg/contracts"
	"github.com/XavierBriggs/Janus/pkg/models"
)

// ErrNoSports is returned when a batch scan names no sport
var ErrNoSports = errors.New("at least one sport is required")

const defaultConcurrency = 4

// Scanner turns provider snapshots into arbitrage opportunities
type Scanner struct {
	adapter     contracts.VendorAdapter
	registry    *registry.SportRegistry
	metrics     *metrics.Metrics
	logger      *zap.Logger
	regions     []string
	eventLimit  int
	concurrency int
	now         func() time.Time
}

// Option customizes a Scanner
type Option func(*Scanner)

// WithRegistry uses the registered sport modules for regions, markets and event limits
func WithRegistry(reg *registry.SportRegistry) Option {
	return func(s *Scanner) { s.registry = reg }
}

// WithMetrics records scan metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithRegions sets the regions requested for sports without a module
func WithRegions(regions []string) Option {
	return func(s *Scanner) { s.regions = regions }
}

// WithEventLimit sets the event cap for sports without a module
func WithEventLimit(limit int) Option {
	return func(s *Scanner) { s.eventLimit = limit }
}

// WithConcurrency bounds how many sports a batch fetches at once
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewScanner creates a scanner over the given provider
func NewScanner(adapter contracts.VendorAdapter, logger *zap.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		adapter:     adapter,
		logger:      logger,
		eventLimit:  normalizer.DefaultEventLimit,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanSport fetches one sport and returns its opportunities, each stamped
// with the sport key. An invalid cfg fails before the provider is called.
func (s *Scanner) ScanSport(ctx context.Context, sport string, commenceTimeFrom time.Time, cfg arbitrage.Config) (*models.ScanResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sport = strings.TrimSpace(sport)
	if sport == "" {
		return nil, ErrNoSports
	}
	return s.scan(ctx, uuid.New().String(), sport, commenceTimeFrom, cfg)
}

// ScanSports scans every sport concurrently and merges the opportunities by
// profit percentage. A failing sport is reported in Errors and never aborts
// the others.
func (s *Scanner) ScanSports(ctx context.Context, sports []string, commenceTimeFrom time.Time, cfg arbitrage.Config) (*models.BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	keys := uniqueSports(sports)
	if len(keys) == 0 {
		return nil, ErrNoSports
	}

	scanID := uuid.New().String()
	results := make([]*models.ScanResult, len(keys))
	errs := make(map[string]string)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, sport := range keys {
		i, sport := i, sport
		g.Go(func() error {
			result, err := s.scan(ctx, scanID, sport, commenceTimeFrom, cfg)
			if err != nil {
				mu.Lock()
				errs[sport] = err.Error()
				mu.Unlock()
				return nil
			}
			results[i] = result
			return nil
		})
	}
	// Workers never return errors; failures live in errs
	_ = g.Wait()

	batch := &models.BatchResult{
		ScanID:        scanID,
		Opportunities: make([]models.Opportunity, 0),
		ScannedAt:     s.now().UTC(),
	}
	for _, result := range results {
		if result != nil {
			batch.Opportunities = append(batch.Opportunities, result.Opportunities...)
		}
	}
	sort.SliceStable(batch.Opportunities, func(i, j int) bool {
		return batch.Opportunities[i].ProfitPercentage > batch.Opportunities[j].ProfitPercentage
	})
	if len(errs) > 0 {
		batch.Errors = errs
	}

	s.logger.Info("batch scan complete",
		zap.String("scan_id", scanID),
		zap.Int("sports", len(keys)),
		zap.Int("failed", len(errs)),
		zap.Int("opportunities", len(batch.Opportunities)),
	)
	return batch, nil
}

// scan runs the pipeline for one sport with an already validated cfg
func (s *Scanner) scan(ctx context.Context, scanID, sport string, commenceTimeFrom time.Time, cfg arbitrage.Config) (*models.ScanResult, error) {
	start := s.now()
	regions, markets, limit := s.sportSettings(sport)

	events, err := s.adapter.FetchOdds(ctx, &models.FetchOddsOptions{
		Sport:            sport,
		Regions:          regions,
		Markets:          markets,
		CommenceTimeFrom: commenceTimeFrom,
	})
	s.recordRateLimits()
	if err != nil {
		s.recordScan(sport, "error", start)
		s.logger.Warn("odds fetch failed",
			zap.String("scan_id", scanID),
			zap.String("sport", sport),
			zap.Error(err),
		)
		return nil, fmt.Errorf("scan %s: %w", sport, err)
	}

	quotes := normalizer.Flatten(events, limit)
	opportunities, err := arbitrage.Detect(quotes, cfg)
	if err != nil {
		s.recordScan(sport, "error", start)
		return nil, fmt.Errorf("scan %s: %w", sport, err)
	}
	for i := range opportunities {
		opportunities[i].Sport = sport
	}

	s.recordScan(sport, "ok", start)
	if s.metrics != nil {
		s.metrics.QuotesProcessed.WithLabelValues(sport).Add(float64(len(quotes)))
		s.metrics.OpportunitiesSeen.WithLabelValues(sport).Add(float64(len(opportunities)))
	}

	s.logger.Debug("sport scanned",
		zap.String("scan_id", scanID),
		zap.String("sport", sport),
		zap.Int("events", len(events)),
		zap.Int("quotes", len(quotes)),
		zap.Int("opportunities", len(opportunities)),
	)

	return &models.ScanResult{
		ScanID:        scanID,
		Sport:         sport,
		Events:        len(events),
		Quotes:        len(quotes),
		Opportunities: opportunities,
		ScannedAt:     start.UTC(),
		NextCommence:  earliestCommence(events),
	}, nil
}

func earliestCommence(events []models.Event) time.Time {
	var earliest time.Time
	for _, event := range events {
		if event.CommenceTime.IsZero() {
			continue
		}
		if earliest.IsZero() || event.CommenceTime.Before(earliest) {
			earliest = event.CommenceTime
		}
	}
	return earliest.UTC()
}

func (s *Scanner) sportSettings(sport string) (regions, markets []string, limit int) {
	regions, limit = s.regions, s.eventLimit
	if s.registry == nil {
		return regions, nil, limit
	}
	module, ok := s.registry.Get(sport)
	if !ok {
		return regions, nil, limit
	}
	if r := module.GetRegions(); len(r) > 0 {
		regions = r
	}
	if l := module.GetEventLimit(); l > 0 {
		limit = l
	}
	return regions, module.GetMarkets(), limit
}

func (s *Scanner) recordScan(sport, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ScansTotal.WithLabelValues(sport, status).Inc()
	s.metrics.ScanDuration.WithLabelValues(sport).Observe(s.now().Sub(start).Seconds())
}

func (s *Scanner) recordRateLimits() {
	if s.metrics == nil {
		return
	}
	s.metrics.RequestsRemaining.Set(float64(s.adapter.GetRateLimits().RequestsRemaining))
}

func uniqueSports(sports []string) []string {
	seen := make(map[string]bool, len(sports))
	keys := make([]string, 0, len(sports))
	for _, sport := range sports {
		sport = strings.TrimSpace(sport)
		if sport == "" || seen[sport] {
			continue
		}
		seen[sport] = true
		keys = append(keys, sport)
	}
	return keys
}
