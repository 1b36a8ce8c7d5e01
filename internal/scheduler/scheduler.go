package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/XavierBriggs/Janus/internal/arbitrage"
	"github.com/XavierBriggs/Janus/internal/metrics"
	"github.com/XavierBriggs/Janus/internal/registry"
	"github.com/XavierBriggs/Janus/pkg/contracts"
	"github.com/XavierBriggs/Janus/pkg/models"
)

// SportScanner runs one sport scan
type SportScanner interface {
	ScanSport(ctx context.Context, sport string, commenceTimeFrom time.Time, cfg arbitrage.Config) (*models.ScanResult, error)
}

// Deduper filters out opportunities that were already published
type Deduper interface {
	DetectNew(ctx context.Context, opps []models.Opportunity) ([]models.Opportunity, error)
	MarkSeen(ctx context.Context, opps []models.Opportunity) error
}

// Scheduler orchestrates polling for all registered sports
type Scheduler struct {
	scanner       SportScanner
	dedup         Deduper
	sinks         []contracts.OpportunitySink
	sportRegistry *registry.SportRegistry
	cfg           arbitrage.Config
	logger        *zap.Logger
	metrics       *metrics.Metrics
	jitterSeconds int
	now           func() time.Time
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// Option customizes a Scheduler
type Option func(*Scheduler)

// WithDeduper publishes only opportunities the deduper reports as new
func WithDeduper(d Deduper) Option {
	return func(s *Scheduler) { s.dedup = d }
}

// WithSinks sets where new opportunities are delivered
func WithSinks(sinks ...contracts.OpportunitySink) Option {
	return func(s *Scheduler) { s.sinks = append(s.sinks, sinks...) }
}

// WithMetrics counts sink failures
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithJitter adds up to n seconds to every poll interval
func WithJitter(n int) Option {
	return func(s *Scheduler) { s.jitterSeconds = n }
}

// NewScheduler creates a new polling scheduler
func NewScheduler(
	scanner SportScanner,
	sportRegistry *registry.SportRegistry,
	cfg arbitrage.Config,
	logger *zap.Logger,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		scanner:       scanner,
		sportRegistry: sportRegistry,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins polling for all registered sports
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	sports := s.sportRegistry.GetAll()
	if len(sports) == 0 {
		return fmt.Errorf("no sports registered")
	}

	for _, sport := range sports {
		if sport.GetPollInterval() <= 0 {
			return fmt.Errorf("sport %s: poll interval must be positive", sport.GetSportKey())
		}
	}

	for _, sport := range sports {
		s.wg.Add(1)
		go func(sport contracts.SportModule) {
			defer s.wg.Done()
			s.pollSport(ctx, sport)
		}(sport)

		s.logger.Info("started polling",
			zap.String("sport", sport.GetSportKey()),
			zap.Duration("interval", sport.GetPollInterval()),
		)
	}

	return nil
}

// Stop gracefully shuts down the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

// pollSport scans a sport immediately, then on every tick. Sports that
// implement RampedPoller get their interval recomputed after each scan.
func (s *Scheduler) pollSport(ctx context.Context, sport contracts.SportModule) {
	result, err := s.scanAndPublish(ctx, sport.GetSportKey())
	if err != nil {
		s.logger.Warn("initial poll failed", zap.String("sport", sport.GetSportKey()), zap.Error(err))
	}

	interval := s.nextInterval(sport, result)
	ticker := time.NewTicker(addJitter(interval, s.jitterSeconds))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			result, err := s.scanAndPublish(ctx, sport.GetSportKey())
			if err != nil {
				s.logger.Warn("poll failed", zap.String("sport", sport.GetSportKey()), zap.Error(err))
			}
			if next := s.nextInterval(sport, result); next != interval {
				s.logger.Debug("poll interval changed",
					zap.String("sport", sport.GetSportKey()),
					zap.Duration("from", interval),
					zap.Duration("to", next),
				)
				interval = next
				ticker.Reset(addJitter(interval, s.jitterSeconds))
			}
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// nextInterval picks the tick length after a scan. A failed scan, a sport
// without a ramp, or an empty slate keeps the fixed poll interval.
func (s *Scheduler) nextInterval(sport contracts.SportModule, result *models.ScanResult) time.Duration {
	interval := sport.GetPollInterval()

	ramped, ok := sport.(contracts.RampedPoller)
	if !ok || result == nil || result.NextCommence.IsZero() {
		return interval
	}
	if d := ramped.GetIntervalFor(result.NextCommence.Sub(s.now()).Hours()); d > 0 {
		return d
	}
	return interval
}

// scanAndPublish executes the full pipeline: scan → dedup → sinks → cache update.
// The scan result is returned even when a later stage fails.
func (s *Scheduler) scanAndPublish(ctx context.Context, sport string) (*models.ScanResult, error) {
	start := s.now()

	result, err := s.scanner.ScanSport(ctx, sport, start, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(result.Opportunities) == 0 {
		return result, nil
	}

	fresh := result.Opportunities
	if s.dedup != nil {
		fresh, err = s.dedup.DetectNew(ctx, result.Opportunities)
		if err != nil {
			return result, fmt.Errorf("detect new opportunities: %w", err)
		}
	}
	if len(fresh) == 0 {
		return result, nil
	}

	// A failing sink is logged and skipped; the rest still receive the batch
	delivered := len(s.sinks) == 0
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, result.ScanID, fresh); err != nil {
			s.logger.Error("sink publish failed",
				zap.String("sink", sink.Name()),
				zap.String("scan_id", result.ScanID),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			}
			continue
		}
		delivered = true
	}

	// Retry next tick when nothing accepted the batch
	if s.dedup != nil && delivered {
		if err := s.dedup.MarkSeen(ctx, fresh); err != nil {
			s.logger.Warn("update dedup cache failed", zap.Error(err))
		}
	}

	s.logger.Info("poll complete",
		zap.String("sport", sport),
		zap.String("scan_id", result.ScanID),
		zap.Int("events", result.Events),
		zap.Int("opportunities", len(result.Opportunities)),
		zap.Int("new", len(fresh)),
		zap.Duration("took", s.now().Sub(start)),
	)
	return result, nil
}

// addJitter adds random jitter to prevent synchronization
func addJitter(duration time.Duration, jitterSeconds int) time.Duration {
	if jitterSeconds <= 0 {
		return duration
	}

	jitter := time.Duration(rand.Intn(jitterSeconds)) * time.Second
	return duration + jitter
}
