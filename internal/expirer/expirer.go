// Package expirer closes persisted opportunities whose match has started.
package expirer

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Expirer updates opportunity status based on commence_time
type Expirer struct {
	db           *sql.DB
	logger       *zap.Logger
	pollInterval time.Duration
	retention    time.Duration
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// DefaultPollInterval is used when NewExpirer gets a non-positive interval
const DefaultPollInterval = time.Minute

// NewExpirer creates a new opportunity expirer. Expired rows older than
// retention are deleted; zero or negative retention keeps them forever.
func NewExpirer(db *sql.DB, logger *zap.Logger, pollInterval, retention time.Duration) *Expirer {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Expirer{
		db:           db,
		logger:       logger,
		pollInterval: pollInterval,
		retention:    retention,
		stopChan:     make(chan struct{}),
	}
}

// Start runs an immediate pass, then one pass per poll interval
func (e *Expirer) Start(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ticker := time.NewTicker(e.pollInterval)
		defer ticker.Stop()

		e.logger.Info("opportunity expirer started", zap.Duration("interval", e.pollInterval))
		e.runLogged(ctx)

		for {
			select {
			case <-ticker.C:
				e.runLogged(ctx)
			case <-e.stopChan:
				e.logger.Info("opportunity expirer stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer
func (e *Expirer) Stop() {
	close(e.stopChan)
	e.wg.Wait()
}

func (e *Expirer) runLogged(ctx context.Context) {
	expired, purged, err := e.RunOnce(ctx)
	if err != nil {
		e.logger.Error("expire pass failed", zap.Error(err))
		return
	}
	if expired > 0 || purged > 0 {
		e.logger.Info("expire pass complete",
			zap.Int64("expired", expired),
			zap.Int64("purged", purged),
		)
	}
}

// RunOnce expires started opportunities and purges old expired ones
func (e *Expirer) RunOnce(ctx context.Context) (expired, purged int64, err error) {
	expireQuery := `
		UPDATE arbitrage_opportunities
		SET status = 'expired'
		WHERE status IN ('open', 'superseded')
		  AND commence_time <= NOW()
	`

	result, err := e.db.ExecContext(ctx, expireQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("expire opportunities: %w", err)
	}
	expired, _ = result.RowsAffected()

	if e.retention <= 0 {
		return expired, 0, nil
	}

	// Bets cascade on delete
	purgeQuery := `
		DELETE FROM arbitrage_opportunities
		WHERE status = 'expired'
		  AND commence_time < $1
	`

	result, err = e.db.ExecContext(ctx, purgeQuery, time.Now().Add(-e.retention).UTC())
	if err != nil {
		return expired, 0, fmt.Errorf("purge expired opportunities: %w", err)
	}
	purged, _ = result.RowsAffected()

	return expired, purged, nil
}
