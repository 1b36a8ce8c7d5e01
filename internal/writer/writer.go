package writer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/XavierBriggs/Janus/pkg/contracts"
	"github.com/XavierBriggs/Janus/pkg/models"
)

// Opportunity statuses stored in Alexandria
const (
	StatusOpen       = "open"
	StatusSuperseded = "superseded"
	StatusExpired    = "expired"
)

// Writer persists detected opportunities to Alexandria DB
type Writer struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ contracts.OpportunitySink = (*Writer)(nil)

// NewWriter creates a new opportunity writer
func NewWriter(db *sql.DB, logger *zap.Logger) *Writer {
	return &Writer{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Name identifies the sink in logs
func (w *Writer) Name() string {
	return "alexandria"
}

// Publish implements contracts.OpportunitySink
func (w *Writer) Publish(ctx context.Context, scanID string, opportunities []models.Opportunity) error {
	return w.WriteOpportunities(ctx, scanID, opportunities)
}

// WriteOpportunities stores opportunities and their bets in one transaction.
// Open rows of the same sport and match are superseded first so only the
// latest opportunity per match stays open.
func (w *Writer) WriteOpportunities(ctx context.Context, scanID string, opportunities []models.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Step 1: Supersede previous open rows
	if err := w.supersedePrevious(ctx, tx, opportunities); err != nil {
		return fmt.Errorf("supersede previous opportunities: %w", err)
	}

	// Step 2: Insert opportunity rows
	ids := make([]int64, len(opportunities))
	detectedAt := w.now().UTC()
	for i, opp := range opportunities {
		id, err := w.insertOpportunity(ctx, tx, scanID, opp, detectedAt)
		if err != nil {
			return fmt.Errorf("insert opportunity %s: %w", opp.Match, err)
		}
		ids[i] = id
	}

	// Step 3: Batch insert bets
	if err := w.insertBets(ctx, tx, ids, opportunities); err != nil {
		return fmt.Errorf("insert bets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	w.logger.Debug("opportunities written",
		zap.String("scan_id", scanID),
		zap.Int("count", len(opportunities)),
	)
	return nil
}

// supersedePrevious marks open rows for the same (sport, match) as superseded
func (w *Writer) supersedePrevious(ctx context.Context, tx *sql.Tx, opportunities []models.Opportunity) error {
	query := `
		UPDATE arbitrage_opportunities
		SET status = 'superseded'
		WHERE status = 'open'
		  AND (sport_key, match) IN (
			SELECT UNNEST($1::text[]), UNNEST($2::text[])
		  )
	`

	sportKeys := make([]string, len(opportunities))
	matches := make([]string, len(opportunities))
	for i, opp := range opportunities {
		sportKeys[i] = opp.Sport
		matches[i] = opp.Match
	}

	_, err := tx.ExecContext(ctx, query, pq.Array(sportKeys), pq.Array(matches))
	return err
}

// insertOpportunity inserts one opportunity row and returns its id
func (w *Writer) insertOpportunity(ctx context.Context, tx *sql.Tx, scanID string, opp models.Opportunity, detectedAt time.Time) (int64, error) {
	query := `
		INSERT INTO arbitrage_opportunities (
			scan_id, sport_key, match, commence_time, total_min_probability,
			total_investment, guaranteed_return, profit, profit_percentage,
			status, detected_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'open', $10)
		RETURNING opportunity_id
	`

	var id int64
	err := tx.QueryRowContext(ctx, query,
		scanID, opp.Sport, opp.Match, opp.CommenceTime, opp.TotalMinProbability,
		opp.TotalInvestment, opp.GuaranteedReturn, opp.Profit, opp.ProfitPercentage,
		detectedAt,
	).Scan(&id)
	return id, err
}

// insertBets inserts every bet with UNNEST for batch insert
func (w *Writer) insertBets(ctx context.Context, tx *sql.Tx, ids []int64, opportunities []models.Opportunity) error {
	query := `
		INSERT INTO arbitrage_bets (
			opportunity_id, outcome_name, book_key, book_name,
			price, implied_probability, bet_amount
		)
		SELECT * FROM UNNEST(
			$1::bigint[], $2::text[], $3::text[], $4::text[],
			$5::double precision[], $6::double precision[], $7::double precision[]
		)
	`

	var (
		oppIDs        []int64
		outcomes      []string
		bookKeys      []string
		bookNames     []string
		prices        []float64
		probabilities []float64
		amounts       []float64
	)
	for i, opp := range opportunities {
		for _, bet := range opp.Bets {
			oppIDs = append(oppIDs, ids[i])
			outcomes = append(outcomes, bet.Outcome)
			bookKeys = append(bookKeys, bet.BookmakerKey)
			bookNames = append(bookNames, bet.Bookmaker)
			prices = append(prices, bet.Odds)
			probabilities = append(probabilities, bet.ImpliedProbability)
			amounts = append(amounts, bet.BetAmount)
		}
	}
	if len(oppIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(oppIDs), pq.Array(outcomes), pq.Array(bookKeys), pq.Array(bookNames),
		pq.Array(prices), pq.Array(probabilities), pq.Array(amounts),
	)
	return err
}
