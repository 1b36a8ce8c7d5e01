package contracts

import (
	"context"

	"github.com/XavierBriggs/Janus/pkg/models"
)

// OpportunitySink receives newly detected opportunities (database, streams, brokers)
type OpportunitySink interface {
	// Name identifies the sink in logs
	Name() string

	// Publish delivers the opportunities of one scan
	Publish(ctx context.Context, scanID string, opportunities []models.Opportunity) error
}
