package contracts

import (
	"context"

	"github.com/XavierBriggs/Janus/pkg/models"
)

// VendorAdapter defines the interface for fetching odds snapshots from external vendors
type VendorAdapter interface {
	// FetchOdds retrieves the current odds snapshot for one sport
	FetchOdds(ctx context.Context, opts *models.FetchOddsOptions) ([]models.Event, error)

	// FetchSports retrieves the vendor's sport catalog
	FetchSports(ctx context.Context) ([]models.Sport, error)

	// GetRateLimits returns current rate limit information
	GetRateLimits() models.RateLimits
}
