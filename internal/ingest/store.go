package ingest

import (
	"context"

	"github.com/skrooge/skrooge/internal/models"
)

// Store is everything the reconciler needs from persistent storage. The
// concrete engine lives behind this boundary; internal/store provides the
// SQLite implementation.
type Store interface {
	// FindOrCreateRetailer resolves a retailer by exact name or by its
	// name-derived slug, creating it on first sighting. Implementations must
	// tolerate a concurrent create of the same retailer by falling back to a
	// lookup on conflict.
	FindOrCreateRetailer(ctx context.Context, name string) (models.Retailer, error)

	// CreateProduct persists a new catalog entry and returns it with its id set.
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)

	// FindDealByURLOrExternalID returns the deal matching the destination URL,
	// or failing that the upstream external id (when non-empty). Nil when no
	// deal matches.
	FindDealByURLOrExternalID(ctx context.Context, url, externalID string) (*models.Deal, error)

	// UpdateDealPrice mutates price fields and the updated timestamp in place.
	UpdateDealPrice(ctx context.Context, id string, price, originalPrice float64, discount int) error

	// CreateDeal persists a new deal and returns it with its id set.
	CreateDeal(ctx context.Context, d models.Deal) (models.Deal, error)

	// AppendPriceHistory records one immutable price observation.
	AppendPriceHistory(ctx context.Context, productID, retailerID string, price float64) error
}
