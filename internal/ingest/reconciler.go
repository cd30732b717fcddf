// Package ingest orchestrates scrape runs and reconciles raw listings
// against persisted retailers, products, deals and price history.
package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/models"
	"github.com/skrooge/skrooge/internal/normalize"
)

// hotDiscountThreshold marks a deal "hot" at or above this discount percent.
const hotDiscountThreshold = 30

var (
	productWasRe      = regexp.MustCompile(`(?i)was\s*\$[\d,.]+`)
	productPriceRe    = regexp.MustCompile(`\$[\d,.]+`)
	productRetailerRe = regexp.MustCompile(`@\s*.+$`)
)

// Report aggregates the outcome of reconciling one listing batch.
type Report struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Reconciler maps raw listings onto persisted entities without creating
// duplicates or losing price-trend data.
type Reconciler struct {
	store Store
	log   *logging.Logger
}

// NewReconciler creates a Reconciler over the given store.
func NewReconciler(store Store, log *logging.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// ProcessListings reconciles each listing in order. A failing listing is
// logged, counted and skipped; it never aborts the batch.
func (r *Reconciler) ProcessListings(ctx context.Context, listings []models.RawListing) Report {
	var rep Report
	for _, listing := range listings {
		if err := r.processOne(ctx, listing, &rep); err != nil {
			r.log.Error("[reconciler] failed to process %q: %v", listing.Title, err)
			rep.Errors = append(rep.Errors, fmt.Sprintf("process %q: %v", listing.Title, err))
		}
	}
	r.log.Info("[reconciler] batch done: %d created, %d updated, %d skipped, %d errors",
		rep.Created, rep.Updated, rep.Skipped, len(rep.Errors))
	return rep
}

func (r *Reconciler) processOne(ctx context.Context, listing models.RawListing, rep *Report) error {
	// An unusable price never produces a persisted deal.
	if listing.Price <= 0 {
		rep.Skipped++
		return nil
	}

	retailer, err := r.store.FindOrCreateRetailer(ctx, retailerName(listing))
	if err != nil {
		return fmt.Errorf("resolve retailer: %w", err)
	}

	existing, err := r.store.FindDealByURLOrExternalID(ctx, listing.URL, listing.ExternalID)
	if err != nil {
		return fmt.Errorf("look up deal: %w", err)
	}

	if existing != nil {
		if existing.Price == listing.Price {
			// Unchanged price: no mutation, no history row. Repeated runs
			// must not flood the history with duplicate observations.
			rep.Skipped++
			return nil
		}
		if err := r.store.UpdateDealPrice(ctx, existing.ID, listing.Price, listing.OriginalPrice, listing.Discount); err != nil {
			return fmt.Errorf("update deal price: %w", err)
		}
		if err := r.store.AppendPriceHistory(ctx, existing.ProductID, retailer.ID, listing.Price); err != nil {
			return fmt.Errorf("append price history: %w", err)
		}
		rep.Updated++
		return nil
	}

	product, err := r.store.CreateProduct(ctx, buildProduct(listing))
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	deal := models.Deal{
		ProductID:     product.ID,
		RetailerID:    retailer.ID,
		Title:         truncate(listing.Title, 255),
		Description:   listing.Description,
		Price:         listing.Price,
		OriginalPrice: listing.OriginalPrice,
		Discount:      listing.Discount,
		URL:           listing.URL,
		ImageURL:      listing.ImageURL,
		Source:        listing.Source,
		ExternalID:    listing.ExternalID,
		IsHot:         listing.Discount >= hotDiscountThreshold,
	}
	if _, err := r.store.CreateDeal(ctx, deal); err != nil {
		return fmt.Errorf("create deal: %w", err)
	}
	if err := r.store.AppendPriceHistory(ctx, product.ID, retailer.ID, listing.Price); err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	rep.Created++
	return nil
}

// retailerName folds listings without a recognized retailer into a shared
// generic "Various" retailer.
func retailerName(listing models.RawListing) string {
	name := strings.TrimSpace(listing.RetailerName)
	if name == "" || name == "Unknown" {
		return "Various"
	}
	return name
}

// buildProduct derives a catalog entry from the listing title with price and
// retailer noise stripped. Each unmatched listing gets a fresh product; there
// is no cross-run product matching.
func buildProduct(listing models.RawListing) models.Product {
	name := productWasRe.ReplaceAllString(listing.Title, "")
	name = productPriceRe.ReplaceAllString(name, "")
	name = productRetailerRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if len(name) < 10 {
		name = truncate(listing.Title, 100)
	}

	// Random suffix keeps slugs unique across listings that clean down to
	// the same name.
	slug := normalize.Slugify(name) + "-" + uuid.NewString()[:8]

	return models.Product{
		Name:        truncate(name, 255),
		Slug:        slug,
		Description: listing.Description,
		ImageURL:    listing.ImageURL,
	}
}

// truncate cuts on rune boundaries so multibyte titles never persist as
// invalid UTF-8.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
