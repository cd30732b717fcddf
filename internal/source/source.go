// Package source defines the contract every upstream deal source implements
// and the registry that resolves source names to runnable adapters.
package source

import (
	"context"
	"time"

	"github.com/skrooge/skrooge/internal/models"
)

// Scraper is implemented by every source adapter. Scrape must never let a
// fetch failure escape: failures are reported through Result.Success and
// Result.Errors so callers can decide whether to continue with other sources.
type Scraper interface {
	Scrape(ctx context.Context) *Result
	SourceName() string
}

// Factory builds a fresh adapter instance for one run.
type Factory func() Scraper

// Result is the outcome of one adapter run.
type Result struct {
	Success   bool                `json:"success"`
	Listings  []models.RawListing `json:"listings"`
	Errors    []string            `json:"errors,omitempty"`
	ScrapedAt time.Time           `json:"scraped_at"`
	Source    string              `json:"source"`
}

// NewResult creates an empty result stamped for the given source.
func NewResult(sourceName string) *Result {
	return &Result{
		ScrapedAt: time.Now(),
		Source:    sourceName,
	}
}
