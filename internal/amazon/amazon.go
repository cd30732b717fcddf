// Package amazon implements the simulated Amazon AU catalog adapter.
//
// Real Amazon scraping needs anti-bot infrastructure that is out of scope
// here, so the listing payload is a fixed fixture. The adapter still runs
// through the shared rate-limit path and satisfies the full source contract,
// which keeps the coordinator and reconciler agnostic to where listings
// come from.
package amazon

import (
	"context"
	"fmt"

	"github.com/skrooge/skrooge/internal/fetch"
	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/models"
	"github.com/skrooge/skrooge/internal/source"
)

// Name is the registry key for this source.
const Name = "amazon"

// Scraper serves fixture deals for Amazon AU.
type Scraper struct {
	client *fetch.Client
	log    *logging.Logger
	fail   error // injected upstream failure, set in tests
}

// New creates the simulated adapter.
func New(client *fetch.Client, log *logging.Logger) *Scraper {
	return &Scraper{client: client, log: log}
}

func (s *Scraper) SourceName() string { return Name }

// Scrape returns the fixture catalog after honoring the configured request
// pacing. Failures never escape: they land in the result.
func (s *Scraper) Scrape(ctx context.Context) *source.Result {
	result := source.NewResult(Name)

	if err := s.client.Gate(ctx); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("rate gate: %v", err))
		return result
	}
	if s.fail != nil {
		s.log.Error("[scraper:%s] upstream failure: %v", Name, s.fail)
		result.Errors = append(result.Errors, s.fail.Error())
		return result
	}

	result.Listings = fixtureListings()
	result.Success = true
	s.log.Info("[scraper:%s] produced %d fixture listings", Name, len(result.Listings))
	return result
}

func fixtureListings() []models.RawListing {
	return []models.RawListing{
		{
			Title:         "Echo Dot (5th Gen) Smart Speaker with Alexa Charcoal",
			Description:   "Improved audio experience compared to any previous Echo Dot.",
			Price:         49.00,
			OriginalPrice: 99.00,
			Discount:      50,
			URL:           "https://www.amazon.com.au/dp/B09B8V1LZ3",
			ImageURL:      "https://m.media-amazon.com/images/I/61r-v6r9FDL._AC_SL1000_.jpg",
			RetailerName:  "Amazon",
			Source:        Name,
			ExternalID:    "amazon-B09B8V1LZ3",
			DealType:      models.DealTypeProduct,
			Category:      "electronics",
		},
		{
			Title:         "Kindle Paperwhite 16GB with 6.8 inch Display",
			Description:   "Adjustable warm light, up to 10 weeks of battery life, and 20% faster page turns.",
			Price:         239.00,
			OriginalPrice: 269.00,
			Discount:      11,
			URL:           "https://www.amazon.com.au/dp/B09TMN5M5X",
			ImageURL:      "https://m.media-amazon.com/images/I/51p4b7xH1WL._AC_SL1000_.jpg",
			RetailerName:  "Amazon",
			Source:        Name,
			ExternalID:    "amazon-B09TMN5M5X",
			DealType:      models.DealTypeProduct,
			Category:      "electronics",
		},
		{
			Title:         "Finish Powerball Quantum All in 1 Dishwasher Tablets 100 Pack",
			Description:   "Deep clean tablets with pre-soaking power for tough stains.",
			Price:         36.00,
			OriginalPrice: 72.00,
			Discount:      50,
			URL:           "https://www.amazon.com.au/dp/B07R4X7Q9H",
			ImageURL:      "https://m.media-amazon.com/images/I/71wLp-b-S-L._AC_SL1500_.jpg",
			RetailerName:  "Amazon",
			Source:        Name,
			ExternalID:    "amazon-B07R4X7Q9H",
			DealType:      models.DealTypeProduct,
			Category:      "groceries",
		},
	}
}
