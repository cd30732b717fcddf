// Package woolworths implements the simulated Woolworths specials adapter.
//
// The real specials API sits behind a WAF, so the payload is a fixed fixture
// of half-price specials. The adapter still honors the shared rate-limit
// path and the full source contract.
package woolworths

import (
	"context"
	"fmt"

	"github.com/skrooge/skrooge/internal/fetch"
	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/models"
	"github.com/skrooge/skrooge/internal/source"
)

// Name is the registry key for this source.
const Name = "woolworths"

// Scraper serves fixture half-price specials.
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

// Scrape returns the fixture specials after honoring the configured request
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
			Title:         "Cadbury Dairy Milk Chocolate Block 180g",
			Description:   "Half price special on the classic block. Limit 6 per transaction.",
			Price:         3.00,
			OriginalPrice: 6.00,
			Discount:      50,
			URL:           "https://www.woolworths.com.au/shop/productdetails/807525/cadbury-dairy-milk-chocolate-block",
			ImageURL:      "https://cdn0.woolworths.media/content/wowproductimages/large/807525.jpg",
			RetailerName:  "Woolworths",
			Source:        Name,
			ExternalID:    "woolworths-807525",
			DealType:      models.DealTypeProduct,
			Category:      "groceries",
		},
		{
			Title:         "Coca-Cola Soft Drink Cans 30x375ml",
			Description:   "Multipack cans at a third off the usual shelf price.",
			Price:         38.00,
			OriginalPrice: 56.00,
			Discount:      32,
			URL:           "https://www.woolworths.com.au/shop/productdetails/766299/coca-cola-soft-drink-cans-30-pack",
			ImageURL:      "https://cdn0.woolworths.media/content/wowproductimages/large/766299.jpg",
			RetailerName:  "Woolworths",
			Source:        Name,
			ExternalID:    "woolworths-766299",
			DealType:      models.DealTypeProduct,
			Category:      "groceries",
		},
		{
			Title:         "Omo Laundry Liquid Front and Top Loader 2L",
			Description:   "Half price laundry liquid with tough stain removal.",
			Price:         13.00,
			OriginalPrice: 26.00,
			Discount:      50,
			URL:           "https://www.woolworths.com.au/shop/productdetails/678901/omo-laundry-liquid-front-top-loader-active-clean",
			ImageURL:      "https://cdn0.woolworths.media/content/wowproductimages/large/678901.jpg",
			RetailerName:  "Woolworths",
			Source:        Name,
			ExternalID:    "woolworths-678901",
			DealType:      models.DealTypeProduct,
			Category:      "groceries",
		},
	}
}
