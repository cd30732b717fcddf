package models

import "time"

// Deal type tags assigned during normalization.
const (
	DealTypeProduct  = "product"
	DealTypeCashback = "cashback"
	DealTypeCoupon   = "coupon"
	DealTypeStore    = "store"
	DealTypeTravel   = "travel"
)

// RawListing is one scraped offer before reconciliation. Produced fresh per
// run, never persisted directly.
type RawListing struct {
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	Discount      int     `json:"discount,omitempty"`
	URL           string  `json:"url"`
	ImageURL      string  `json:"image_url,omitempty"`
	RetailerName  string  `json:"retailer_name"`
	Source        string  `json:"source"`
	ExternalID    string  `json:"external_id,omitempty"`
	DealType      string  `json:"deal_type,omitempty"`
	Category      string  `json:"category,omitempty"`
}

// Retailer is a resolved selling entity, shared across all listings that
// reference the same shop. Identity key is the name-derived slug.
type Retailer struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	BaseURL   string    `db:"base_url" json:"base_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Product is the catalog entry a deal attaches to.
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Deal is the purchasable offer. Matched on destination URL first, then on
// the upstream external id.
type Deal struct {
	ID            string    `db:"id" json:"id"`
	ProductID     string    `db:"product_id" json:"product_id"`
	RetailerID    string    `db:"retailer_id" json:"retailer_id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description,omitempty"`
	Price         float64   `db:"price" json:"price"`
	OriginalPrice float64   `db:"original_price" json:"original_price,omitempty"`
	Discount      int       `db:"discount" json:"discount,omitempty"`
	URL           string    `db:"url" json:"url"`
	ImageURL      string    `db:"image_url" json:"image_url,omitempty"`
	Source        string    `db:"source" json:"source"`
	ExternalID    string    `db:"external_id" json:"external_id,omitempty"`
	VoteScore     int       `db:"vote_score" json:"vote_score"`
	IsHot         bool      `db:"is_hot" json:"is_hot"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// PriceHistory is one append-only price observation.
type PriceHistory struct {
	ID         string    `db:"id" json:"id"`
	ProductID  string    `db:"product_id" json:"product_id"`
	RetailerID string    `db:"retailer_id" json:"retailer_id"`
	Price      float64   `db:"price" json:"price"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
