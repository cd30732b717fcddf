// Package store persists ingestion state in SQLite behind the data-access
// boundary the reconciler consumes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/skrooge/skrooge/internal/models"
	"github.com/skrooge/skrooge/internal/normalize"
)

// SQLiteStore implements ingest.Store over a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at dsn and ensures the schema.
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS retailers(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  base_url TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_retailers_name ON retailers(name);

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS deals(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  retailer_id TEXT NOT NULL REFERENCES retailers(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price > 0),
  original_price NUMERIC NOT NULL DEFAULT 0,
  discount INTEGER NOT NULL DEFAULT 0,
  url TEXT NOT NULL,
  image_url TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL,
  external_id TEXT NOT NULL DEFAULT '',
  vote_score INTEGER NOT NULL DEFAULT 0,
  is_hot INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deals_url         ON deals(url);
CREATE INDEX IF NOT EXISTS idx_deals_external_id ON deals(external_id);
CREATE INDEX IF NOT EXISTS idx_deals_created_at  ON deals(created_at);

CREATE TABLE IF NOT EXISTS price_history(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  retailer_id TEXT NOT NULL REFERENCES retailers(id) ON DELETE RESTRICT,
  price NUMERIC NOT NULL,
  recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id);
`
	_, err := db.Exec(schema)
	return err
}

// FindOrCreateRetailer resolves a retailer by exact name or slug, creating it
// on first sighting. A create that loses a race to a concurrent writer falls
// back to re-querying by slug; the unique slug index arbitrates.
func (s *SQLiteStore) FindOrCreateRetailer(ctx context.Context, name string) (models.Retailer, error) {
	slug := normalize.Slugify(name)

	var retailer models.Retailer
	err := s.db.GetContext(ctx, &retailer, `
	  SELECT id, name, slug, base_url, created_at
	  FROM retailers
	  WHERE name = ? OR slug = ?
	  LIMIT 1
	`, name, slug)
	if err == nil {
		return retailer, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Retailer{}, fmt.Errorf("look up retailer %q: %w", name, err)
	}

	retailer = models.Retailer{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		BaseURL:   "https://" + slug + ".com.au",
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
	  INSERT INTO retailers(id, name, slug, base_url, created_at)
	  VALUES (?, ?, ?, ?, ?)
	`, retailer.ID, retailer.Name, retailer.Slug, retailer.BaseURL, retailer.CreatedAt)
	if err != nil {
		var existing models.Retailer
		if lookupErr := s.db.GetContext(ctx, &existing, `
		  SELECT id, name, slug, base_url, created_at FROM retailers WHERE slug = ?
		`, slug); lookupErr == nil {
			return existing, nil
		}
		return models.Retailer{}, fmt.Errorf("create retailer %q: %w", name, err)
	}
	return retailer, nil
}

// CreateProduct persists a new catalog entry.
func (s *SQLiteStore) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO products(id, name, slug, description, image_url, created_at)
	  VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Slug, p.Description, p.ImageURL, p.CreatedAt)
	if err != nil {
		return models.Product{}, fmt.Errorf("create product %q: %w", p.Name, err)
	}
	return p, nil
}

// FindDealByURLOrExternalID matches first on destination URL, then on the
// upstream external id when present. Nil when nothing matches.
func (s *SQLiteStore) FindDealByURLOrExternalID(ctx context.Context, url, externalID string) (*models.Deal, error) {
	var deal models.Deal
	err := s.db.GetContext(ctx, &deal, `
	  SELECT id, product_id, retailer_id, title, description, price, original_price,
	         discount, url, image_url, source, external_id, vote_score, is_hot,
	         created_at, updated_at
	  FROM deals
	  WHERE url = ? OR (? != '' AND external_id = ?)
	  LIMIT 1
	`, url, externalID, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up deal by url/external id: %w", err)
	}
	return &deal, nil
}

// UpdateDealPrice mutates price fields and the updated timestamp in place.
// Vote score and the created timestamp are untouched.
func (s *SQLiteStore) UpdateDealPrice(ctx context.Context, id string, price, originalPrice float64, discount int) error {
	res, err := s.db.ExecContext(ctx, `
	  UPDATE deals
	  SET price = ?, original_price = ?, discount = ?, is_hot = ?, updated_at = ?
	  WHERE id = ?
	`, price, originalPrice, discount, boolToInt(discount >= 30), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update deal %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update deal %s: no such deal", id)
	}
	return nil
}

// CreateDeal persists a new deal.
func (s *SQLiteStore) CreateDeal(ctx context.Context, d models.Deal) (models.Deal, error) {
	d.ID = uuid.NewString()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO deals(id, product_id, retailer_id, title, description, price,
	                    original_price, discount, url, image_url, source, external_id,
	                    vote_score, is_hot, created_at, updated_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.ProductID, d.RetailerID, d.Title, d.Description, d.Price,
		d.OriginalPrice, d.Discount, d.URL, d.ImageURL, d.Source, d.ExternalID,
		d.VoteScore, boolToInt(d.IsHot), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return models.Deal{}, fmt.Errorf("create deal %q: %w", d.Title, err)
	}
	return d, nil
}

// AppendPriceHistory records one immutable price observation.
func (s *SQLiteStore) AppendPriceHistory(ctx context.Context, productID, retailerID string, price float64) error {
	_, err := s.db.ExecContext(ctx, `
	  INSERT INTO price_history(id, product_id, retailer_id, price, recorded_at)
	  VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), productID, retailerID, price, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

// RecentDeals returns the newest deals, most recent first. Read surface for
// the serve and MCP endpoints.
func (s *SQLiteStore) RecentDeals(ctx context.Context, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 20
	}
	var deals []models.Deal
	err := s.db.SelectContext(ctx, &deals, `
	  SELECT id, product_id, retailer_id, title, description, price, original_price,
	         discount, url, image_url, source, external_id, vote_score, is_hot,
	         created_at, updated_at
	  FROM deals
	  ORDER BY created_at DESC
	  LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent deals: %w", err)
	}
	return deals, nil
}

// CountDeals returns the total number of persisted deals.
func (s *SQLiteStore) CountDeals(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM deals`); err != nil {
		return 0, fmt.Errorf("count deals: %w", err)
	}
	return n, nil
}

// PriceHistoryForProduct returns a product's observations oldest first.
func (s *SQLiteStore) PriceHistoryForProduct(ctx context.Context, productID string) ([]models.PriceHistory, error) {
	var rows []models.PriceHistory
	err := s.db.SelectContext(ctx, &rows, `
	  SELECT id, product_id, retailer_id, price, recorded_at
	  FROM price_history
	  WHERE product_id = ?
	  ORDER BY recorded_at ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	return rows, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
