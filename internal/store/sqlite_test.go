package store

import (
	"context"
	"testing"

	"github.com/skrooge/skrooge/internal/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFindOrCreateRetailer(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := s.FindOrCreateRetailer(ctx, "JB Hi-Fi")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "jb-hi-fi" {
		t.Errorf("slug = %q; want jb-hi-fi", created.Slug)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Error("id and created_at must be set")
	}

	again, err := s.FindOrCreateRetailer(ctx, "JB Hi-Fi")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("second call created a duplicate: %s vs %s", again.ID, created.ID)
	}
}

func seedDeal(t *testing.T, s *SQLiteStore, url, externalID string, price float64) models.Deal {
	t.Helper()
	ctx := context.Background()

	retailer, err := s.FindOrCreateRetailer(ctx, "JB Hi-Fi")
	if err != nil {
		t.Fatalf("retailer: %v", err)
	}
	product, err := s.CreateProduct(ctx, models.Product{
		Name: "Sony WH-1000XM5 Headphones",
		Slug: "sony-wh-1000xm5-headphones-" + externalID + url,
	})
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	deal, err := s.CreateDeal(ctx, models.Deal{
		ProductID:  product.ID,
		RetailerID: retailer.ID,
		Title:      "Sony WH-1000XM5 Headphones",
		Price:      price,
		URL:        url,
		Source:     "ozbargain",
		ExternalID: externalID,
		Discount:   27,
	})
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	return deal
}

func TestFindDealByURLOrExternalID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	deal := seedDeal(t, s, "https://example.com/a", "ozbargain-123456", 399)

	byURL, err := s.FindDealByURLOrExternalID(ctx, "https://example.com/a", "")
	if err != nil {
		t.Fatalf("by url: %v", err)
	}
	if byURL == nil || byURL.ID != deal.ID {
		t.Fatal("lookup by URL missed the seeded deal")
	}

	byExt, err := s.FindDealByURLOrExternalID(ctx, "https://example.com/other", "ozbargain-123456")
	if err != nil {
		t.Fatalf("by external id: %v", err)
	}
	if byExt == nil || byExt.ID != deal.ID {
		t.Fatal("lookup by external id missed the seeded deal")
	}

	none, err := s.FindDealByURLOrExternalID(ctx, "https://example.com/missing", "")
	if err != nil {
		t.Fatalf("no match: %v", err)
	}
	if none != nil {
		t.Errorf("want nil for no match, got %+v", none)
	}

	// An empty external id must never wildcard-match rows with empty ids.
	seedDeal(t, s, "https://example.com/noext", "", 49)
	got, err := s.FindDealByURLOrExternalID(ctx, "https://example.com/missing", "")
	if err != nil {
		t.Fatalf("empty external id: %v", err)
	}
	if got != nil {
		t.Errorf("empty external id matched %+v", got)
	}
}

func TestUpdateDealPrice(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	deal := seedDeal(t, s, "https://example.com/a", "ozbargain-123456", 399)

	if err := s.UpdateDealPrice(ctx, deal.ID, 349, 549, 36); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.FindDealByURLOrExternalID(ctx, "https://example.com/a", "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Price != 349 || got.OriginalPrice != 549 || got.Discount != 36 {
		t.Errorf("price=%v original=%v discount=%d; want 349/549/36", got.Price, got.OriginalPrice, got.Discount)
	}
	if !got.IsHot {
		t.Error("36% discount should flag the deal hot")
	}
	if !got.UpdatedAt.After(deal.UpdatedAt) && !got.UpdatedAt.Equal(deal.UpdatedAt) {
		t.Error("updated_at went backwards")
	}

	if err := s.UpdateDealPrice(ctx, "nope", 1, 0, 0); err == nil {
		t.Error("updating a missing deal must error")
	}
}

func TestAppendAndListPriceHistory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	deal := seedDeal(t, s, "https://example.com/a", "ozbargain-123456", 399)

	if err := s.AppendPriceHistory(ctx, deal.ProductID, deal.RetailerID, 399); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendPriceHistory(ctx, deal.ProductID, deal.RetailerID, 349); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows, err := s.PriceHistoryForProduct(ctx, deal.ProductID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}
	if rows[0].Price != 399 || rows[1].Price != 349 {
		t.Errorf("history out of order: %v, %v", rows[0].Price, rows[1].Price)
	}
}

func TestRecentDealsAndCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedDeal(t, s, "https://example.com/a", "ozbargain-1", 399)
	seedDeal(t, s, "https://example.com/b", "ozbargain-2", 1999)

	deals, err := s.RecentDeals(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(deals) != 2 {
		t.Fatalf("got %d deals; want 2", len(deals))
	}

	one, err := s.RecentDeals(ctx, 1)
	if err != nil {
		t.Fatalf("recent limit: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("limit 1 returned %d deals", len(one))
	}

	n, err := s.CountDeals(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d; want 2", n)
	}
}

func TestCreateDealRejectsNonPositivePrice(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	retailer, _ := s.FindOrCreateRetailer(ctx, "Amazon")
	product, _ := s.CreateProduct(ctx, models.Product{Name: "Echo Dot", Slug: "echo-dot-x1"})

	_, err := s.CreateDeal(ctx, models.Deal{
		ProductID:  product.ID,
		RetailerID: retailer.ID,
		Title:      "Echo Dot",
		Price:      0,
		URL:        "https://example.com/echo",
		Source:     "amazon",
	})
	if err == nil {
		t.Error("zero price must violate the price check")
	}
}
