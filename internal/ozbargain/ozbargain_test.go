package ozbargain

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/skrooge/skrooge/internal/fetch"
	"github.com/skrooge/skrooge/internal/logging"
)

func testScraper(feedURL string, pages int) *Scraper {
	client := fetch.NewClient(fetch.Options{
		MaxRetries: 1,
		RetryDelay: 5 * time.Millisecond,
		RateGap:    time.Millisecond,
		Timeout:    2 * time.Second,
	}, nil)
	s := New(client, logging.NewQuiet())
	s.feedURL = feedURL
	s.pages = pages
	return s
}

func feedDoc(items ...string) string {
	return `<?xml version="1.0"?><rss><channel>` + strings.Join(items, "") + `</channel></rss>`
}

func feedEntry(title, link, desc string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description><![CDATA[%s]]></description></item>`, title, link, desc)
}

func TestParseItem(t *testing.T) {
	s := testScraper("http://unused", 1)

	item := feedItem{
		Title:       "Sony WH-1000XM5 $399 (Was $549) @ JB Hi-Fi",
		Link:        "https://www.ozbargain.com.au/node/123456",
		Description: `<p>Great cans. <a href="https://www.jbhifi.com.au/x">Go to Deal</a></p>`,
	}

	listing, err := s.parseItem(item)
	if err != nil {
		t.Fatalf("parseItem: %v", err)
	}
	if listing.Price != 399 {
		t.Errorf("price = %v; want 399", listing.Price)
	}
	if listing.OriginalPrice != 549 {
		t.Errorf("original price = %v; want 549", listing.OriginalPrice)
	}
	if listing.Discount != 27 {
		t.Errorf("discount = %d; want 27", listing.Discount)
	}
	if listing.RetailerName != "JB Hi-Fi" {
		t.Errorf("retailer = %q; want JB Hi-Fi", listing.RetailerName)
	}
	if listing.URL != "https://www.jbhifi.com.au/x" {
		t.Errorf("url = %q; want CTA anchor target", listing.URL)
	}
	if listing.ExternalID != "ozbargain-123456" {
		t.Errorf("external id = %q", listing.ExternalID)
	}
	if listing.Category != "electronics" {
		t.Errorf("category = %q; want electronics", listing.Category)
	}
	if listing.DealType != "product" {
		t.Errorf("deal type = %q; want product", listing.DealType)
	}
}

func TestParseItemURLPriority(t *testing.T) {
	s := testScraper("http://unused", 1)

	// Meta link beats everything.
	item := feedItem{
		Title:       "Widget $5 @ Shop",
		Link:        "https://www.ozbargain.com.au/node/1",
		MetaLink:    "https://shop.example.com/widget",
		Description: `<a href="https://other.example.com/x">Go to Deal</a>`,
	}
	listing, _ := s.parseItem(item)
	if listing.URL != "https://shop.example.com/widget" {
		t.Errorf("url = %q; want meta link", listing.URL)
	}

	// No meta, no CTA: first non-aggregator link.
	item = feedItem{
		Title: "Widget $5 @ Shop",
		Link:  "https://www.ozbargain.com.au/node/2",
		Description: `<a href="https://www.ozbargain.com.au/comment/9">reply</a>` +
			`<a href="https://shop.example.com/w2">details</a>`,
	}
	listing, _ = s.parseItem(item)
	if listing.URL != "https://shop.example.com/w2" {
		t.Errorf("url = %q; want first external link", listing.URL)
	}

	// Nothing usable in the body: fall back to the entry link.
	item = feedItem{
		Title:       "Widget $5 @ Shop",
		Link:        "https://www.ozbargain.com.au/node/3",
		Description: `plain text only`,
	}
	listing, _ = s.parseItem(item)
	if listing.URL != item.Link {
		t.Errorf("url = %q; want entry link fallback", listing.URL)
	}
}

func TestParseItemDefaults(t *testing.T) {
	s := testScraper("http://unused", 1)

	listing, err := s.parseItem(feedItem{
		Title: "Mystery Freebie with no structure",
		Link:  "https://www.ozbargain.com.au/deals/weird",
	})
	if err != nil {
		t.Fatalf("parseItem: %v", err)
	}
	if listing.Price != 0 {
		t.Errorf("price = %v; want 0 for unpriced title", listing.Price)
	}
	if listing.RetailerName != "Unknown" {
		t.Errorf("retailer = %q; want Unknown", listing.RetailerName)
	}
	if listing.ExternalID != "" {
		t.Errorf("external id = %q; want empty without node id", listing.ExternalID)
	}

	if _, err := s.parseItem(feedItem{Link: "https://x"}); err == nil {
		t.Error("parseItem should fail on missing title")
	}
	if _, err := s.parseItem(feedItem{Title: "t"}); err == nil {
		t.Error("parseItem should fail on missing link")
	}
}

func TestScrapePaginatesAndDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.RawQuery {
		case "":
			fmt.Fprint(w, feedDoc(
				feedEntry("Item A $10 @ ShopA", "https://www.ozbargain.com.au/node/1", "body a"),
				feedEntry("Item B $20 @ ShopB", "https://www.ozbargain.com.au/node/2", "body b"),
			))
		default: // page=1
			fmt.Fprint(w, feedDoc(
				feedEntry("Item B $20 @ ShopB", "https://www.ozbargain.com.au/node/2", "body b"),
				feedEntry("Item C $30 @ ShopC", "https://www.ozbargain.com.au/node/3", "body c"),
			))
		}
	}))
	defer srv.Close()

	s := testScraper(srv.URL, 2)
	res := s.Scrape(context.Background())

	if !res.Success {
		t.Fatalf("Scrape failed: %v", res.Errors)
	}
	if len(res.Listings) != 3 {
		t.Fatalf("got %d listings; want 3 after cross-page dedupe", len(res.Listings))
	}
	if res.Source != Name {
		t.Errorf("source = %q", res.Source)
	}
}

func TestScrapeToleratesPageFailure(t *testing.T) {
	var page0Served bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery == "" {
			page0Served = true
			fmt.Fprint(w, feedDoc(feedEntry("Item A $10 @ ShopA", "https://www.ozbargain.com.au/node/1", "body")))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := testScraper(srv.URL, 3)
	res := s.Scrape(context.Background())

	if !page0Served {
		t.Fatal("first page was never fetched")
	}
	if !res.Success {
		t.Fatal("one page succeeded; run should still be a success")
	}
	if len(res.Listings) != 1 {
		t.Errorf("got %d listings; want 1", len(res.Listings))
	}
	if len(res.Errors) != 2 {
		t.Errorf("got %d page errors; want 2", len(res.Errors))
	}
}

func TestScrapeAllPagesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := testScraper(srv.URL, 2)
	res := s.Scrape(context.Background())

	if res.Success {
		t.Error("Success should be false when every page fails")
	}
	if len(res.Errors) == 0 {
		t.Error("expected recorded errors")
	}
	if len(res.Listings) != 0 {
		t.Errorf("got %d listings; want 0", len(res.Listings))
	}
}
