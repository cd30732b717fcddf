package source

import (
	"context"
	"strings"
	"testing"

	"github.com/skrooge/skrooge/internal/models"
)

type stubScraper struct {
	name     string
	listings []models.RawListing
}

func (s *stubScraper) SourceName() string { return s.name }

func (s *stubScraper) Scrape(ctx context.Context) *Result {
	res := NewResult(s.name)
	res.Success = true
	res.Listings = s.listings
	return res
}

func TestRegistryResolvesRegisteredSource(t *testing.T) {
	reg := NewRegistry()
	reg.Register("stub", func() Scraper {
		return &stubScraper{name: "stub", listings: []models.RawListing{{Title: "x", Price: 1, URL: "u"}}}
	})

	res, err := reg.Run(context.Background(), "stub")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success || len(res.Listings) != 1 || res.Source != "stub" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRegistryUnknownSource(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("nope"); err == nil || !strings.Contains(err.Error(), "unknown source") {
		t.Errorf("Get(nope) err = %v; want unknown source error", err)
	}
	if _, err := reg.Run(context.Background(), "nope"); err == nil {
		t.Error("Run(nope) should fail")
	}
}

func TestRegistrySourcesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"woolworths", "amazon", "ozbargain"} {
		name := name
		reg.Register(name, func() Scraper { return &stubScraper{name: name} })
	}

	got := reg.Sources()
	want := []string{"amazon", "ozbargain", "woolworths"}
	if len(got) != len(want) {
		t.Fatalf("Sources() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sources() = %v; want %v", got, want)
		}
	}
}
