package amazon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skrooge/skrooge/internal/fetch"
	"github.com/skrooge/skrooge/internal/logging"
)

func testClient() *fetch.Client {
	return fetch.NewClient(fetch.Options{
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		RateGap:    time.Millisecond,
		Timeout:    time.Second,
	}, nil)
}

func TestScrapeContract(t *testing.T) {
	s := New(testClient(), logging.NewQuiet())

	res := s.Scrape(context.Background())
	if !res.Success {
		t.Fatalf("Scrape failed: %v", res.Errors)
	}
	if res.Source != Name {
		t.Errorf("source = %q; want %q", res.Source, Name)
	}
	if len(res.Listings) == 0 {
		t.Fatal("fixture adapter returned no listings")
	}
	for _, l := range res.Listings {
		if l.Price <= 0 || l.URL == "" || l.RetailerName == "" || l.Source != Name {
			t.Errorf("fixture listing incomplete: %+v", l)
		}
	}
}

func TestScrapeFailSoft(t *testing.T) {
	s := New(testClient(), logging.NewQuiet())
	s.fail = errors.New("upstream unavailable")

	res := s.Scrape(context.Background())
	if res.Success {
		t.Error("injected failure should surface as Success=false")
	}
	if len(res.Errors) != 1 {
		t.Errorf("got %d errors; want 1", len(res.Errors))
	}
	if len(res.Listings) != 0 {
		t.Errorf("got %d listings; want 0 on failure", len(res.Listings))
	}
}

func TestScrapeCancelledContext(t *testing.T) {
	s := New(testClient(), logging.NewQuiet())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Burn the limiter's initial token so the gate has to wait.
	_ = s.client.Gate(context.Background())

	res := s.Scrape(ctx)
	if res.Success {
		t.Error("cancelled context should not produce a successful run")
	}
}
