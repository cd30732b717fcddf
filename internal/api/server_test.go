package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/skrooge/skrooge/internal/ingest"
	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/models"
)

type fakeRunner struct {
	lastSource string
}

func (f *fakeRunner) RunOne(_ context.Context, name string) (ingest.RunReport, error) {
	if name == "ebay" {
		return ingest.RunReport{}, errors.New(`unknown source "ebay"`)
	}
	f.lastSource = name
	return ingest.RunReport{Source: name, Success: true, Fetched: 3, Created: 2, Skipped: 1}, nil
}

func (f *fakeRunner) RunAll(_ context.Context) ([]ingest.RunReport, ingest.Summary) {
	return []ingest.RunReport{
			{Source: "amazon", Success: true},
			{Source: "ozbargain", Success: true},
		}, ingest.Summary{Attempted: 2, Succeeded: 2}
}

type fakeReader struct{}

func (fakeReader) RecentDeals(_ context.Context, limit int) ([]models.Deal, error) {
	deals := []models.Deal{
		{ID: "d1", Title: "Sony WH-1000XM5 Headphones", Price: 399},
		{ID: "d2", Title: "LG C3 55in OLED TV", Price: 1999},
	}
	if limit < len(deals) {
		deals = deals[:limit]
	}
	return deals, nil
}

func (fakeReader) CountDeals(context.Context) (int, error) { return 2, nil }

func testServer(apiKey string) (*Server, *fakeRunner) {
	runner := &fakeRunner{}
	s := New(runner, fakeReader{}, Options{
		Sources:       []string{"amazon", "ozbargain", "woolworths"},
		DefaultSource: "ozbargain",
		APIKey:        apiKey,
	}, logging.NewQuiet())
	return s, runner
}

func TestHealthz(t *testing.T) {
	s, _ := testServer("")
	resp, err := s.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d; want 200", resp.StatusCode)
	}
}

func TestSources(t *testing.T) {
	s, _ := testServer("")
	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/sources", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var body struct {
		Sources []string `json:"sources"`
		Default string   `json:"default"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sources) != 3 || body.Default != "ozbargain" {
		t.Errorf("body = %+v", body)
	}
}

func TestScrapeDefaultsSource(t *testing.T) {
	s, runner := testServer("")
	req := httptest.NewRequest("POST", "/api/scrape", nil)
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if runner.lastSource != "ozbargain" {
		t.Errorf("ran %q; want the default source", runner.lastSource)
	}
}

func TestScrapeNamedSource(t *testing.T) {
	s, runner := testServer("")
	req := httptest.NewRequest("POST", "/api/scrape", strings.NewReader(`{"source":"amazon"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if runner.lastSource != "amazon" {
		t.Errorf("ran %q; want amazon", runner.lastSource)
	}

	var report ingest.RunReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Fetched != 3 || report.Created != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestScrapeUnknownSource(t *testing.T) {
	s, _ := testServer("")
	req := httptest.NewRequest("POST", "/api/scrape", strings.NewReader(`{"source":"ebay"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("status = %d; want 400", resp.StatusCode)
	}
}

func TestCronScrapeRunsAll(t *testing.T) {
	s, _ := testServer("")
	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/cron/scrape", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var body struct {
		Summary ingest.Summary     `json:"summary"`
		Reports []ingest.RunReport `json:"reports"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Summary.Attempted != 2 || len(body.Reports) != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestBearerAuth(t *testing.T) {
	s, _ := testServer("secret-key")

	// No token
	resp, err := s.App().Test(httptest.NewRequest("POST", "/api/scrape", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("no token: status = %d; want 401", resp.StatusCode)
	}

	// Wrong token
	req := httptest.NewRequest("POST", "/api/scrape", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = s.App().Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("wrong token: status = %d; want 401", resp.StatusCode)
	}

	// Correct token
	req = httptest.NewRequest("POST", "/api/scrape", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	resp, err = s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("valid token: status = %d; want 200", resp.StatusCode)
	}

	// Read endpoints stay open
	resp, err = s.App().Test(httptest.NewRequest("GET", "/api/deals", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("read endpoint: status = %d; want 200", resp.StatusCode)
	}
}

func TestDealsLimit(t *testing.T) {
	s, _ := testServer("")
	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/deals?limit=1", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Total int           `json:"total"`
		Deals []models.Deal `json:"deals"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Total != 2 || len(parsed.Deals) != 1 {
		t.Errorf("total=%d deals=%d; want 2/1", parsed.Total, len(parsed.Deals))
	}
}
