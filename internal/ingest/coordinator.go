package ingest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/source"
)

// RunReport summarizes one source's scrape-and-reconcile run.
type RunReport struct {
	Source    string    `json:"source"`
	Success   bool      `json:"success"`
	ScrapedAt time.Time `json:"scraped_at"`
	Fetched   int       `json:"fetched"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Errors    []string  `json:"errors,omitempty"`
}

// Summary aggregates a run across all sources.
type Summary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Fetched   int `json:"fetched"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Coordinator drives ingestion runs: resolve sources through the registry,
// collect raw listings, hand them to the reconciler, aggregate reports.
type Coordinator struct {
	registry    *source.Registry
	reconciler  *Reconciler
	log         *logging.Logger
	concurrency int
}

// NewCoordinator creates a Coordinator. concurrency bounds how many sources
// run at once during RunAll; values below 1 mean sequential.
func NewCoordinator(registry *source.Registry, reconciler *Reconciler, log *logging.Logger, concurrency int) *Coordinator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Coordinator{
		registry:    registry,
		reconciler:  reconciler,
		log:         log,
		concurrency: concurrency,
	}
}

// RunOne scrapes a single source and reconciles its listings. An unknown
// source name is a configuration error surfaced directly to the caller.
func (c *Coordinator) RunOne(ctx context.Context, name string) (RunReport, error) {
	scraper, err := c.registry.Get(name)
	if err != nil {
		return RunReport{}, err
	}

	res := scraper.Scrape(ctx)
	report := RunReport{
		Source:    res.Source,
		Success:   res.Success,
		ScrapedAt: res.ScrapedAt,
		Fetched:   len(res.Listings),
		Errors:    res.Errors,
	}

	if len(res.Listings) > 0 {
		procRep := c.reconciler.ProcessListings(ctx, res.Listings)
		report.Created = procRep.Created
		report.Updated = procRep.Updated
		report.Skipped = procRep.Skipped
		report.Errors = append(report.Errors, procRep.Errors...)
	}

	c.log.Info("[coordinator] %s: fetched=%d created=%d updated=%d skipped=%d errors=%d",
		report.Source, report.Fetched, report.Created, report.Updated, report.Skipped, len(report.Errors))
	return report, nil
}

// RunAll runs every registered source independently. One source's total
// failure never blocks the others; each failure is recorded in its report.
func (c *Coordinator) RunAll(ctx context.Context) ([]RunReport, Summary) {
	names := c.registry.Sources()
	reports := make([]RunReport, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			report, err := c.RunOne(gctx, name)
			if err != nil {
				report = RunReport{Source: name, ScrapedAt: time.Now(), Errors: []string{err.Error()}}
			}
			reports[i] = report
			return nil
		})
	}
	g.Wait()

	var sum Summary
	sum.Attempted = len(reports)
	for _, r := range reports {
		if r.Success {
			sum.Succeeded++
		}
		sum.Fetched += r.Fetched
		sum.Created += r.Created
		sum.Updated += r.Updated
		sum.Skipped += r.Skipped
		sum.Errors += len(r.Errors)
	}
	c.log.Info("[coordinator] run-all done: %d/%d sources succeeded, %d listings fetched",
		sum.Succeeded, sum.Attempted, sum.Fetched)
	return reports, sum
}
