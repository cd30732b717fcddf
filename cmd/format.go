package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/skrooge/skrooge/internal/ingest"
	"github.com/skrooge/skrooge/internal/source"
)

// printReportsTable prints run reports in a human-friendly layout.
func printReportsTable(reports []ingest.RunReport) {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		status := "ok"
		if !r.Success {
			status = "FAILED"
		}
		fmt.Fprintf(os.Stdout, " %s [%s]\n", r.Source, status)
		fmt.Fprintf(os.Stdout, "    Fetched: %d  |  Created: %d  |  Updated: %d  |  Skipped: %d\n",
			r.Fetched, r.Created, r.Updated, r.Skipped)
		if len(r.Errors) > 0 {
			fmt.Fprintf(os.Stdout, "    Errors (%d):\n", len(r.Errors))
			for _, e := range r.Errors {
				fmt.Fprintf(os.Stdout, "      - %s\n", truncate(e, 120))
			}
		}
	}
}

// printListingsTable prints raw listings from a dry run.
func printListingsTable(res *source.Result) {
	fmt.Fprintf(os.Stdout, "== %s: %d listings ==\n", res.Source, len(res.Listings))
	for i, l := range res.Listings {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, " %d. %s\n", i+1, truncate(l.Title, 100))

		priceLine := "    Price: " + formatPrice(l.Price)
		if l.OriginalPrice > l.Price && l.Discount > 0 {
			priceLine += fmt.Sprintf("  (was %s, -%d%%)", formatPrice(l.OriginalPrice), l.Discount)
		}
		priceLine += "  |  Retailer: " + l.RetailerName
		fmt.Fprintln(os.Stdout, priceLine)

		var tags []string
		if l.DealType != "" {
			tags = append(tags, "["+l.DealType+"]")
		}
		if l.Category != "" {
			tags = append(tags, "["+l.Category+"]")
		}
		if len(tags) > 0 {
			fmt.Fprintf(os.Stdout, "    %s\n", strings.Join(tags, " "))
		}
		fmt.Fprintf(os.Stdout, "    %s\n", l.URL)
	}
	if len(res.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "  (%d errors)\n", len(res.Errors))
	}
}

// formatPrice formats a price as "$1,299.00", dropping cents when whole.
func formatPrice(v float64) string {
	whole := int64(v)
	s := fmt.Sprintf("%d", whole)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := "$" + strings.Join(parts, ",")
	if cents := v - float64(whole); cents > 0.004 {
		out += fmt.Sprintf(".%02d", int(cents*100+0.5))
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
