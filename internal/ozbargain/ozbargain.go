// Package ozbargain implements the RSS feed adapter for the OzBargain deal
// feed, the pipeline's one real (non-simulated) upstream.
package ozbargain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/skrooge/skrooge/internal/fetch"
	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/models"
	"github.com/skrooge/skrooge/internal/normalize"
	"github.com/skrooge/skrooge/internal/source"
)

const (
	// Name is the registry key for this source.
	Name = "ozbargain"

	defaultFeedURL = "https://www.ozbargain.com.au/deals/feed"
	defaultPages   = 5
)

var (
	titlePriceRe    = regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`)
	titleRetailerRe = regexp.MustCompile(`@\s*([^(]+?)(?:\s*\(|$)`)
	titleWasRe      = regexp.MustCompile(`(?i)was\s*\$(\d+(?:\.\d{2})?)`)
	nodeIDRe        = regexp.MustCompile(`/node/(\d+)`)
	ctaTextRe       = regexp.MustCompile(`(?i)go to deal|view deal|buy now|shop now|get deal`)
)

// Scraper fetches and parses the paginated OzBargain RSS feed.
type Scraper struct {
	client  *fetch.Client
	log     *logging.Logger
	feedURL string
	pages   int
}

// New creates the feed adapter.
func New(client *fetch.Client, log *logging.Logger) *Scraper {
	return &Scraper{
		client:  client,
		log:     log,
		feedURL: defaultFeedURL,
		pages:   defaultPages,
	}
}

// WithPages overrides how many feed pages Scrape walks.
func (s *Scraper) WithPages(n int) *Scraper {
	if n > 0 {
		s.pages = n
	}
	return s
}

func (s *Scraper) SourceName() string { return Name }

// Scrape fetches up to s.pages feed pages, deduplicates entries by link
// across pages and parses each entry into a RawListing. Per-page fetch
// failures and per-entry parse failures are recorded and never abort the run;
// Success is false only when every page fails.
func (s *Scraper) Scrape(ctx context.Context) *source.Result {
	result := source.NewResult(Name)

	seen := make(map[string]struct{})
	var items []feedItem
	pagesFetched := 0

	for page := 0; page < s.pages; page++ {
		url := s.feedURL
		if page > 0 {
			url = fmt.Sprintf("%s?page=%d", s.feedURL, page)
		}
		source.ReportProgress(ctx, fmt.Sprintf("Fetching feed page %d/%d...", page+1, s.pages))

		body, err := s.client.Fetch(ctx, url)
		if err != nil {
			s.log.Warn("[scraper:%s] page %d fetch failed: %v", Name, page+1, err)
			result.Errors = append(result.Errors, fmt.Sprintf("page %d: %v", page+1, err))
			continue
		}
		pagesFetched++

		for _, item := range parseFeed(body) {
			if _, dup := seen[item.Link]; dup && item.Link != "" {
				continue
			}
			seen[item.Link] = struct{}{}
			items = append(items, item)
		}
	}

	if pagesFetched == 0 {
		s.log.Error("[scraper:%s] all %d feed pages failed", Name, s.pages)
		return result
	}

	source.ReportProgress(ctx, fmt.Sprintf("Parsing %d unique entries...", len(items)))
	for _, item := range items {
		listing, err := s.parseItem(item)
		if err != nil {
			s.log.Warn("[scraper:%s] failed to parse item %q: %v", Name, item.Title, err)
			result.Errors = append(result.Errors, fmt.Sprintf("parse item %q: %v", item.Title, err))
			continue
		}
		result.Listings = append(result.Listings, listing)
	}

	result.Success = true
	s.log.Info("[scraper:%s] parsed %d listings from %d pages (%d errors)",
		Name, len(result.Listings), pagesFetched, len(result.Errors))
	return result
}

// parseItem turns one feed entry into a RawListing. Titles carry most of the
// structure: "Product Name $99 (was $149) @ Retailer".
func (s *Scraper) parseItem(item feedItem) (models.RawListing, error) {
	if strings.TrimSpace(item.Title) == "" {
		return models.RawListing{}, fmt.Errorf("entry missing title")
	}
	if strings.TrimSpace(item.Link) == "" {
		return models.RawListing{}, fmt.Errorf("entry missing link")
	}

	var price float64
	if m := titlePriceRe.FindStringSubmatch(item.Title); m != nil {
		price, _ = normalize.ParsePrice(m[1])
	}

	retailerName := "Unknown"
	if m := titleRetailerRe.FindStringSubmatch(item.Title); m != nil {
		retailerName = strings.TrimSpace(m[1])
	}

	var originalPrice float64
	var discount int
	if m := titleWasRe.FindStringSubmatch(item.Title); m != nil && price > 0 {
		if was, ok := normalize.ParsePrice(m[1]); ok && was > price {
			originalPrice = was
			discount = normalize.CalculateDiscount(was, price)
		}
	}

	links := parseDescriptionHTML(item.Description)

	listing := models.RawListing{
		Title:         item.Title,
		Price:         price,
		OriginalPrice: originalPrice,
		Discount:      discount,
		URL:           resolveDealURL(item, links.anchors),
		ImageURL:      links.imageURL,
		RetailerName:  retailerName,
		Source:        Name,
		ExternalID:    externalID(item.Link),
		DealType:      normalize.DetectDealType(item.Title, retailerName),
	}
	if desc, ok := normalize.CleanDescription(item.Description, item.Title); ok {
		listing.Description = desc
	}
	if cat, ok := normalize.DetectCategory(item.Title, retailerName); ok {
		listing.Category = cat
	}
	return listing, nil
}

// resolveDealURL picks the outbound retailer URL by priority: the feed's
// meta link, then a call-to-action anchor, then the first external link that
// does not point back at the aggregator, then the entry's own link.
func resolveDealURL(item feedItem, anchors []anchor) string {
	if item.MetaLink != "" {
		return item.MetaLink
	}
	for _, a := range anchors {
		if strings.HasPrefix(a.href, "http") && ctaTextRe.MatchString(a.text) {
			return a.href
		}
	}
	for _, a := range anchors {
		if strings.HasPrefix(a.href, "http") && !strings.Contains(a.href, "ozbargain") {
			return a.href
		}
	}
	return item.Link
}

// externalID derives the upstream id from the entry link, e.g.
// /node/123456 -> "ozbargain-123456". Empty when the link carries no node id;
// reconciliation then falls back to URL matching alone.
func externalID(link string) string {
	if m := nodeIDRe.FindStringSubmatch(link); m != nil {
		return Name + "-" + m[1]
	}
	return ""
}

type anchor struct {
	href string
	text string
}

type descLinks struct {
	imageURL string
	anchors  []anchor
}

// parseDescriptionHTML walks the entry's HTML body collecting the first
// image and every anchor, for image and outbound-URL resolution.
func parseDescriptionHTML(raw string) descLinks {
	var dl descLinks
	if strings.TrimSpace(raw) == "" {
		return dl
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return dl
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				if dl.imageURL == "" {
					for _, attr := range n.Attr {
						if attr.Key == "src" {
							dl.imageURL = attr.Val
						}
					}
				}
			case "a":
				var href string
				for _, attr := range n.Attr {
					if attr.Key == "href" {
						href = attr.Val
					}
				}
				if href != "" {
					dl.anchors = append(dl.anchors, anchor{href: href, text: textContent(n)})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return dl
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
