package ozbargain

import (
	"regexp"
	"strings"

	"github.com/skrooge/skrooge/internal/normalize"
)

// feedItem is one <item> element pulled out of the RSS document.
type feedItem struct {
	Title       string
	Link        string
	Description string
	PubDate     string
	Category    string
	MetaLink    string // vendor-specific ozb:meta link attribute
}

// The feed schema is narrow and stable, so tag scanning is enough. parseFeed
// is the only place that touches raw XML; swapping in a real parser would not
// touch the adapter.
var (
	itemRe     = regexp.MustCompile(`(?s)<item>(.*?)</item>`)
	metaLinkRe = regexp.MustCompile(`(?i)<ozb:meta[^>]*\slink=["']([^"']+)["']`)

	tagRes = map[string]struct {
		cdata *regexp.Regexp
		plain *regexp.Regexp
	}{
		"title":       tagPatterns("title"),
		"link":        tagPatterns("link"),
		"description": tagPatterns("description"),
		"pubDate":     tagPatterns("pubDate"),
		"category":    tagPatterns("category"),
	}
)

func tagPatterns(tag string) struct{ cdata, plain *regexp.Regexp } {
	return struct{ cdata, plain *regexp.Regexp }{
		cdata: regexp.MustCompile(`(?is)<` + tag + `><!\[CDATA\[(.*?)\]\]></` + tag + `>`),
		plain: regexp.MustCompile(`(?is)<` + tag + `>(.*?)</` + tag + `>`),
	}
}

// parseFeed scans an RSS document into items. Items missing required fields
// are still returned so the adapter can report them as parse errors instead
// of dropping them silently.
func parseFeed(doc []byte) []feedItem {
	var items []feedItem
	for _, m := range itemRe.FindAllStringSubmatch(string(doc), -1) {
		itemXML := m[1]

		// Link fields are decoded too: an escaped &amp; in a plain-body
		// <link> would otherwise leak into the deal's identity URL.
		item := feedItem{
			Title:       normalize.DecodeEntities(extractTag(itemXML, "title")),
			Link:        normalize.DecodeEntities(extractTag(itemXML, "link")),
			Description: normalize.DecodeEntities(extractTag(itemXML, "description")),
			PubDate:     extractTag(itemXML, "pubDate"),
			Category:    extractTag(itemXML, "category"),
		}
		if mm := metaLinkRe.FindStringSubmatch(itemXML); mm != nil {
			item.MetaLink = normalize.DecodeEntities(mm[1])
		}
		items = append(items, item)
	}
	return items
}

// extractTag returns the body of the first occurrence of tag, handling both
// CDATA-wrapped and literal bodies.
func extractTag(itemXML, tag string) string {
	res, ok := tagRes[tag]
	if !ok {
		return ""
	}
	if m := res.cdata.FindStringSubmatch(itemXML); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := res.plain.FindStringSubmatch(itemXML); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
