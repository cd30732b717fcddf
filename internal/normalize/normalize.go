// Package normalize holds the pure text helpers the ingestion pipeline uses
// to turn noisy upstream free text into canonical fields. No state, no I/O.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/skrooge/skrooge/internal/models"
)

var (
	priceCharsRe = regexp.MustCompile(`[^0-9.,]`)
	slugStripRe  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe  = regexp.MustCompile(`\s+`)
	slugDashRe   = regexp.MustCompile(`-+`)

	storeWideRe = regexp.MustCompile(`(?i)\d+%\s*off`)

	titlePriceRe    = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)
	titleRetailerRe = regexp.MustCompile(`@\s*[^@]+$`)
	titleWasRe      = regexp.MustCompile(`(?i)was\s*\$\d+(?:\.\d{2})?`)
	titleDeliveredRe = regexp.MustCompile(`(?i)\s+delivered$`)
	titleDeliveryRe  = regexp.MustCompile(`(?i)\+\s*delivery\s*\([^)]*\)`)
	multiSpaceRe     = regexp.MustCompile(`\s+`)
)

// ParsePrice extracts a decimal price from free text. Currency symbols and
// thousands separators are stripped; the second return is false when no
// numeric value remains.
func ParsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	cleaned := priceCharsRe.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Slugify produces a URL-safe slug: lowercase, [a-z0-9-] only, at most 100
// characters. Idempotent: Slugify(Slugify(x)) == Slugify(x).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// CalculateDiscount returns the rounded percentage saved going from original
// to current. Returns 0 when either price is non-positive.
func CalculateDiscount(original, current float64) int {
	if original <= 0 || current <= 0 {
		return 0
	}
	return int(math.Round((original - current) / original * 100))
}

// DetectDealType classifies a listing by an ordered keyword cascade over the
// title and retailer name. First match wins; the default is "product".
func DetectDealType(title, retailerName string) string {
	t := strings.ToLower(title)
	r := strings.ToLower(retailerName)

	if strings.Contains(t, "cashback") ||
		strings.Contains(t, "% back") ||
		strings.Contains(r, "shopback") ||
		strings.Contains(r, "cashrewards") {
		return models.DealTypeCashback
	}

	if strings.Contains(t, "coupon") ||
		strings.Contains(t, "promo code") ||
		strings.Contains(t, "discount code") ||
		strings.Contains(t, "voucher") {
		return models.DealTypeCoupon
	}

	if storeWideRe.MatchString(t) &&
		(strings.Contains(t, "sale") ||
			strings.Contains(t, "sitewide") ||
			strings.Contains(t, "store") ||
			strings.Contains(t, "everything") ||
			strings.Contains(t, "all ")) {
		return models.DealTypeStore
	}

	if strings.Contains(t, "flight") ||
		strings.Contains(t, "airline") ||
		strings.Contains(t, "hotel") ||
		strings.Contains(t, "qantas") ||
		strings.Contains(t, "virgin australia") ||
		strings.Contains(t, "jetstar") ||
		strings.Contains(r, "flightfinder") ||
		strings.Contains(r, "expedia") {
		return models.DealTypeTravel
	}

	return models.DealTypeProduct
}

// categoryRule maps keyword patterns over title/retailer to a category slug.
type categoryRule struct {
	category   string
	titleRe    *regexp.Regexp
	retailerRe *regexp.Regexp
}

var categoryRules = []categoryRule{
	{
		category:   "electronics",
		titleRe:    regexp.MustCompile(`phone|iphone|samsung|pixel|earbuds|headphones|speaker|tv|television|monitor|tablet|ipad|watch|smartwatch|camera|gopro|drone`),
		retailerRe: regexp.MustCompile(`jb hi-fi|harvey norman|bing lee|officeworks|apple`),
	},
	{
		category:   "computing",
		titleRe:    regexp.MustCompile(`laptop|computer|pc|macbook|keyboard|mouse|ssd|hard drive|ram|cpu|gpu|graphics card|nvidia|amd|intel|router|nas|server`),
		retailerRe: regexp.MustCompile(`pccasegear|msy|scorptec|umart`),
	},
	{
		category:   "gaming",
		titleRe:    regexp.MustCompile(`game|gaming|xbox|playstation|ps5|nintendo|switch|steam|controller|console`),
		retailerRe: regexp.MustCompile(`eb games|gamestop`),
	},
	{
		category:   "fashion",
		titleRe:    regexp.MustCompile(`shirt|pants|jeans|dress|shoes|sneakers|boots|jacket|coat|clothing|fashion|wear|nike|adidas|puma`),
		retailerRe: regexp.MustCompile(`uniqlo|asos|the iconic|cotton on|h&m|zara`),
	},
	{
		category:   "home-garden",
		titleRe:    regexp.MustCompile(`furniture|sofa|bed|mattress|chair|table|desk|lamp|garden|outdoor|bbq|patio|lawn|plant|pot|tool`),
		retailerRe: regexp.MustCompile(`ikea|bunnings|fantastic furniture|temple & webster|kmart|big w`),
	},
	{
		category:   "sports",
		titleRe:    regexp.MustCompile(`sport|fitness|gym|bike|bicycle|running|yoga|exercise|weight|protein|golf|tennis|football|soccer`),
		retailerRe: regexp.MustCompile(`rebel sport|decathlon|bcf|anaconda`),
	},
}

// DetectCategory infers a product category from title/retailer keywords over
// a fixed taxonomy. The first matching rule wins; the second return is false
// when nothing matches.
func DetectCategory(title, retailerName string) (string, bool) {
	t := strings.ToLower(title)
	r := strings.ToLower(retailerName)
	for _, rule := range categoryRules {
		if rule.titleRe.MatchString(t) || rule.retailerRe.MatchString(r) {
			return rule.category, true
		}
	}
	return "", false
}

// NormalizeTitle strips price, retailer and delivery noise from a listing
// title and truncates it for display.
func NormalizeTitle(title string) string {
	s := titleWasRe.ReplaceAllString(title, "")
	s = titlePriceRe.ReplaceAllString(s, "")
	s = titleRetailerRe.ReplaceAllString(s, "")
	s = titleDeliveredRe.ReplaceAllString(s, "")
	s = titleDeliveryRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 100 {
		s = string(r[:97]) + "..."
	}
	return s
}
