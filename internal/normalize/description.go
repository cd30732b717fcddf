package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
	urlRe          = regexp.MustCompile(`(?i)https?://\S+`)
	ctaRe          = regexp.MustCompile(`(?i)\b(go to deal|view deal|buy now|shop now|get deal|click here|read more)\b`)
	referralRe     = regexp.MustCompile(`(?i)\b(referral|affiliate|ref link|ref code)\b[^.]*\.`)
	attributionRe  = regexp.MustCompile(`(?i)\b(posted by|submitted by|via|by|from)\s+[@\w]+\b`)
	boilerplateRe  = regexp.MustCompile(`(?i)\b(ozbargain|ozb|bargain|deal alert|price error|hot deal|expired|targeted|ymmv)\b:?\s*`)
	descPriceRe    = regexp.MustCompile(`\$\d+(?:\.\d{2})?(?:\s*[-–]\s*\$\d+(?:\.\d{2})?)?`)
	descWasRe      = regexp.MustCompile(`(?i)was\s*\$?\d+(?:\.\d{2})?`)
	percentOffRe   = regexp.MustCompile(`(?i)\d+%\s*off\b`)
	couponCodeRe   = regexp.MustCompile(`(?i)\b(code|coupon|promo|voucher):\s*\w+\b`)
	atRetailerRe   = regexp.MustCompile(`@\s*[\w\s&]+(\(|$)`)
	deliveryCostRe = regexp.MustCompile(`(?i)\bdelivery[:\s]+\$?\d+(?:\.\d{2})?\b`)
	freeShippingRe = regexp.MustCompile(`(?i)\bfree\s+(shipping|delivery)\b`)
	imageAltRe     = regexp.MustCompile(`(?i)\[image\]`)
	emptyParensRe  = regexp.MustCompile(`\(\s*\)`)
	emptyBracketRe = regexp.MustCompile(`\[\s*\]`)
	doublePunctRe  = regexp.MustCompile(`\s*[,;]\s*[,;]\s*`)
	multiDotRe     = regexp.MustCompile(`\.{2,}`)
	spaceDotRe     = regexp.MustCompile(`\s+\.`)
	dotDotRe       = regexp.MustCompile(`\.\s+\.`)
	leadPunctRe    = regexp.MustCompile(`^[,;:\s.]+`)
	trailPunctRe   = regexp.MustCompile(`[,;:\s]+$`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]$`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// DecodeEntities resolves the handful of HTML entities syndication feeds
// actually emit.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// CleanDescription strips markup, prices, marketing boilerplate and
// aggregator noise from a raw HTML-bearing description. The second return is
// false when the cleaned text is too short to be worth storing, or when it is
// mostly a restatement of the title.
func CleanDescription(raw, title string) (string, bool) {
	if raw == "" {
		return "", false
	}

	desc := htmlTagRe.ReplaceAllString(raw, " ")
	desc = DecodeEntities(desc)
	desc = urlRe.ReplaceAllString(desc, "")
	desc = ctaRe.ReplaceAllString(desc, "")
	desc = referralRe.ReplaceAllString(desc, "")
	desc = attributionRe.ReplaceAllString(desc, "")
	desc = boilerplateRe.ReplaceAllString(desc, "")
	desc = descWasRe.ReplaceAllString(desc, "")
	desc = descPriceRe.ReplaceAllString(desc, "")
	desc = percentOffRe.ReplaceAllString(desc, "")
	desc = couponCodeRe.ReplaceAllString(desc, "")
	desc = atRetailerRe.ReplaceAllString(desc, "")
	desc = deliveryCostRe.ReplaceAllString(desc, "")
	desc = freeShippingRe.ReplaceAllString(desc, "")
	desc = imageAltRe.ReplaceAllString(desc, "")
	desc = emptyParensRe.ReplaceAllString(desc, "")
	desc = emptyBracketRe.ReplaceAllString(desc, "")
	desc = doublePunctRe.ReplaceAllString(desc, ", ")
	desc = multiDotRe.ReplaceAllString(desc, ".")
	desc = spaceDotRe.ReplaceAllString(desc, ".")
	desc = dotDotRe.ReplaceAllString(desc, ".")
	desc = multiSpaceRe.ReplaceAllString(desc, " ")
	desc = strings.TrimSpace(desc)

	desc = leadPunctRe.ReplaceAllString(desc, "")
	desc = trailPunctRe.ReplaceAllString(desc, "")

	if desc != "" {
		first, size := utf8.DecodeRuneInString(desc)
		desc = string(unicode.ToUpper(first)) + desc[size:]
	}
	if desc != "" && !sentenceEndRe.MatchString(desc) {
		desc += "."
	}

	if len(desc) < 20 {
		return "", false
	}
	if overlapsTitle(desc, title) {
		return "", false
	}

	if r := []rune(desc); len(r) > 400 {
		desc = string(r[:397]) + "..."
	}
	return desc, true
}

// overlapsTitle reports whether more than 80% of the title's significant
// words reappear in the description. Near-duplicate descriptions carry no
// information beyond the title.
func overlapsTitle(desc, title string) bool {
	titleWords := significantWords(title)
	if len(titleWords) == 0 {
		return false
	}
	descWords := make(map[string]struct{})
	for _, w := range significantWords(desc) {
		descWords[w] = struct{}{}
	}
	overlap := 0
	for _, w := range titleWords {
		if _, ok := descWords[w]; ok {
			overlap++
		}
	}
	return float64(overlap)/float64(len(titleWords)) > 0.8
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if len(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}
