package tracking

import (
	"regexp"
	"strings"
	"time"
)

// productIDRe matches the numeric product id embedded in activity and
// event URLs ("..._e12345" / "..._a6789").
var productIDRe = regexp.MustCompile(`_(e|a)(\d+)`)

// InjectCatalogTag decorates a product URL for the legacy CSV import with
// an N1 tag: atr_trk=N1-{identifier}-{campaign}. Hotel pages are tagged by
// date (the URL carries no usable id); everything else prefers the product
// id from the path and falls back to the date rule. The value is appended
// verbatim, without percent-encoding, because the downstream importer
// expects the raw legacy format.
func InjectCatalogTag(rawURL, campaign, dateStr string) string {
	if rawURL == "" {
		return ""
	}
	base, _, _ := strings.Cut(rawURL, "?")

	var identifier string
	if strings.Contains(base, "/hoteles/") || strings.Contains(base, "/hotel/") {
		identifier = dateIdentifier(dateStr)
	} else if m := productIDRe.FindStringSubmatch(base); m != nil {
		identifier = m[2]
	} else {
		identifier = dateIdentifier(dateStr)
	}

	camp := strings.TrimSpace(campaign)
	if camp == "" {
		camp = "CAMPAÑA"
	}
	return base + "?atr_trk=N1-" + identifier + "-" + camp
}

func dateIdentifier(dateStr string) string {
	if dateStr != "" {
		return strings.ReplaceAll(dateStr, "-", "")
	}
	return time.Now().Format("20060102")
}
