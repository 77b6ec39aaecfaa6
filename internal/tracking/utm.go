// Package tracking builds the attribution decorations carried by every
// outbound link: standard UTM parameters plus the in-house atr_trk tag.
package tracking

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCampaign is used when no campaign name is supplied.
const DefaultCampaign = "newsletter"

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCampaign turns a human campaign name into a clean utm_campaign
// value: trimmed, lowercased, spaces to hyphens, diacritics stripped
// ("Ñoño" → "nono").
func NormalizeCampaign(name string) string {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	if name == "" {
		return DefaultCampaign
	}
	if stripped, _, err := transform.String(stripMarks, name); err == nil {
		name = stripped
	}
	return name
}

// mergeParams folds params into the URL's query string, overwriting
// same-named keys and preserving everything else (notably atr_trk).
// A URL that cannot be decomposed is treated as an opaque string and gets
// the query appended, so the pipeline never fails on one bad link.
func mergeParams(rawURL string, params map[string]string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		vals := url.Values{}
		for k, v := range params {
			vals.Set(k, v)
		}
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + vals.Encode()
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// AddUTMParams decorates a single URL with the newsletter UTM set.
func AddUTMParams(rawURL, campaign, content string) string {
	return mergeParams(rawURL, map[string]string{
		"utm_source":   "atrapalo",
		"utm_medium":   "newsletter",
		"utm_campaign": campaign,
		"utm_content":  content,
	})
}

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

// classifyWindow is how much preceding markup is inspected to guess which
// visual block a link belongs to. Context sniffing is best-effort: the
// markers are the class names emitted by the master template.
const classifyWindow = 200

// classifyContent resolves the utm_content bucket for a link. Block
// markers in the preceding HTML take precedence over URL substrings.
func classifyContent(before, url string) string {
	switch {
	case strings.Contains(before, "single_card_block"):
		return "card"
	case strings.Contains(before, "hero") || strings.Contains(before, "HEADER"):
		return "hero"
	case strings.Contains(before, "recomendaciones"):
		return "cta-recom"
	case strings.Contains(before, "banner"):
		return "banner"
	case strings.Contains(url, "atrapalo-app"):
		return "app"
	case strings.Contains(url, "houdinis"):
		return "social-houdinis"
	case strings.Contains(url, "facebook"):
		return "social-facebook"
	case strings.Contains(url, "instagram"):
		return "social-instagram"
	case strings.Contains(url, "twitter"):
		return "social-twitter"
	case strings.Contains(url, "youtube"):
		return "social-youtube"
	case strings.Contains(url, "atrapalo.com"):
		return "logo"
	default:
		return "link"
	}
}

// DecorateHTML rewrites every href in the document with the UTM set for
// the given campaign. mailto:, tel: and fragment links are left alone.
func DecorateHTML(html, campaignName string) string {
	campaign := NormalizeCampaign(campaignName)

	var b strings.Builder
	b.Grow(len(html))
	last := 0

	for _, m := range hrefRe.FindAllStringSubmatchIndex(html, -1) {
		start, end := m[0], m[1]
		urlStart, urlEnd := m[2], m[3]
		link := html[urlStart:urlEnd]

		b.WriteString(html[last:start])
		last = end

		if strings.HasPrefix(link, "mailto:") || strings.HasPrefix(link, "tel:") || strings.HasPrefix(link, "#") {
			b.WriteString(html[start:end])
			continue
		}

		windowStart := start - classifyWindow
		if windowStart < 0 {
			windowStart = 0
		}
		content := classifyContent(html[windowStart:start], link)

		b.WriteString(`href="`)
		b.WriteString(AddUTMParams(link, campaign, content))
		b.WriteString(`"`)
	}
	b.WriteString(html[last:])
	return b.String()
}
