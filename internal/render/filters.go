package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/atrapalo/newslettergen/internal/newsletter"
)

// registerFilters adds the newsletter-specific Liquid filters.
func (e *Engine) registerFilters() {
	// Fallback value: {{ card.cta_label | default: "Ver plan" }}
	e.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		if s := fmt.Sprintf("%v", value); s == "" || s == "<nil>" {
			return defaultVal
		}
		return value
	})

	// Spanish price display: {{ card.price | europrice }}
	e.engine.RegisterFilter("europrice", func(value interface{}) string {
		f, ok := toFloat(value)
		if !ok {
			return fmt.Sprintf("%v", value)
		}
		return newsletter.FormatPrice(f)
	})

	// Rating display: {{ card.rating_value | rating }}
	e.engine.RegisterFilter("rating", func(value interface{}) string {
		f, ok := toFloat(value)
		if !ok {
			return ""
		}
		return newsletter.FormatRating(f)
	})

	// Word-boundary truncation: {{ card.description | shorten: 150 }}
	e.engine.RegisterFilter("shorten", func(s string, max int) string {
		if max <= 0 {
			max = newsletter.MaxDescriptionChars
		}
		return newsletter.Shorten(s, max)
	})

	// CDN resize: {{ card.image | resize: 600 }}
	e.engine.RegisterFilter("resize", func(rawURL string, width int) string {
		return ResizeImageURL(rawURL, width, 75)
	})
}

// ResizeImageURL appends the CDN's avif/quality/width query parameters to
// an Atrápalo image URL. Non-CDN URLs pass through untouched.
func ResizeImageURL(rawURL string, width, quality int) string {
	if rawURL == "" || !strings.Contains(rawURL, "atrapalo.com") {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("auto", "avif")
	q.Set("quality", strconv.Itoa(quality))
	if width > 0 {
		q.Set("width", strconv.Itoa(width))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
