// Package scraper extracts best-effort product data from Atrápalo pages.
// Everything here is untrusted input: selectors break when the site's
// markup changes, so every extraction degrades to an empty field and the
// output goes through the same normalization as CSV data.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/atrapalo/newslettergen/internal/pkg/httpretry"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Product carries the raw scraped fields, one per CSV column of the
// review draft. All values are untrimmed-of-guarantees strings.
type Product struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	PriceOld    string `json:"price_old"`
	Discount    string `json:"discount"`
	Metadata1   string `json:"metadata_1"`
	Metadata2   string `json:"metadata_2"`
	Rating      string `json:"rating"`
	Tag         string `json:"tag"`
	CTA         string `json:"cta"`
	Separator   string `json:"separator"`
}

// Scraper fetches and parses product pages.
type Scraper struct {
	client httpretry.HTTPDoer
}

// New creates a scraper with the given request timeout. Transient
// fetch failures are retried with backoff.
func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{
		client: httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 2),
	}
}

// Fetch downloads and parses a product URL. Hotels and activities have
// different layouts; the URL path decides which parser runs.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	if strings.Contains(rawURL, "/hoteles/") {
		return parseHotel(doc, rawURL), nil
	}
	return parseActivity(doc, rawURL), nil
}

// parseActivity handles leisure pages (shows, concerts, activities).
func parseActivity(doc *goquery.Document, url string) *Product {
	p := &Product{URL: url, Tag: "Sin tag", CTA: "Ver plan"}

	p.Title = strings.TrimSpace(doc.Find("h1").First().Text())

	// Venue and city from the location block; entries carrying commas are
	// full addresses, not labels.
	var parts []string
	doc.Find(".c-header-product__location, .product-location").First().Find("a, span").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" && !strings.Contains(t, ",") {
			parts = append(parts, t)
		}
	})
	if len(parts) > 0 {
		p.Metadata2 = parts[len(parts)-1]
	}
	if len(parts) > 1 {
		p.Metadata1 = parts[0]
	}

	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		p.Image = img
	}

	if price := doc.Find(".product-price__value, .c-price-box__amount").First(); price.Length() > 0 {
		v := strings.TrimSpace(price.Text())
		v = strings.ReplaceAll(v, "€", "")
		v = strings.TrimSpace(strings.ReplaceAll(v, "desde", ""))
		p.Price = v
	}

	if desc := doc.Find(".product-description__content, .c-read-more__content").First(); desc.Length() > 0 {
		text := strings.Join(strings.Fields(desc.Text()), " ")
		if len([]rune(text)) > 160 {
			text = string([]rune(text)[:160])
		}
		p.Description = text + "..."
	}

	if rate := doc.Find(".rating-value, .c-rating-badge__score").First(); rate.Length() > 0 {
		p.Rating = strings.ReplaceAll(strings.TrimSpace(rate.Text()), "/10", "")
	}

	return p
}

// parseHotel handles hotel pages: star category, city from the address,
// JSON-LD price with meta-tag fallback, and amenity keyword tags.
func parseHotel(doc *goquery.Document, url string) *Product {
	p := &Product{URL: url, Tag: "Sin tag", CTA: "Ver hotel"}

	p.Title = strings.TrimSpace(doc.Find("h1.detail-header__title, h1").First().Text())

	city := "tu destino"
	if addr := strings.TrimSpace(doc.Find(".detail-header__address, .address").First().Text()); strings.Contains(addr, ",") {
		pieces := strings.Split(addr, ",")
		city = strings.TrimSpace(pieces[len(pieces)-1])
	}
	p.Metadata2 = ""

	stars := "3"
	if n := doc.Find(".icon-star, .stars i, .category-stars i").Length(); n > 0 {
		stars = fmt.Sprintf("%d", n)
	} else {
		body := strings.ToLower(doc.Text())
		switch {
		case strings.Contains(body, "5 estrellas"):
			stars = "5"
		case strings.Contains(body, "4 estrellas"):
			stars = "4"
		case strings.Contains(body, "2 estrellas"):
			stars = "2"
		}
	}
	p.Metadata1 = fmt.Sprintf("Hotel %s* en hab. doble", stars)

	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		p.Image = img
	}

	p.Price = hotelPrice(doc)
	p.Description = hotelDescription(doc, city)

	if score := doc.Find(".badge-rating__score, .rating-score").First(); score.Length() > 0 {
		p.Rating = strings.TrimSpace(score.Text())
	}

	if tag := hotelTag(strings.ToLower(doc.Text())); tag != "" {
		p.Tag = tag
	}

	return p
}

// hotelPrice prefers the JSON-LD priceRange and falls back to the product
// price meta tag.
func hotelPrice(doc *goquery.Document) string {
	var price string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := sel.Text()
		if !strings.Contains(raw, "priceRange") {
			return true
		}
		var payload struct {
			PriceRange string `json:"priceRange"`
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload.PriceRange == "" {
			return true
		}
		price = strings.TrimSpace(strings.ReplaceAll(payload.PriceRange, "€", ""))
		return false
	})
	if price != "" {
		return price
	}
	if meta, ok := doc.Find(`meta[property="product:price:amount"]`).Attr("content"); ok {
		return meta
	}
	return ""
}

// hotelDescription builds "En {city}, {text}" from the meta description,
// shortened to the card budget.
func hotelDescription(doc *goquery.Document, city string) string {
	raw, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if raw == "" {
		raw = strings.TrimSpace(doc.Find(".description, .hotel-description").First().Text())
	}
	if raw == "" {
		return ""
	}
	raw = strings.ReplaceAll(raw, "Reserva ahora en", "")
	raw = strings.ReplaceAll(raw, "al mejor precio", "")
	raw = strings.TrimSpace(raw)

	desc := raw
	if !strings.HasPrefix(strings.ToLower(raw), "en "+strings.ToLower(city)) {
		desc = fmt.Sprintf("En %s, %s", city, raw)
	}

	runes := []rune(desc)
	if len(runes) > 150 {
		cut := string(runes[:147])
		if i := strings.LastIndex(cut, " "); i >= 0 {
			cut = cut[:i]
		}
		desc = cut + "..."
	}
	return desc
}

// hotelTag picks the single highest-priority amenity keyword found in the
// page text.
func hotelTag(body string) string {
	switch {
	case strings.Contains(body, "pistas") || strings.Contains(body, "esquí"):
		return "A pie de pistas"
	case strings.Contains(body, "spa") || strings.Contains(body, "wellness"):
		return "Spa"
	case strings.Contains(body, "desayuno incluido") || strings.Contains(body, "régimen: desayuno"):
		return "Con Desayuno"
	case strings.Contains(body, "desayuno"):
		return "Desayuno"
	case strings.Contains(body, "piscina"):
		return "Piscina"
	default:
		return ""
	}
}
