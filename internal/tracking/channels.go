package tracking

import (
	"fmt"
	"strings"
	"time"
)

// Channel identifies a marketing distribution surface with its own
// atr_trk tag format.
type Channel string

const (
	// ChannelPush covers app and web push notifications (N27 tags).
	ChannelPush Channel = "push_n27"
	// ChannelSocial covers paid social placements (A2 tags).
	ChannelSocial Channel = "social_a2"
)

// ChannelParams carries the optional per-channel inputs.
type ChannelParams struct {
	// Source is "APP" or "WEB" for push; anything else falls back to app.
	Source string
	// Product is the vertical name embedded in push tags.
	Product string
	// SocialNetwork selects the A2 platform code.
	SocialNetwork string
	// Date overrides today's date, as YYYY-MM-DD or YYYYMMDD.
	Date string
}

// BuildChannelURL strips the destination URL to its base and decorates it
// with the channel's atr_trk tag and UTM set. Unknown channels return the
// input unchanged.
func BuildChannelURL(rawURL string, channel Channel, campaign string, p ChannelParams) string {
	if rawURL == "" {
		return ""
	}
	base, _, _ := strings.Cut(rawURL, "?")

	switch channel {
	case ChannelPush:
		return buildPushURL(base, campaign, p)
	case ChannelSocial:
		return buildSocialURL(base, campaign, p)
	default:
		return rawURL
	}
}

// resolveDates parses an optional caller date (browser forms send
// YYYY-MM-DD) and returns it as YYYYMMDD and DDMMYY, defaulting to today.
func resolveDates(dateStr string) (long, short string) {
	now := time.Now()
	long = now.Format("20060102")
	short = now.Format("020106")

	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return long, short
	}
	layout := "20060102"
	if strings.Contains(dateStr, "-") {
		layout = "2006-01-02"
	}
	if t, err := time.Parse(layout, dateStr); err == nil {
		long = t.Format("20060102")
		short = t.Format("020106")
	}
	return long, short
}

// buildPushURL builds the N27 push-notification tag:
// N27-{YYYYMMDD}_{Camp}-COM_{DDMMYY}_{Product}_{Source}_{Camp}
func buildPushURL(base, campaign string, p ChannelParams) string {
	source := p.Source
	if source == "" {
		source = "APP"
	}
	product := p.Product
	if product == "" {
		product = "Entradas"
	}

	long, short := resolveDates(p.Date)
	camp := strings.ReplaceAll(strings.TrimSpace(campaign), " ", "")
	atrTrk := fmt.Sprintf("N27-%s_%s-COM_%s_%s_%s_%s", long, camp, short, product, source, camp)

	utmSource := strings.ToLower(source)
	if utmSource != "app" && utmSource != "web" {
		utmSource = "app"
	}

	return mergeParams(base, map[string]string{
		"atr_trk":      atrTrk,
		"utm_source":   utmSource,
		"utm_medium":   "push",
		"utm_campaign": campaign,
	})
}

// buildSocialURL builds the A2 social-ads tag: A2-{PlatformCode}-{Platform}
func buildSocialURL(base, campaign string, p ChannelParams) string {
	network := strings.ToLower(p.SocialNetwork)
	if network == "" {
		network = "instagram"
	}

	var code, platform string
	switch network {
	case "instagram":
		code, platform = "3589", "Instagram"
	case "facebook":
		code, platform = "3589", "Facebook"
	case "tiktok":
		code, platform = "6569", "TikTok"
	default:
		code, platform = "A2", capitalize(network)
	}

	return mergeParams(base, map[string]string{
		"atr_trk":      fmt.Sprintf("A2-%s-%s", code, platform),
		"utm_source":   "meta",
		"utm_medium":   "social_cpc",
		"utm_campaign": campaign,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
