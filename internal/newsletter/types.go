// Package newsletter converts the marketing team's product spreadsheets
// into the normalized document consumed by the template renderer.
package newsletter

// BadgeColors is the fixed tag → hex color lookup for card badges.
// Unrecognized tags keep their text but get no color.
var BadgeColors = map[string]string{
	"Próximo estreno":        "#5631B7",
	"Oferta exclusiva":       "#FCC905",
	"Oferta exclusiva Flash": "#FCC905",
	"Novedad":                "#027D49",
	"Fecha única":            "#96298D",
}

// MaxDescriptionChars is the display budget for card descriptions.
const MaxDescriptionChars = 150

// HeaderConfig holds the recognized keys of the free-form block that
// precedes the tabular section.
type HeaderConfig struct {
	ImageURL  string `json:"image_url"`
	LinkURL   string `json:"link_url"`
	Preheader string `json:"preheader"`
}

// FooterConfig holds the footer portion of the leading key-value block.
type FooterConfig struct {
	ButtonText     string `json:"button_text"`
	ButtonURL      string `json:"button_url"`
	BannerImageURL string `json:"banner_image_url"`
	BannerLinkURL  string `json:"banner_link_url"`
	Conditions     string `json:"conditions"`
}

// Card is one promotional item of the newsletter. Nullable fields are
// pointers so the renderer can distinguish "absent" from "empty".
type Card struct {
	Order int `json:"order"`

	Title     string `json:"title"`
	Metadata1 string `json:"metadata_1"`
	Metadata2 string `json:"metadata_2"`
	// Metadata is "Metadata1 · Metadata2" with empty sides collapsed.
	Metadata string `json:"metadata"`

	DescriptionRaw   string `json:"description_raw"`
	DescriptionShort string `json:"description_short"`
	Description      string `json:"description"`

	Image string `json:"image"`
	URL   string `json:"url"`

	CTAURL   string `json:"cta_url"`
	CTALabel string `json:"cta_label"`
	CTAType  string `json:"cta_type"`

	DiscountPercentage *int `json:"discount_percentage"`

	PriceOld *string `json:"price_old"`
	Price    *string `json:"price"`

	BadgeText  *string `json:"badge_text"`
	BadgeColor *string `json:"badge_color"`

	RatingValue          *float64 `json:"rating_value"`
	RatingValueFormatted *string  `json:"rating_value_formatted"`
	RatingText           *string  `json:"rating_text"`

	Separator      *string `json:"separator"`
	SeparatorImage *string `json:"separator_image"`

	Conditions string `json:"conditions"`
}

// Document is the sole output of the parsing stage and the sole input to
// the template renderer.
type Document struct {
	Header HeaderConfig `json:"header"`
	Footer FooterConfig `json:"footer"`
	Cards  []Card       `json:"cards"`
}
