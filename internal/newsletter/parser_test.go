package newsletter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tableHeader = []string{
	"Orden", "Nombre Oferta", "Metadato 1", "Metadato 2", "Descripción",
	"URL foto", "URL oferta", "Descuento", "Precio", "Precio ATR",
	"TAGS", "RATING", "SEPARADOR", "SEPARADOR IMG", "CTA",
}

func row(cells map[string]string) []string {
	out := make([]string, len(tableHeader))
	for i, name := range tableHeader {
		out[i] = cells[name]
	}
	return out
}

func TestParseHeaderBlock(t *testing.T) {
	rows := [][]string{
		{"LOCALIZACIÓN:", "Madrid"}, // unrecognized, ignored
		{"HEADER:", "https://cdn.atrapalo.com/header.jpg"},
		{"LINK HEADER:", "https://www.atrapalo.com/entradas/"},
		{"\ufeffPREHEADER:", "No te lo pierdas"},
		{"TXT_BOTON_FOOTER:", "Ver todos los planes"},
		{"LINK_FOOTER:", "https://www.atrapalo.com"},
		{"BANNER_FOOTER:", "https://cdn.atrapalo.com/banner.jpg"},
		{"LINK_BANNER_FOOTER:", "https://www.atrapalo.com/promos"},
		{"CONDICIONES_FOOTER:", "Hasta agotar existencias"},
		{},
		{""},
	}

	header, footer := parseHeaderBlock(rows)

	assert.Equal(t, "https://cdn.atrapalo.com/header.jpg", header.ImageURL)
	assert.Equal(t, "https://www.atrapalo.com/entradas/", header.LinkURL)
	assert.Equal(t, "No te lo pierdas", header.Preheader)
	assert.Equal(t, "Ver todos los planes", footer.ButtonText)
	assert.Equal(t, "https://www.atrapalo.com", footer.ButtonURL)
	assert.Equal(t, "https://cdn.atrapalo.com/banner.jpg", footer.BannerImageURL)
	assert.Equal(t, "https://www.atrapalo.com/promos", footer.BannerLinkURL)
	assert.Equal(t, "Hasta agotar existencias", footer.Conditions)
}

func TestParseHeaderBlockLastWriteWins(t *testing.T) {
	header, _ := parseHeaderBlock([][]string{
		{"HEADER:", "first.jpg"},
		{"HEADER:", "second.jpg"},
	})
	assert.Equal(t, "second.jpg", header.ImageURL)
}

func TestParseHeaderBlockValuelessRow(t *testing.T) {
	_, footer := parseHeaderBlock([][]string{{"CONDICIONES_FOOTER:"}})
	assert.Equal(t, "", footer.Conditions)
}

func TestParseCardsSortsByOrder(t *testing.T) {
	rows := [][]string{
		row(map[string]string{"Orden": "3", "Nombre Oferta": "C"}),
		row(map[string]string{"Orden": "1", "Nombre Oferta": "A"}),
		row(map[string]string{"Orden": "2", "Nombre Oferta": "B"}),
	}
	cards := parseCards(tableHeader, rows)

	require.Len(t, cards, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{cards[0].Order, cards[1].Order, cards[2].Order})
	assert.Equal(t, "A", cards[0].Title)
}

func TestParseCardsDropsUnparseableOrder(t *testing.T) {
	rows := [][]string{
		row(map[string]string{"Orden": "abc", "Nombre Oferta": "skip me"}),
		row(map[string]string{"Orden": "1", "Nombre Oferta": "keep"}),
		{},
		{"  "},
	}
	cards := parseCards(tableHeader, rows)
	require.Len(t, cards, 1)
	assert.Equal(t, "keep", cards[0].Title)
}

func TestParseCardsFields(t *testing.T) {
	rows := [][]string{row(map[string]string{
		"Orden":         "1",
		"Nombre Oferta": "El Rey León",
		"Metadato 1":    "Teatro Lope de Vega",
		"Metadato 2":    "Madrid",
		"Descripción":   "El musical de todos los tiempos.",
		"URL foto":      "https://cdn.atrapalo.com/leon.jpg",
		"URL oferta":    "https://www.atrapalo.com/entradas/el-rey-leon_e12345/",
		"Descuento":     "25",
		"Precio":        "1.200,50",
		"Precio ATR":    "99,95",
		"TAGS":          "Novedad",
		"RATING":        "9,2 - Excelente",
		"SEPARADOR":     "Teatro",
	})}
	cards := parseCards(tableHeader, rows)
	require.Len(t, cards, 1)
	c := cards[0]

	assert.Equal(t, "Teatro Lope de Vega · Madrid", c.Metadata)
	assert.Equal(t, c.URL, c.CTAURL)
	assert.Equal(t, "Ver plan", c.CTALabel)

	require.NotNil(t, c.DiscountPercentage)
	assert.Equal(t, 25, *c.DiscountPercentage)

	require.NotNil(t, c.PriceOld)
	assert.Equal(t, "1200,50", *c.PriceOld)
	require.NotNil(t, c.Price)
	assert.Equal(t, "99,95", *c.Price)

	require.NotNil(t, c.RatingValue)
	assert.Equal(t, 9.2, *c.RatingValue)
	require.NotNil(t, c.RatingValueFormatted)
	assert.Equal(t, "9.2", *c.RatingValueFormatted)
	require.NotNil(t, c.RatingText)
	assert.Equal(t, "Excelente", *c.RatingText)

	require.NotNil(t, c.BadgeText)
	assert.Equal(t, "Novedad", *c.BadgeText)
	require.NotNil(t, c.BadgeColor)
	assert.Equal(t, "#027D49", *c.BadgeColor)

	require.NotNil(t, c.Separator)
	assert.Equal(t, "Teatro", *c.Separator)
	assert.Nil(t, c.SeparatorImage)
}

func TestParseCardsMetadataCollapses(t *testing.T) {
	cards := parseCards(tableHeader, [][]string{
		row(map[string]string{"Orden": "1", "Metadato 1": "Solo recinto"}),
		row(map[string]string{"Orden": "2", "Metadato 2": "Solo ciudad"}),
		row(map[string]string{"Orden": "3"}),
	})
	require.Len(t, cards, 3)
	assert.Equal(t, "Solo recinto", cards[0].Metadata)
	assert.Equal(t, "Solo ciudad", cards[1].Metadata)
	assert.Equal(t, "", cards[2].Metadata)
}

func TestParseCardsBadges(t *testing.T) {
	cards := parseCards(tableHeader, [][]string{
		row(map[string]string{"Orden": "1", "TAGS": "Sin tag"}),
		row(map[string]string{"Orden": "2", "TAGS": "SIN TAG"}),
		row(map[string]string{"Orden": "3", "TAGS": "Fecha única"}),
		row(map[string]string{"Orden": "4", "TAGS": "Etiqueta inventada"}),
	})
	require.Len(t, cards, 4)

	assert.Nil(t, cards[0].BadgeText)
	assert.Nil(t, cards[1].BadgeText) // sentinel match is case-insensitive

	require.NotNil(t, cards[2].BadgeColor)
	assert.Equal(t, "#96298D", *cards[2].BadgeColor)

	// Unrecognized tag keeps its text but gets no color.
	require.NotNil(t, cards[3].BadgeText)
	assert.Equal(t, "Etiqueta inventada", *cards[3].BadgeText)
	assert.Nil(t, cards[3].BadgeColor)
}

func TestParseCardsBadgeColorOnlyForFixedTags(t *testing.T) {
	for tag, color := range BadgeColors {
		cards := parseCards(tableHeader, [][]string{
			row(map[string]string{"Orden": "1", "TAGS": tag}),
		})
		require.Len(t, cards, 1)
		require.NotNil(t, cards[0].BadgeColor)
		assert.Equal(t, color, *cards[0].BadgeColor)
	}
}

func TestParseCardsRatingEdgeCases(t *testing.T) {
	cards := parseCards(tableHeader, [][]string{
		row(map[string]string{"Orden": "1", "RATING": "8"}),
		row(map[string]string{"Orden": "2", "RATING": "10,0"}),
		row(map[string]string{"Orden": "3", "RATING": "bueno - Excelente"}),
		row(map[string]string{"Orden": "4"}),
	})
	require.Len(t, cards, 4)

	require.NotNil(t, cards[0].RatingValue)
	assert.Equal(t, 8.0, *cards[0].RatingValue)
	assert.Nil(t, cards[0].RatingText)

	require.NotNil(t, cards[1].RatingValueFormatted)
	assert.Equal(t, "10", *cards[1].RatingValueFormatted)

	// Dash with a non-numeric left side: nil value, text kept as-is.
	assert.Nil(t, cards[2].RatingValue)
	require.NotNil(t, cards[2].RatingText)
	assert.Equal(t, "Excelente", *cards[2].RatingText)

	assert.Nil(t, cards[3].RatingValue)
	assert.Nil(t, cards[3].RatingText)
}

func TestParseCardsPrices(t *testing.T) {
	cards := parseCards(tableHeader, [][]string{
		row(map[string]string{"Orden": "1", "Precio": "0", "Precio ATR": "45"}),
		row(map[string]string{"Orden": "2", "Precio": "no disponible", "Precio ATR": ""}),
	})
	require.Len(t, cards, 2)

	// Zero and unparseable old prices are dropped entirely.
	assert.Nil(t, cards[0].PriceOld)
	require.NotNil(t, cards[0].Price)
	assert.Equal(t, "45", *cards[0].Price)

	assert.Nil(t, cards[1].PriceOld)
	assert.Nil(t, cards[1].Price)
}

func TestParseCardsCTAFallbacks(t *testing.T) {
	bomHeader := append([]string{}, tableHeader...)
	bomHeader[14] = "\ufeffCTA"
	cards := parseCards(bomHeader, [][]string{row(map[string]string{"Orden": "1"})})
	require.Len(t, cards, 1)
	assert.Equal(t, "Ver plan", cards[0].CTALabel)

	r := row(map[string]string{"Orden": "1"})
	r[14] = "Ver hotel"
	cards = parseCards(bomHeader, [][]string{r})
	require.Len(t, cards, 1)
	assert.Equal(t, "Ver hotel", cards[0].CTALabel)

	spaceHeader := append([]string{}, tableHeader...)
	spaceHeader[14] = " CTA"
	cards = parseCards(spaceHeader, [][]string{r})
	require.Len(t, cards, 1)
	assert.Equal(t, "Ver hotel", cards[0].CTALabel)
}

func TestParseFullDocument(t *testing.T) {
	csv := strings.Join([]string{
		`HEADER:,https://cdn.atrapalo.com/header.jpg`,
		`PREHEADER:,Planes de la semana`,
		`CONDICIONES_FOOTER:,Condiciones aplican`,
		``,
		`Orden,Nombre Oferta,Metadato 1,Metadato 2,Descripción,URL foto,URL oferta,Descuento,Precio,Precio ATR,TAGS,RATING,SEPARADOR,SEPARADOR IMG,CTA`,
		`2,Plan B,,,Desc B,,https://www.atrapalo.com/b,,,"29,90",Sin tag,,,,`,
		`1,Plan A,,,Desc A,,https://www.atrapalo.com/a,10,"50","39,95",Novedad,"9,5",,,Ver ya`,
	}, "\n")

	doc, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.atrapalo.com/header.jpg", doc.Header.ImageURL)
	assert.Equal(t, "Planes de la semana", doc.Header.Preheader)
	assert.Equal(t, "Condiciones aplican", doc.Footer.Conditions)

	require.Len(t, doc.Cards, 2)
	assert.Equal(t, "Plan A", doc.Cards[0].Title)
	assert.Equal(t, "Ver ya", doc.Cards[0].CTALabel)
	assert.Equal(t, "Plan B", doc.Cards[1].Title)
}

func TestParseWithoutTable(t *testing.T) {
	doc, err := Parse(strings.NewReader("HEADER:,img.jpg\nPREHEADER:,hola\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Cards)
	assert.NotNil(t, doc.Cards)
	assert.Equal(t, "img.jpg", doc.Header.ImageURL)
}

func TestParseEmptyInput(t *testing.T) {
	doc, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Cards)
}
