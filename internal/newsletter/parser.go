package newsletter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// sentinel marks the first cell of the row that starts the tabular section.
const sentinel = "Orden"

// Parse reads the whole CSV input and returns the normalized document.
// A structurally missing table yields an empty card list, never an error;
// only unreadable input surfaces one.
func Parse(r io.Reader) (*Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		rows = append(rows, row)
	}
	return ParseRows(rows), nil
}

// ParseRows converts an already-split grid of cells into a Document.
func ParseRows(rows [][]string) *Document {
	var headerBlock [][]string
	var tableHeader []string
	var tableRows [][]string
	inTable := false

	for _, row := range rows {
		if !inTable && len(row) > 0 && strings.TrimSpace(row[0]) == sentinel {
			inTable = true
			tableHeader = row
			continue
		}
		if !inTable {
			headerBlock = append(headerBlock, row)
		} else {
			tableRows = append(tableRows, row)
		}
	}

	header, footer := parseHeaderBlock(headerBlock)

	doc := &Document{
		Header: header,
		Footer: footer,
		Cards:  []Card{},
	}
	if tableHeader != nil {
		doc.Cards = parseCards(tableHeader, tableRows)
	}
	return doc
}

// columnIndex maps column names to positions. Built once from the sentinel
// row and reused for every data row; duplicate names keep the last
// occurrence, matching the legacy importer.
type columnIndex map[string]int

func buildColumnIndex(headerRow []string) columnIndex {
	idx := make(columnIndex, len(headerRow))
	for i, name := range headerRow {
		idx[name] = i
	}
	return idx
}

// cell returns the trimmed value of a named column, or "" when the column
// is absent or the row is short. Columns shift between input files, so a
// miss is never an error.
func (idx columnIndex) cell(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCards converts the tabular section into sorted Card records.
// Malformed cells degrade to nil fields; rows without a parseable order
// are dropped silently.
func parseCards(headerRow []string, dataRows [][]string) []Card {
	idx := buildColumnIndex(headerRow)

	cards := make([]Card, 0, len(dataRows))
	for _, row := range dataRows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		order, err := strconv.Atoi(idx.cell(row, "Orden"))
		if err != nil {
			continue
		}

		title := idx.cell(row, "Nombre Oferta")
		meta1 := idx.cell(row, "Metadato 1")
		meta2 := idx.cell(row, "Metadato 2")

		descriptionRaw := idx.cell(row, "Descripción")

		ctaLabel := idx.cell(row, "CTA")
		if ctaLabel == "" {
			ctaLabel = idx.cell(row, bom+"CTA")
		}
		if ctaLabel == "" {
			ctaLabel = idx.cell(row, " CTA")
		}
		if ctaLabel == "" {
			ctaLabel = "Ver plan"
		}

		url := idx.cell(row, "URL oferta")

		card := Card{
			Order:     order,
			Title:     title,
			Metadata1: meta1,
			Metadata2: meta2,
			Metadata:  strings.Trim(meta1+" · "+meta2, " ·"),

			DescriptionRaw:   descriptionRaw,
			DescriptionShort: Shorten(descriptionRaw, MaxDescriptionChars),
			Description:      descriptionRaw,

			Image: idx.cell(row, "URL foto"),
			URL:   url,

			CTAURL:   url,
			CTALabel: ctaLabel,
			CTAType:  "ver_plan",

			Conditions: idx.cell(row, "CONDICIONES"),
		}

		if d, err := strconv.Atoi(idx.cell(row, "Descuento")); err == nil {
			card.DiscountPercentage = &d
		}

		// price_old only survives when nonzero and parseable; the current
		// price keeps a formatted value whenever one parses.
		if v, ok := ParseEuroFloat(idx.cell(row, "Precio")); ok && v != 0 {
			s := FormatPrice(v)
			card.PriceOld = &s
		}
		if v, ok := ParseEuroFloat(idx.cell(row, "Precio ATR")); ok {
			s := FormatPrice(v)
			card.Price = &s
		}

		parseRating(&card, idx.cell(row, "RATING"))

		if tags := idx.cell(row, "TAGS"); tags != "" && !strings.EqualFold(tags, "sin tag") {
			card.BadgeText = &tags
			if color, ok := BadgeColors[tags]; ok {
				card.BadgeColor = &color
			}
		}

		if sep := idx.cell(row, "SEPARADOR"); sep != "" {
			card.Separator = &sep
		}
		if sepImg := idx.cell(row, "SEPARADOR IMG"); sepImg != "" {
			card.SeparatorImage = &sepImg
		}

		cards = append(cards, card)
	}

	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Order < cards[j].Order })
	return cards
}

// parseRating splits "9,2 - Excelente" style cells: the left side is the
// numeric rating, the right side a free-text qualifier. A dash with a
// non-numeric left side still captures the text and leaves the value nil.
func parseRating(card *Card, raw string) {
	if raw == "" {
		return
	}
	numPart := raw
	if before, after, found := strings.Cut(raw, "-"); found {
		numPart = before
		text := strings.TrimSpace(after)
		card.RatingText = &text
	}
	numPart = strings.ReplaceAll(strings.TrimSpace(numPart), ",", ".")
	if v, err := strconv.ParseFloat(numPart, 64); err == nil {
		card.RatingValue = &v
		s := FormatRating(v)
		card.RatingValueFormatted = &s
	}
}
