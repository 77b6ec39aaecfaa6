package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atrapalo/newslettergen/internal/newsletter"
	"github.com/atrapalo/newslettergen/internal/tracking"
)

// exportRequest carries everything the legacy CSV layout needs beyond
// the document itself.
type exportRequest struct {
	Campaign string               `json:"campaign"`
	Product  string               `json:"product"`
	SendType string               `json:"send_type"`
	Date     string               `json:"date"`
	Subject  string               `json:"subject"`
	Document *newsletter.Document `json:"document"`
}

// ExportCSV writes a draft back out in the legacy CSV layout, with N1
// catalog tracking on every product link and Spanish number formatting
// on prices. The payload starts with a UTF-8 BOM so Excel opens it with
// the right encoding.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Document == nil {
		respondError(w, http.StatusBadRequest, "missing document")
		return
	}

	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	writeExportCSV(&buf, &req)

	w.Header().Set("Content-Disposition", "attachment; filename=input_scraped.csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Write(buf.Bytes())
}

func writeExportCSV(buf *bytes.Buffer, req *exportRequest) {
	doc := req.Document
	writer := csv.NewWriter(buf)

	trk := func(u string) string {
		return tracking.InjectCatalogTag(u, req.Campaign, req.Date)
	}

	// Header block rows are padded to the table width so legacy imports
	// see a rectangular file.
	pad := make([]string, 12)
	kv := func(key, value string) {
		writer.Write(append([]string{key, value}, pad...))
	}

	kv("LOCALIZACIÓN:", req.Campaign)
	kv("PRODUCTO:", req.Product)
	kv("TIPO DE ENVÍO:", req.SendType)
	kv("FENVIO:", req.Date)
	kv("HEADER:", doc.Header.ImageURL)
	kv("LINK HEADER:", trk(doc.Header.LinkURL))
	kv("ASUNTO:", req.Subject)
	kv("PREHEADER:", doc.Header.Preheader)
	kv("TXT_BOTON_FOOTER:", doc.Footer.ButtonText)
	kv("LINK_FOOTER:", trk(doc.Footer.ButtonURL))
	kv("BANNER_FOOTER:", doc.Footer.BannerImageURL)
	kv("LINK_BANNER_FOOTER:", trk(doc.Footer.BannerLinkURL))
	kv("CONDICIONES_FOOTER:", doc.Footer.Conditions)
	writer.Write([]string{""})
	writer.Write([]string{""})
	writer.Write([]string{""})

	writer.Write([]string{
		"Orden", "Nombre Oferta", "Metadato 1", "Metadato 2", "Descripción",
		"URL foto", "URL oferta", "Descuento", "Precio", "Precio ATR",
		"TAGS", "RATING", "SEPARADOR", "SEPARADOR IMG", "CTA",
	})

	for _, card := range doc.Cards {
		writer.Write(exportRow(&card, trk))
	}

	writer.Flush()
}

func exportRow(card *newsletter.Card, trk func(string) string) []string {
	description := card.DescriptionRaw
	if description == "" {
		description = card.Description
	}

	tag := "Sin tag"
	if card.BadgeText != nil && *card.BadgeText != "" {
		tag = *card.BadgeText
	}

	cta := card.CTALabel
	if cta == "" {
		cta = "Ver plan"
	}

	return []string{
		strconv.Itoa(card.Order),
		card.Title,
		card.Metadata1,
		card.Metadata2,
		description,
		card.Image,
		trk(card.URL),
		deref(intString(card.DiscountPercentage)),
		newsletter.FormatSpanishNumber(deref(card.PriceOld)),
		newsletter.FormatSpanishNumber(deref(card.Price)),
		tag,
		exportRating(card),
		deref(card.Separator),
		"",
		cta,
	}
}

// exportRating rebuilds the legacy rating cell. Bare scores get the
// default qualifier appended; anything already carrying a dash passes
// through.
func exportRating(card *newsletter.Card) string {
	var value string
	switch {
	case card.RatingValueFormatted != nil:
		value = *card.RatingValueFormatted
	case card.RatingText != nil:
		value = *card.RatingText
	}
	if value == "" {
		return ""
	}

	if card.RatingText != nil && card.RatingValueFormatted != nil {
		return *card.RatingValueFormatted + " - " + *card.RatingText
	}
	if card.RatingValueFormatted != nil {
		return *card.RatingValueFormatted + " - Excelente"
	}
	return value
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intString(p *int) *string {
	if p == nil {
		return nil
	}
	s := strconv.Itoa(*p)
	return &s
}
