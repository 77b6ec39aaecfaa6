package newsletter

import "strings"

// bom is the UTF-8 byte order mark that Excel prepends to exported CSVs.
// Keys that commonly appear in the first cell of a file show up with it
// glued to the key name.
const bom = "\ufeff"

// parseHeaderBlock scans the rows that precede the "Orden" sentinel and
// fills the header/footer configs from the recognized key:value pairs.
// Unrecognized keys are ignored; later duplicates win.
func parseHeaderBlock(rows [][]string) (HeaderConfig, FooterConfig) {
	var header HeaderConfig
	var footer FooterConfig

	targets := map[string]*string{
		"HEADER:":      &header.ImageURL,
		"LINK HEADER:": &header.LinkURL,

		"PREHEADER:":       &header.Preheader,
		bom + "PREHEADER:": &header.Preheader,

		"TXT_BOTON_FOOTER:":   &footer.ButtonText,
		"LINK_FOOTER:":        &footer.ButtonURL,
		"BANNER_FOOTER:":      &footer.BannerImageURL,
		"LINK_BANNER_FOOTER:": &footer.BannerLinkURL,

		"CONDICIONES_FOOTER:":       &footer.Conditions,
		bom + "CONDICIONES_FOOTER:": &footer.Conditions,
	}

	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		key := strings.TrimSpace(row[0])
		value := ""
		if len(row) > 1 {
			value = strings.TrimSpace(row[1])
		}
		if dst, ok := targets[key]; ok {
			*dst = value
		}
	}

	return header, footer
}
