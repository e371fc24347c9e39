package jpkxml

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

const taxOfficePath = "//xsd:simpleType[@name='TKodUS']/xsd:restriction/xsd:enumeration"

// ParseTaxOffices lee la enumeración TKodUS del XSD de urzędy skarbowe (KodyUrzedowSkarbowych).
// Acepta UTF-8, ISO-8859-2 y windows-1250.
func ParseTaxOffices(r io.Reader) ([]entity.TaxOffice, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("jpkxml: leer XSD: %w", err)
	}

	var out []entity.TaxOffice
	for _, el := range doc.FindElements(taxOfficePath) {
		code := el.SelectAttrValue("value", "")
		if code == "" {
			continue
		}
		name := ""
		if d := el.FindElement("xsd:annotation/xsd:documentation"); d != nil {
			name = strings.TrimSpace(d.Text())
		}
		out = append(out, entity.TaxOffice{Code: code, Name: name})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("jpkxml: el XSD no contiene TKodUS")
	}
	return out, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8":
		return input, nil
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2.NewDecoder().Reader(input), nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("jpkxml: codificación no soportada %q", label)
}
