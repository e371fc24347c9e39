// Package jpkxml construye los documentos XML JPK (JPK_VAT(3), JPK_V7M) con etree
// y reconstruye la parte declarativa de un JPK_V7M ya exportado.
package jpkxml

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/pkg/pl"
)

const (
	prefix     = "tns"
	dateLayout = "2006-01-02"
	// createdLayout formato de DataWytworzeniaJPK.
	createdLayout = "2006-01-02T15:04:05"
)

// newDocument crea el documento con declaración UTF-8 y la raíz tns:JPK.
func newDocument(namespaces map[string]string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(prefix + ":JPK")
	for _, p := range []string{prefix, "etd"} {
		if ns, ok := namespaces[p]; ok && ns != "" {
			root.CreateAttr("xmlns:"+p, ns)
		}
	}
	return doc, root
}

func add(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(prefix + ":" + tag)
	el.SetText(text)
	return el
}

func addAttrs(parent *etree.Element, tag, text string, attrs ...string) *etree.Element {
	el := add(parent, tag, text)
	for i := 0; i+1 < len(attrs); i += 2 {
		el.CreateAttr(attrs[i], attrs[i+1])
	}
	return el
}

func date(t time.Time) string {
	return t.Format(dateLayout)
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}

// differentDate informa si b debe emitirse junto a a: ambas presentes y distintas.
func differentDate(a, b time.Time) bool {
	return !a.IsZero() && !b.IsZero() && !a.Equal(b)
}

// companyNIP devuelve solo los dígitos del NIP de la empresa.
func companyNIP(c *entity.Company) (string, error) {
	nip := pl.DigitsOnly(c.VAT)
	if nip == "" {
		return "", domain.ErrCompanyVATInvalid
	}
	return nip, nil
}

func serialize(doc *etree.Document) ([]byte, error) {
	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("jpkxml: serializar: %w", err)
	}
	return out, nil
}

// childElements hijos directos de el con la etiqueta local indicada.
func childElements(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}
