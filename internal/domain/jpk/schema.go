package jpk

import (
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// Namespaces de los esquemas.
const (
	NamespaceVAT3 = "http://jpk.mf.gov.pl/wzor/2017/11/13/1113/"
	NamespaceV7M1 = "http://crd.gov.pl/wzor/2020/05/08/9393/"
	NamespaceV7M2 = "http://crd.gov.pl/wzor/2021/12/27/11148/"
	NamespaceETD  = "http://crd.gov.pl/xml/schematy/dziedzinowe/mf/2016/01/25/eD/DefinicjeTypy/"
	// EmptyValue sustituye al NIP o nombre ausente del contratista en JPK_V7M.
	EmptyValue = "BRAK"
)

// Schema parámetros de una versión de JPK_V7M.
type Schema struct {
	Version        string
	DocType        string // nombre del tipo de documento JPK
	Namespace      string
	ETDNamespace   string // vacío si la versión no lo declara
	SystemCode     string
	Variant        string
	DeclSystemCode string
	DeclVariant    string
	// Flags orden de emisión de GTU y procedimientos.
	Flags []string
	// RequireEmail la empresa debe tener email.
	RequireEmail bool
	// DueDateAfterKorekta emite TerminPlatnosci tras KorektaPodstawyOpodt en ventas.
	DueDateAfterKorekta bool
	// saleOnly y purchaseOnly restringen flags a una sección.
	saleOnly     map[string]bool
	purchaseOnly map[string]bool
}

func gtuFlags() []string {
	out := make([]string, 0, 13)
	for _, g := range []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12", "13"} {
		out = append(out, "GTU_"+g)
	}
	return out
}

var schemas = map[string]*Schema{
	entity.V7MVersion12E: {
		Version:        entity.V7MVersion12E,
		DocType:        entity.DocTypeJPKV7M12E,
		Namespace:      NamespaceV7M1,
		ETDNamespace:   NamespaceETD,
		SystemCode:     "JPK_V7M (1)",
		Variant:        "1",
		DeclSystemCode: "VAT-7 (21)",
		DeclVariant:    "21",
		Flags: append(gtuFlags(),
			entity.FlagSW, entity.FlagEE, entity.FlagTP, entity.FlagTTWNT, entity.FlagTTD, entity.FlagMRT,
			entity.FlagMRUZ, entity.FlagI42, entity.FlagI63, entity.FlagBSPV, entity.FlagBSPVDostawa,
			entity.FlagBMPVProwizja, entity.FlagMPP, entity.FlagKorektaPodstawyOpodt, entity.FlagIMP),
		saleOnly:     map[string]bool{entity.FlagTP: true},
		purchaseOnly: map[string]bool{entity.FlagKorektaPodstawyOpodt: true, entity.FlagIMP: true},
	},
	entity.V7MVersion10E: {
		Version:        entity.V7MVersion10E,
		DocType:        entity.DocTypeJPKV7M10E,
		Namespace:      NamespaceV7M2,
		SystemCode:     "JPK_V7M (2)",
		Variant:        "2",
		DeclSystemCode: "VAT-7 (22)",
		DeclVariant:    "22",
		Flags: append(gtuFlags(),
			entity.FlagTP, entity.FlagTTWNT, entity.FlagTTD, entity.FlagMRT, entity.FlagMRUZ, entity.FlagI42,
			entity.FlagI63, entity.FlagBSPV, entity.FlagBSPVDostawa, entity.FlagBMPVProwizja,
			entity.FlagKorektaPodstawyOpodt, entity.FlagIMP, entity.FlagWSTOEE, entity.FlagIED),
		RequireEmail:        true,
		DueDateAfterKorekta: true,
		saleOnly:            map[string]bool{entity.FlagTP: true, entity.FlagKorektaPodstawyOpodt: true},
		purchaseOnly:        map[string]bool{entity.FlagIMP: true},
	},
}

// SchemaFor devuelve la definición de la versión o ErrUnsupportedSchema.
func SchemaFor(version string) (*Schema, error) {
	s, ok := schemas[version]
	if !ok {
		return nil, domain.ErrUnsupportedSchema
	}
	return s, nil
}

// RowFlags procedimientos del documento que la versión admite en la sección.
func (s *Schema) RowFlags(f entity.JPKFlags, section string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(s.Flags))
	for _, name := range s.Flags {
		allowed[name] = struct{}{}
	}
	out := map[string]struct{}{}
	for _, name := range f.Names() {
		if _, ok := allowed[name]; !ok {
			continue
		}
		if s.saleOnly[name] && section != entity.SectionSale {
			continue
		}
		if s.purchaseOnly[name] && section != entity.SectionPurchase {
			continue
		}
		out[name] = struct{}{}
	}
	return out
}

// Ordered devuelve los flags presentes en el orden del esquema.
func (s *Schema) Ordered(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for _, name := range s.Flags {
		if _, ok := set[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
