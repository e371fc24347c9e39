package jpkxml

import (
	"slices"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/samber/lo"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
)

// V7MInput datos de un JPK_V7M.
type V7MInput struct {
	Schema      *jpk.Schema
	Company     *entity.Company
	TaxOffice   *entity.TaxOffice
	Year        int
	Month       int
	CelZlozenia int // 1 złożenie, 2 korekta
	SystemName  string
	Created     time.Time
	Ledger      *jpk.Ledger
}

// BuildV7M genera el XML JPK_V7M con la parte declarativa (sumas por posición
// redondeadas) y la ewidencja.
func BuildV7M(in V7MInput) ([]byte, error) {
	s := in.Schema
	if in.TaxOffice == nil || in.TaxOffice.Code == "" {
		return nil, domain.ErrTaxOfficeMissing
	}
	nip, err := companyNIP(in.Company)
	if err != nil {
		return nil, err
	}
	if s.RequireEmail && in.Company.Email == "" {
		return nil, domain.ErrCompanyEmailMissing
	}

	doc, root := newDocument(map[string]string{prefix: s.Namespace, "etd": s.ETDNamespace})

	header := add(root, "Naglowek", "")
	addAttrs(header, "KodFormularza", "JPK_VAT", "kodSystemowy", s.SystemCode, "wersjaSchemy", s.Version)
	add(header, "WariantFormularza", s.Variant)
	add(header, "DataWytworzeniaJPK", in.Created.Format(createdLayout))
	add(header, "NazwaSystemu", in.SystemName)
	addAttrs(header, "CelZlozenia", itoa(in.CelZlozenia), "poz", "P_7")
	add(header, "KodUrzedu", in.TaxOffice.Code)
	add(header, "Rok", itoa(in.Year))
	add(header, "Miesiac", itoa(in.Month))

	podmiot := addAttrs(root, "Podmiot1", "", "rola", "Podatnik")
	osoba := add(podmiot, "OsobaNiefizyczna", "")
	add(osoba, "NIP", nip)
	add(osoba, "PelnaNazwa", in.Company.Name)
	add(osoba, "Email", in.Company.Email)
	if in.Company.Phone != "" {
		add(osoba, "Telefon", in.Company.Phone)
	}

	deklaracja := add(root, "Deklaracja", "")
	dh := add(deklaracja, "Naglowek", "")
	addAttrs(dh, "KodFormularzaDekl", "VAT-7",
		"kodSystemowy", s.DeclSystemCode,
		"kodPodatku", "VAT",
		"rodzajZobowiazania", "Z",
		"wersjaSchemy", s.Version)
	add(dh, "WariantFormularzaDekl", s.DeclVariant)
	pozycje := add(deklaracja, "PozycjeSzczegolowe", "")
	add(deklaracja, "Pouczenia", "1")

	ewidencja := add(root, "Ewidencja", "")
	for _, row := range in.Ledger.Sale.Rows {
		saleRow(ewidencja, s, row)
	}
	ctrl := add(ewidencja, "SprzedazCtrl", "")
	add(ctrl, "LiczbaWierszySprzedazy", itoa(len(in.Ledger.Sale.Rows)))
	add(ctrl, "PodatekNalezny", amount(in.Ledger.Sale.TaxTotal))

	for _, row := range in.Ledger.Purchase.Rows {
		purchaseRow(ewidencja, row)
	}
	ctrl = add(ewidencja, "ZakupCtrl", "")
	add(ctrl, "LiczbaWierszyZakupow", itoa(len(in.Ledger.Purchase.Rows)))
	add(ctrl, "PodatekNaliczony", amount(in.Ledger.Purchase.TaxTotal))

	keys := lo.Keys(in.Ledger.Groups)
	slices.Sort(keys)
	for _, k := range keys {
		add(pozycje, strings.ToUpper(k), itoa64(in.Ledger.Groups[k]))
	}

	return serialize(doc)
}

func saleRow(parent *etree.Element, s *jpk.Schema, row jpk.LedgerRow) {
	d := row.Record.Data
	el := add(parent, entity.SectionSale, "")
	add(el, "LpSprzedazy", itoa(row.Record.Counter))
	if row.TINCountry != "" {
		add(el, "KodKrajuNadaniaTIN", row.TINCountry)
	}
	add(el, "NrKontrahenta", orEmptyValue(d.PartnerVAT))
	add(el, "NazwaKontrahenta", orEmptyValue(d.PartnerName))
	add(el, "DowodSprzedazy", d.Proof)
	add(el, "DataWystawienia", date(d.IssueDate))
	if differentDate(d.IssueDate, d.SaleDate) {
		add(el, "DataSprzedazy", date(d.SaleDate))
	}
	if d.DocType != "" {
		add(el, "TypDokumentu", d.DocType)
	}
	for _, f := range row.Flags {
		add(el, f, "1")
		if f == entity.FlagKorektaPodstawyOpodt && s.DueDateAfterKorekta && !d.DueDate.IsZero() {
			add(el, "TerminPlatnosci", date(d.DueDate))
		}
	}
	markups(el, row)
}

func purchaseRow(parent *etree.Element, row jpk.LedgerRow) {
	d := row.Record.Data
	el := add(parent, entity.SectionPurchase, "")
	add(el, "LpZakupu", itoa(row.Record.Counter))
	if row.TINCountry != "" {
		add(el, "KodKrajuNadaniaTIN", row.TINCountry)
	}
	add(el, "NrDostawcy", orEmptyValue(d.PartnerVAT))
	add(el, "NazwaDostawcy", orEmptyValue(d.PartnerName))
	add(el, "DowodZakupu", d.Proof)
	add(el, "DataZakupu", date(d.PurchaseDate))
	if differentDate(d.PurchaseDate, d.ReceiptDate) {
		add(el, "DataWplywu", date(d.ReceiptDate))
	}
	if d.DocType != "" {
		add(el, "DokumentZakupu", d.DocType)
	}
	for _, f := range row.Flags {
		add(el, f, "1")
	}
	markups(el, row)
}

func markups(el *etree.Element, row jpk.LedgerRow) {
	for _, a := range row.Amounts {
		add(el, a.Markup, amount(a.Amount))
	}
}

func orEmptyValue(s string) string {
	if s == "" {
		return jpk.EmptyValue
	}
	return s
}
