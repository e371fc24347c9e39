package jpkxml

import (
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
)

// VATInput datos de un JPK_VAT(3).
type VATInput struct {
	Company    *entity.Company
	UserEmail  string // Podmiot1/Email es el del usuario que genera el archivo
	DateFrom   time.Time
	DateTo     time.Time
	Correction int // CelZlozenia: 0 envío original, n-ésima corrección
	SystemName string
	Created    time.Time
	Sections   jpk.Sections
}

// BuildVAT genera el XML JPK_VAT(3).
func BuildVAT(in VATInput) ([]byte, error) {
	nip, err := companyNIP(in.Company)
	if err != nil {
		return nil, err
	}

	doc, root := newDocument(map[string]string{prefix: jpk.NamespaceVAT3})

	header := add(root, "Naglowek", "")
	addAttrs(header, "KodFormularza", "JPK_VAT", "kodSystemowy", "JPK_VAT (3)", "wersjaSchemy", "1-1")
	add(header, "WariantFormularza", "3")
	add(header, "CelZlozenia", itoa(in.Correction))
	add(header, "DataWytworzeniaJPK", in.Created.Format(createdLayout))
	add(header, "DataOd", date(in.DateFrom))
	add(header, "DataDo", date(in.DateTo))
	add(header, "NazwaSystemu", in.SystemName)

	podmiot := add(root, "Podmiot1", "")
	add(podmiot, "NIP", nip)
	add(podmiot, "PelnaNazwa", in.Company.Name)
	add(podmiot, "Email", in.UserEmail)

	sales := in.Sections[entity.SectionSale]
	for _, rec := range sales {
		row := add(root, entity.SectionSale, "")
		d := rec.Data
		add(row, "LpSprzedazy", itoa(rec.Counter))
		add(row, "NrKontrahenta", d.PartnerVAT)
		add(row, "NazwaKontrahenta", d.PartnerName)
		add(row, "AdresKontrahenta", d.PartnerAddress)
		add(row, "DowodSprzedazy", d.Proof)
		add(row, "DataWystawienia", date(d.IssueDate))
		if differentDate(d.IssueDate, d.SaleDate) {
			add(row, "DataSprzedazy", date(d.SaleDate))
		}
		vatAmounts(row, rec)
	}
	ctrl := add(root, "SprzedazCtrl", "")
	add(ctrl, "LiczbaWierszySprzedazy", itoa(len(sales)))
	add(ctrl, "PodatekNalezny", amount(jpk.TaxTotal(sales)))

	purchases := in.Sections[entity.SectionPurchase]
	for _, rec := range purchases {
		row := add(root, entity.SectionPurchase, "")
		d := rec.Data
		add(row, "LpZakupu", itoa(rec.Counter))
		add(row, "NrDostawcy", d.PartnerVAT)
		add(row, "NazwaDostawcy", d.PartnerName)
		add(row, "AdresDostawcy", d.PartnerAddress)
		add(row, "DowodZakupu", d.Proof)
		add(row, "DataZakupu", date(d.PurchaseDate))
		if differentDate(d.PurchaseDate, d.ReceiptDate) {
			add(row, "DataWplywu", date(d.ReceiptDate))
		}
		vatAmounts(row, rec)
	}
	ctrl = add(root, "ZakupCtrl", "")
	add(ctrl, "LiczbaWierszyZakupow", itoa(len(purchases)))
	add(ctrl, "PodatekNaliczony", amount(jpk.TaxTotal(purchases)))

	return serialize(doc)
}

// vatAmounts emite un K_xx por fila agregada, en el orden de agregación.
func vatAmounts(row *etree.Element, rec *jpk.Record) {
	for _, c := range rec.Children {
		add(row, c.Markup, amount(c.Amount))
	}
}
