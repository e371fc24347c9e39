// Package jpk agrega los asientos contables en filas de ewidencja JPK (JPK_VAT y JPK_V7M)
// y calcula la parte declarativa VAT-7.
package jpk

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// Entry una línea contable con etiqueta JPK, tal como sale de la base de datos.
type Entry struct {
	MoveID         string
	MoveType       entity.MoveType
	MoveName       string
	Ref            string
	ChangeJPKProof string
	JournalType    string

	Section string
	Markup  string
	V7Group string

	PartnerID   string
	PartnerVAT  string
	PartnerName string
	// PartnerAddress calle, código y ciudad ya unidos.
	PartnerAddress string

	InvoiceDate time.Time
	VATDate     time.Time
	DateDue     time.Time

	SaleDocType     string
	PurchaseDocType string
	Flags           entity.JPKFlags
	GTU             string

	IsTax   bool
	Balance decimal.Decimal
}

// Row fila agregada por documento, sección, marcador e impuesto.
type Row struct {
	MoveID         string
	Section        string
	PartnerID      string
	PartnerVAT     string // NrKontrahenta
	PartnerName    string
	PartnerAddress string
	Proof          string    // DowodSprzedazyZakupu
	IssueDate      time.Time // DataWystawienia
	SaleDate       time.Time // DataSprzedazy
	PurchaseDate   time.Time // DataZakupu
	ReceiptDate    time.Time // DataWplywu
	DueDate        time.Time // TerminPlatnosci
	DocType        string
	Flags          entity.JPKFlags
	GTU            []string
	IsTax          bool
	Markup         string
	Group          string
	Amount         decimal.Decimal
}

// Record fila de la ewidencja: número correlativo dentro de la sección, datos de cabecera
// y las filas agregadas que aportan importes.
type Record struct {
	Counter  int
	Data     Row
	Children []Row
}

// Sections registros por nombre de sección (SprzedazWiersz, ZakupWiersz).
type Sections map[string][]*Record

// signedAmount aplica el signo de la ewidencja: el impuesto de compras va con su saldo,
// el de ventas invertido, y las bases de ventas se invierten en documentos de salida.
func signedAmount(e Entry, withEntries bool) decimal.Decimal {
	switch {
	case e.IsTax && e.Section == entity.SectionPurchase:
		return e.Balance
	case e.IsTax && e.Section == entity.SectionSale:
		return e.Balance.Neg()
	case e.Section == entity.SectionSale && outbound(e.MoveType, withEntries):
		return e.Balance.Neg()
	}
	return e.Balance
}

func outbound(t entity.MoveType, withEntries bool) bool {
	return t == entity.MoveTypeOutInvoice || t == entity.MoveTypeOutRefund || (withEntries && t == entity.MoveTypeEntry)
}

func proof(e Entry, useOverride bool) string {
	if useOverride && e.ChangeJPKProof != "" {
		return e.ChangeJPKProof
	}
	if e.JournalType == entity.JournalTypeSale {
		return e.MoveName
	}
	return e.Ref
}

type vatKey struct {
	moveID, section, vat, name, address, proof string
	issue                                      time.Time
	isTax                                      bool
	markup                                     string
}

// AggregateVAT suma las líneas para JPK_VAT(3) y las ordena por sección, fecha de
// emisión, documento y marcador. El contratista sin NIP se reporta como "brak".
func AggregateVAT(entries []Entry) []Row {
	index := map[vatKey]int{}
	var rows []Row
	for _, e := range entries {
		vat := e.PartnerVAT
		if vat == "" {
			vat = "brak"
		}
		k := vatKey{e.MoveID, e.Section, vat, e.PartnerName, e.PartnerAddress, proof(e, false), e.InvoiceDate, e.IsTax, e.Markup}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, Row{
				MoveID:         e.MoveID,
				Section:        e.Section,
				PartnerID:      e.PartnerID,
				PartnerVAT:     vat,
				PartnerName:    e.PartnerName,
				PartnerAddress: e.PartnerAddress,
				Proof:          k.proof,
				IssueDate:      e.InvoiceDate,
				SaleDate:       e.VATDate,
				PurchaseDate:   e.InvoiceDate,
				ReceiptDate:    e.VATDate,
				IsTax:          e.IsTax,
				Markup:         e.Markup,
			})
		}
		rows[i].Amount = rows[i].Amount.Add(signedAmount(e, false))
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(
			strings.Compare(a.Section, b.Section),
			a.IssueDate.Compare(b.IssueDate),
			strings.Compare(a.Proof, b.Proof),
			strings.Compare(a.Markup, b.Markup),
		)
	})
	return rows
}

type v7mKey struct {
	moveID, section, proof string
	isTax                  bool
	markup, group          string
}

// AggregateV7M suma las líneas para JPK_V7M. Los GTU de las líneas del grupo se unen sin
// repetir. El orden es sección, fecha de emisión, documento, número, marcador y posición.
func AggregateV7M(entries []Entry) []Row {
	index := map[v7mKey]int{}
	var rows []Row
	for _, e := range entries {
		k := v7mKey{e.MoveID, e.Section, proof(e, true), e.IsTax, e.Markup, e.V7Group}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			docType := e.PurchaseDocType
			if e.Section == entity.SectionSale {
				docType = e.SaleDocType
			}
			rows = append(rows, Row{
				MoveID:         e.MoveID,
				Section:        e.Section,
				PartnerID:      e.PartnerID,
				PartnerVAT:     e.PartnerVAT,
				PartnerName:    e.PartnerName,
				PartnerAddress: e.PartnerAddress,
				Proof:          k.proof,
				IssueDate:      e.InvoiceDate,
				SaleDate:       e.VATDate,
				PurchaseDate:   e.InvoiceDate,
				ReceiptDate:    e.VATDate,
				DueDate:        e.DateDue,
				DocType:        docType,
				Flags:          e.Flags,
				IsTax:          e.IsTax,
				Markup:         e.Markup,
				Group:          e.V7Group,
			})
		}
		if e.GTU != "" {
			rows[i].GTU = append(rows[i].GTU, e.GTU)
		}
		rows[i].Amount = rows[i].Amount.Add(signedAmount(e, true))
	}
	for i := range rows {
		rows[i].GTU = lo.Uniq(rows[i].GTU)
		slices.Sort(rows[i].GTU)
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(
			strings.Compare(a.Section, b.Section),
			a.IssueDate.Compare(b.IssueDate),
			strings.Compare(a.MoveID, b.MoveID),
			strings.Compare(a.Proof, b.Proof),
			strings.Compare(a.Markup, b.Markup),
			strings.Compare(a.Group, b.Group),
		)
	})
	return rows
}

// blankDates deja en cada sección solo las fechas que le corresponden.
func blankDates(r Row) Row {
	switch r.Section {
	case entity.SectionSale:
		r.ReceiptDate, r.PurchaseDate = time.Time{}, time.Time{}
	case entity.SectionPurchase:
		r.SaleDate, r.IssueDate = time.Time{}, time.Time{}
	}
	return r
}

func sameVATGroup(a, b Row) bool {
	return a.PartnerVAT == b.PartnerVAT && a.PartnerName == b.PartnerName &&
		a.PartnerAddress == b.PartnerAddress && a.Proof == b.Proof &&
		a.IssueDate.Equal(b.IssueDate) && a.SaleDate.Equal(b.SaleDate) &&
		a.PurchaseDate.Equal(b.PurchaseDate) && a.ReceiptDate.Equal(b.ReceiptDate)
}

// GroupVAT agrupa filas consecutivas con el mismo contratista, documento y fechas.
// La numeración empieza en 1 en cada sección. rows deben venir ordenadas.
func GroupVAT(rows []Row) Sections {
	out := Sections{}
	var current *Record
	var key Row
	for _, r := range rows {
		if current == nil || r.Section != current.Data.Section || !sameVATGroup(r, key) {
			key = r
			current = &Record{Counter: len(out[r.Section]) + 1, Data: blankDates(r)}
			out[r.Section] = append(out[r.Section], current)
		}
		current.Children = append(current.Children, blankDates(r))
	}
	return out
}

// GroupV7M agrupa filas consecutivas del mismo documento y sección. rows deben venir ordenadas.
func GroupV7M(rows []Row) Sections {
	out := Sections{}
	var current *Record
	for _, r := range rows {
		if current == nil || r.MoveID != current.Data.MoveID || r.Section != current.Data.Section {
			current = &Record{Counter: len(out[r.Section]) + 1, Data: r}
			out[r.Section] = append(out[r.Section], current)
		}
		current.Children = append(current.Children, r)
	}
	return out
}
