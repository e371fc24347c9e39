package jpk

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// MarkupAmount importe de un elemento K_xx de la fila.
type MarkupAmount struct {
	Markup string
	Amount decimal.Decimal
}

// LedgerRow fila de la ewidencja JPK_V7M con flags e importes resueltos.
type LedgerRow struct {
	Record     *Record
	TINCountry string
	Flags      []string // en orden del esquema
	Amounts    []MarkupAmount
}

// HasFlag informa si la fila lleva el flag.
func (r LedgerRow) HasFlag(name string) bool {
	return slices.Contains(r.Flags, name)
}

// LedgerSection filas de una sección con su control.
type LedgerSection struct {
	Rows     []LedgerRow
	TaxTotal decimal.Decimal // PodatekNalezny / PodatekNaliczony
}

// Ledger ewidencja completa y sumas por posición de la declaración.
type Ledger struct {
	Sale     LedgerSection
	Purchase LedgerSection
	// Groups suma redondeada a enteros por posición (p_10, p_11...), en minúsculas.
	Groups map[string]int64
}

// TaxTotal suma los importes de las filas de impuesto.
func TaxTotal(records []*Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		for _, c := range rec.Children {
			if c.IsTax {
				total = total.Add(c.Amount)
			}
		}
	}
	return total
}

// BuildLedger resuelve flags, importes y sumas de la declaración a partir de los registros
// agrupados. partners permite obtener el país del NIP del contratista.
func BuildLedger(sections Sections, s *Schema, partners map[string]*entity.Partner) *Ledger {
	groups := map[string]decimal.Decimal{}
	build := func(records []*Record) LedgerSection {
		sec := LedgerSection{Rows: make([]LedgerRow, 0, len(records)), TaxTotal: TaxTotal(records)}
		for _, rec := range records {
			flags := s.RowFlags(rec.Data.Flags, rec.Data.Section)
			type pair struct {
				markup string
				amount string
			}
			seen := map[pair]struct{}{}
			var amounts []MarkupAmount
			for _, c := range rec.Children {
				for _, g := range c.GTU {
					flags[g] = struct{}{}
				}
				if c.Group != "" {
					key := strings.ToLower(c.Group)
					groups[key] = groups[key].Add(c.Amount)
				}
				p := pair{c.Markup, c.Amount.StringFixed(2)}
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				amounts = append(amounts, MarkupAmount{Markup: c.Markup, Amount: c.Amount})
			}
			slices.SortStableFunc(amounts, func(a, b MarkupAmount) int {
				return cmp.Or(strings.Compare(a.Markup, b.Markup), a.Amount.Cmp(b.Amount))
			})
			row := LedgerRow{Record: rec, Flags: s.Ordered(flags), Amounts: amounts}
			if p, ok := partners[rec.Data.PartnerID]; ok {
				row.TINCountry = p.TINCountry()
			}
			sec.Rows = append(sec.Rows, row)
		}
		return sec
	}
	l := &Ledger{
		Sale:     build(sections[entity.SectionSale]),
		Purchase: build(sections[entity.SectionPurchase]),
		Groups:   make(map[string]int64, len(groups)),
	}
	for k, v := range groups {
		l.Groups[k] = v.Round(0).IntPart()
	}
	return l
}
