package taxtotals

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/pkg/money"
)

// GroupAmount importes de un grupo de VAT en el resumen de la factura.
// TaxGroupID vacío agrupa las líneas sin impuesto.
type GroupAmount struct {
	TaxGroupID         string          `json:"tax_group_id"`
	Name               string          `json:"name"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	BaseAmount         decimal.Decimal `json:"base_amount"`
	InPLN              decimal.Decimal `json:"in_pln"`
	FormattedTaxAmount string          `json:"formatted_tax_amount"`
	FormattedBase      string          `json:"formatted_base_amount"`
	FormattedInPLN     string          `json:"formatted_in_pln"`
	GroupCount         int             `json:"group_count"`
}

// SummaryTotals totales de la factura con el signo de la factura aplicado.
type SummaryTotals struct {
	Base        string          `json:"base"`
	BaseFloat   decimal.Decimal `json:"base_float"`
	Amount      string          `json:"amount"`
	AmountFloat decimal.Decimal `json:"amount_float"`
	InPLN       string          `json:"in_pln"`
	InPLNFloat  decimal.Decimal `json:"in_pln_float"`
	Total       string          `json:"total"`
	TotalFloat  decimal.Decimal `json:"total_float"`
}

// Summary desglose por grupo y totales de un documento.
type Summary struct {
	ByGroup []*GroupAmount `json:"amount_by_group"`
	Totals  SummaryTotals  `json:"amount_summary"`
}

type summaryAcc struct {
	group    *entity.TaxGroup
	base     decimal.Decimal
	tax      decimal.Decimal
	inPLN    decimal.Decimal
	seenBase map[*entity.InvoiceLine]struct{}
}

// AmountSummary calcula el desglose por grupo de VAT de una factura. Devuelve nil para asientos.
func AmountSummary(in Input) *Summary {
	inv := in.Invoice
	if !inv.MoveType.IsInvoice() {
		return nil
	}
	mult := inv.MoveType.BalanceMultiplier()
	emptyGroup := &entity.TaxGroup{}

	mapping := map[string]*summaryAcc{}
	accFor := func(g *entity.TaxGroup) *summaryAcc {
		acc, ok := mapping[g.ID]
		if !ok {
			acc = &summaryAcc{group: g, seenBase: map[*entity.InvoiceLine]struct{}{}}
			mapping[g.ID] = acc
		}
		return acc
	}
	groupOf := func(taxID string) *entity.TaxGroup {
		t := in.Taxes[taxID]
		if t == nil {
			return emptyGroup
		}
		if g := in.Groups[t.TaxGroupID]; g != nil {
			return g
		}
		return &entity.TaxGroup{ID: t.TaxGroupID}
	}

	for _, l := range inv.Lines {
		if len(l.TaxIDs) == 0 && l.Kind != entity.LineKindProduct {
			continue
		}
		base := l.AmountCurrency.Mul(mult)
		var lineGroupID string
		if l.TaxLineID != "" {
			lineGroupID = groupOf(l.TaxLineID).ID
		}
		for _, taxID := range l.TaxIDs {
			g := groupOf(taxID)
			if l.TaxLineID != "" && lineGroupID == g.ID {
				continue
			}
			acc := accFor(g)
			if _, seen := acc.seenBase[l]; !seen {
				acc.base = acc.base.Add(base)
				acc.seenBase[l] = struct{}{}
			}
		}
		if len(l.TaxIDs) == 0 {
			acc := accFor(emptyGroup)
			if _, seen := acc.seenBase[l]; !seen {
				acc.base = acc.base.Add(base)
				acc.seenBase[l] = struct{}{}
			}
		}
	}

	for _, l := range inv.Lines {
		if l.TaxLineID == "" {
			continue
		}
		acc := accFor(groupOf(l.TaxLineID))
		acc.tax = acc.tax.Add(l.AmountCurrency.Mul(mult))
		acc.inPLN = acc.inPLN.Add(l.Balance.Mul(mult))
	}

	accs := make([]*summaryAcc, 0, len(mapping))
	for _, acc := range mapping {
		accs = append(accs, acc)
	}
	sort.SliceStable(accs, func(i, j int) bool {
		if accs[i].group.Sequence != accs[j].group.Sequence {
			return accs[i].group.Sequence < accs[j].group.Sequence
		}
		return accs[i].group.ID < accs[j].group.ID
	})

	cur, pln := toMoney(in.Currency), toMoney(in.CompanyCurrency)
	res := &Summary{ByGroup: make([]*GroupAmount, 0, len(accs))}
	var baseSum, taxSum, plnSum decimal.Decimal
	for _, acc := range accs {
		res.ByGroup = append(res.ByGroup, &GroupAmount{
			TaxGroupID:         acc.group.ID,
			Name:               acc.group.Name,
			TaxAmount:          acc.tax,
			BaseAmount:         acc.base,
			InPLN:              acc.inPLN,
			FormattedTaxAmount: in.Formatter.Format(acc.tax, cur),
			FormattedBase:      in.Formatter.Format(acc.base, cur),
			FormattedInPLN:     in.Formatter.Format(acc.inPLN, pln),
			GroupCount:         len(mapping),
		})
		baseSum = baseSum.Add(acc.base)
		taxSum = taxSum.Add(acc.tax)
		plnSum = plnSum.Add(acc.inPLN)
	}

	sign := decimal.NewFromInt(int64(in.Sign))
	baseSum = baseSum.Abs().Mul(sign)
	taxSum = taxSum.Abs().Mul(sign)
	plnSum = plnSum.Abs().Mul(sign)
	total := baseSum.Add(taxSum)
	res.Totals = SummaryTotals{
		Base:        formatNonZero(in.Formatter, baseSum, in.Currency),
		BaseFloat:   baseSum,
		Amount:      formatNonZero(in.Formatter, taxSum, in.Currency),
		AmountFloat: taxSum,
		InPLN:       formatNonZero(in.Formatter, plnSum, in.CompanyCurrency),
		InPLNFloat:  plnSum,
		Total:       formatNonZero(in.Formatter, total, in.Currency),
		TotalFloat:  total,
	}
	return res
}

// CorrectedSummary desglose de una corrección expresado como cambio respecto a la factura original:
// importes por grupo negados y totales = original + (-1 si es corrección) * corrección.
// Devuelve nil si el documento no corrige ninguna factura.
func CorrectedSummary(correction *Summary, original *Summary, in Input) *Summary {
	inv := in.Invoice
	if !inv.MoveType.IsInvoice() || inv.RefundInvoiceID == "" || correction == nil || original == nil {
		return nil
	}
	cur, pln := toMoney(in.Currency), toMoney(in.CompanyCurrency)

	res := &Summary{ByGroup: make([]*GroupAmount, 0, len(correction.ByGroup))}
	for _, g := range correction.ByGroup {
		tax, base, inPLN := g.TaxAmount.Neg(), g.BaseAmount.Neg(), g.InPLN.Neg()
		res.ByGroup = append(res.ByGroup, &GroupAmount{
			TaxGroupID:         g.TaxGroupID,
			Name:               g.Name,
			TaxAmount:          tax,
			BaseAmount:         base,
			InPLN:              inPLN,
			FormattedTaxAmount: formatNonZero(in.Formatter, tax, in.Currency),
			FormattedBase:      formatNonZero(in.Formatter, base, in.Currency),
			FormattedInPLN:     formatNonZero(in.Formatter, inPLN, in.CompanyCurrency),
			GroupCount:         g.GroupCount,
		})
	}

	mult := decimal.NewFromInt(1)
	if inv.MoveType.IsRefund() {
		mult = decimal.NewFromInt(-1)
	}
	t := original.Totals
	c := correction.Totals
	t.BaseFloat = t.BaseFloat.Add(mult.Mul(c.BaseFloat))
	t.AmountFloat = t.AmountFloat.Add(mult.Mul(c.AmountFloat))
	t.InPLNFloat = t.InPLNFloat.Add(mult.Mul(c.InPLNFloat))
	t.TotalFloat = t.TotalFloat.Add(mult.Mul(c.TotalFloat))
	t.Base = in.Formatter.Format(t.BaseFloat, cur)
	t.Amount = in.Formatter.Format(t.AmountFloat, cur)
	t.InPLN = in.Formatter.Format(t.InPLNFloat, pln)
	t.Total = in.Formatter.Format(t.TotalFloat, cur)
	res.Totals = t
	return res
}

// formatNonZero formatea normalizando a cero los importes por debajo de la precisión de la moneda.
func formatNonZero(f Formatter, amount decimal.Decimal, c entity.Currency) string {
	if c.IsZero(amount) {
		amount = decimal.Zero
	}
	return f.Format(amount, money.Currency{Symbol: c.Symbol, Position: c.Position, Digits: c.Digits})
}
