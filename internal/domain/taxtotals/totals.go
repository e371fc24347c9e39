// Package taxtotals agrupa importes base e impuesto de un documento por subtotal y grupo de VAT
// y produce el resumen mostrado en la factura, con importes en la moneda del documento y en PLN.
package taxtotals

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/pkg/money"
)

// DefaultSubtotalTitle título del subtotal para grupos sin subtotal precedente.
const DefaultSubtotalTitle = "Untaxed Amount"

// Formatter formatea importes para mostrar.
type Formatter interface {
	Format(amount decimal.Decimal, c money.Currency) string
}

// Input datos necesarios para agregar un documento.
type Input struct {
	Invoice *entity.Invoice
	Taxes   map[string]*entity.Tax
	Groups  map[string]*entity.TaxGroup
	// Sign signo de la factura (-1 para correcciones que reducen importes).
	Sign            int
	Currency        entity.Currency // moneda del documento
	CompanyCurrency entity.Currency // PLN
	Formatter       Formatter
}

// Group importes de un grupo de VAT dentro de un subtotal.
type Group struct {
	TaxGroupID           string          `json:"tax_group_id"`
	GroupKey             string          `json:"group_key"`
	Name                 string          `json:"tax_group_name"`
	TaxAmount            decimal.Decimal `json:"tax_group_amount"`
	BaseAmount           decimal.Decimal `json:"tax_group_base_amount"`
	TotalAmount          decimal.Decimal `json:"tax_group_total_amount"`
	AmountInPLN          decimal.Decimal `json:"tax_group_amount_in_pln"`
	FormattedTaxAmount   string          `json:"formatted_tax_group_amount"`
	FormattedBaseAmount  string          `json:"formatted_tax_group_base_amount"`
	FormattedTotalAmount string          `json:"formatted_tax_group_total_amount"`
	FormattedAmountInPLN string          `json:"formatted_tax_group_amount_in_pln"`
}

// Subtotal importe acumulado hasta un título de subtotal.
type Subtotal struct {
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	FormattedAmount string          `json:"formatted_amount"`
}

// Totals resumen de impuestos de un documento.
type Totals struct {
	AmountTotal             decimal.Decimal     `json:"amount_total"`
	AmountUntaxed           decimal.Decimal     `json:"amount_untaxed"`
	TaxAmount               decimal.Decimal     `json:"tax_amount"`
	TaxAmountInPLN          decimal.Decimal     `json:"tax_amount_in_pln"`
	FormattedAmountTotal    string              `json:"formatted_amount_total"`
	FormattedAmountUntaxed  string              `json:"formatted_amount_untaxed"`
	FormattedTaxAmount      string              `json:"formatted_tax_amount"`
	FormattedTaxAmountInPLN string              `json:"formatted_tax_amount_in_pln"`
	GroupsBySubtotal        map[string][]*Group `json:"groups_by_subtotal"`
	Subtotals               []*Subtotal         `json:"subtotals"`
}

// lineData aporte de una línea: base (isBase) o impuesto.
type lineData struct {
	key           string
	isBase        bool
	baseAmount    decimal.Decimal
	taxAmount     decimal.Decimal
	balance       decimal.Decimal
	tax           *entity.Tax
	affectingBase *entity.Tax // impuesto de la línea base cuando esta es a su vez línea de impuesto
	sign          int
}

// prepareLines convierte las líneas del documento en aportes base/impuesto con el signo del cobro aplicado.
func prepareLines(in Input) []lineData {
	mult := in.Invoice.MoveType.BalanceMultiplier()
	var out []lineData
	for i, l := range in.Invoice.Lines {
		id := l.ID
		if id == "" {
			id = fmt.Sprintf("new%d", i)
		}
		var affecting *entity.Tax
		if l.TaxLineID != "" {
			affecting = in.Taxes[l.TaxLineID]
			if affecting != nil {
				out = append(out, lineData{
					key:       "tax_line_" + id,
					taxAmount: l.AmountCurrency.Mul(mult),
					balance:   l.Balance.Mul(mult),
					tax:       affecting,
					sign:      in.Sign,
				})
			}
		}
		for _, taxID := range l.TaxIDs {
			tax := in.Taxes[taxID]
			if tax == nil {
				continue
			}
			out = append(out, lineData{
				key:           "base_line_" + id,
				isBase:        true,
				baseAmount:    l.AmountCurrency.Mul(mult),
				balance:       l.Balance.Mul(mult),
				tax:           tax,
				affectingBase: affecting,
				sign:          in.Sign,
			})
		}
	}
	return out
}

type groupAcc struct {
	group    *entity.TaxGroup
	base     decimal.Decimal
	tax      decimal.Decimal
	balance  decimal.Decimal
	seenBase map[string]struct{}
}

// TaxTotals agrega el documento por subtotal y grupo de VAT.
func TaxTotals(in Input) *Totals {
	data := prepareLines(in)

	grouped := map[string]map[string]*groupAcc{}
	var titleOrder []string
	priorities := map[string]int{}
	taxInPLN := decimal.Zero
	sign := 1

	for _, ld := range data {
		group := in.Groups[ld.tax.TaxGroupID]
		if group == nil {
			group = &entity.TaxGroup{ID: ld.tax.TaxGroupID}
		}
		sign = ld.sign

		title, priority := DefaultSubtotalTitle, 0
		if group.PrecedingSubtotal != "" {
			title, priority = group.PrecedingSubtotal, group.Sequence
		}
		if p, ok := priorities[title]; !ok || priority < p {
			priorities[title] = priority
		}

		byGroup, ok := grouped[title]
		if !ok {
			byGroup = map[string]*groupAcc{}
			grouped[title] = byGroup
			titleOrder = append(titleOrder, title)
		}
		acc, ok := byGroup[group.ID]
		if !ok {
			acc = &groupAcc{group: group, seenBase: map[string]struct{}{}}
			byGroup[group.ID] = acc
		}

		if ld.isBase {
			if ld.affectingBase != nil && ld.affectingBase.TaxGroupID == group.ID {
				continue
			}
			if _, seen := acc.seenBase[ld.key]; !seen {
				acc.seenBase[ld.key] = struct{}{}
				acc.base = acc.base.Add(ld.baseAmount)
			}
			continue
		}
		acc.tax = acc.tax.Add(ld.taxAmount)
		acc.balance = acc.balance.Add(ld.balance)
		taxInPLN = taxInPLN.Add(ld.balance)
	}

	signD := decimal.NewFromInt(int64(sign))
	for _, byGroup := range grouped {
		for _, acc := range byGroup {
			acc.base = acc.base.Abs().Mul(signD)
			acc.tax = acc.tax.Abs().Mul(signD)
			acc.balance = acc.balance.Abs().Mul(signD)
		}
	}

	cur, pln := toMoney(in.Currency), toMoney(in.CompanyCurrency)
	res := &Totals{GroupsBySubtotal: make(map[string][]*Group, len(grouped))}
	for _, title := range titleOrder {
		accs := make([]*groupAcc, 0, len(grouped[title]))
		for _, acc := range grouped[title] {
			accs = append(accs, acc)
		}
		sort.SliceStable(accs, func(i, j int) bool {
			if accs[i].group.Sequence != accs[j].group.Sequence {
				return accs[i].group.Sequence < accs[j].group.Sequence
			}
			return accs[i].group.ID < accs[j].group.ID
		})
		groups := make([]*Group, 0, len(accs))
		for _, acc := range accs {
			g := &Group{
				TaxGroupID:  acc.group.ID,
				GroupKey:    fmt.Sprintf("%s-%s", title, acc.group.ID),
				Name:        acc.group.Name,
				TaxAmount:   acc.tax,
				BaseAmount:  acc.base,
				TotalAmount: acc.tax.Add(acc.base),
				AmountInPLN: acc.balance,
			}
			formatGroup(in.Formatter, g, cur, pln)
			groups = append(groups, g)
		}
		res.GroupsBySubtotal[title] = groups
	}

	titles := append([]string(nil), titleOrder...)
	sort.SliceStable(titles, func(i, j int) bool { return priorities[titles[i]] < priorities[titles[j]] })
	previousTax := decimal.Zero
	for _, title := range titles {
		value := in.Invoice.AmountUntaxed.Add(previousTax)
		res.Subtotals = append(res.Subtotals, &Subtotal{
			Name:            title,
			Amount:          value,
			FormattedAmount: in.Formatter.Format(value, cur),
		})
		for _, g := range res.GroupsBySubtotal[title] {
			previousTax = previousTax.Add(g.TaxAmount)
		}
	}

	res.AmountTotal = in.Invoice.AmountTotal.Abs().Mul(signD)
	res.AmountUntaxed = in.Invoice.AmountUntaxed.Abs().Mul(signD)
	res.TaxAmount = res.AmountTotal.Sub(res.AmountUntaxed)
	res.TaxAmountInPLN = taxInPLN
	formatTotals(in.Formatter, res, cur, pln)
	return res
}

// FinalTaxTotals devuelve el resumen de la factura final. Si withDownPayments es false suma los
// resúmenes de los anticipos liquidados, agrupando por subtotal y grupo de VAT.
func FinalTaxTotals(main *Totals, advances []*Totals, withDownPayments bool, f Formatter, currency, companyCurrency entity.Currency) *Totals {
	if withDownPayments || len(advances) == 0 {
		return main
	}
	cur, pln := toMoney(currency), toMoney(companyCurrency)

	for _, adv := range advances {
		for title, advGroups := range adv.GroupsBySubtotal {
			groups, ok := main.GroupsBySubtotal[title]
			if !ok {
				main.GroupsBySubtotal[title] = advGroups
				continue
			}
			for _, ag := range advGroups {
				merged := false
				for _, g := range groups {
					if g.TaxGroupID != ag.TaxGroupID {
						continue
					}
					g.TaxAmount = g.TaxAmount.Add(ag.TaxAmount)
					g.BaseAmount = g.BaseAmount.Add(ag.BaseAmount)
					g.TotalAmount = g.TotalAmount.Add(ag.TotalAmount)
					g.AmountInPLN = g.AmountInPLN.Add(ag.AmountInPLN)
					formatGroup(f, g, cur, pln)
					merged = true
					break
				}
				if !merged {
					groups = append(groups, ag)
				}
			}
			main.GroupsBySubtotal[title] = groups
		}

		for _, as := range adv.Subtotals {
			merged := false
			for _, s := range main.Subtotals {
				if s.Name == as.Name {
					s.Amount = s.Amount.Add(as.Amount)
					s.FormattedAmount = f.Format(s.Amount, cur)
					merged = true
					break
				}
			}
			if !merged {
				main.Subtotals = append(main.Subtotals, as)
			}
		}

		main.AmountTotal = main.AmountTotal.Add(adv.AmountTotal)
		main.AmountUntaxed = main.AmountUntaxed.Add(adv.AmountUntaxed)
		main.TaxAmount = main.TaxAmount.Add(adv.TaxAmount)
		main.TaxAmountInPLN = main.TaxAmountInPLN.Add(adv.TaxAmountInPLN)
		formatTotals(f, main, cur, pln)
	}
	return main
}

func formatGroup(f Formatter, g *Group, cur, pln money.Currency) {
	g.FormattedTaxAmount = f.Format(g.TaxAmount, cur)
	g.FormattedBaseAmount = f.Format(g.BaseAmount, cur)
	g.FormattedTotalAmount = f.Format(g.TotalAmount, cur)
	g.FormattedAmountInPLN = f.Format(g.AmountInPLN, pln)
}

func formatTotals(f Formatter, t *Totals, cur, pln money.Currency) {
	t.FormattedAmountTotal = f.Format(t.AmountTotal, cur)
	t.FormattedAmountUntaxed = f.Format(t.AmountUntaxed, cur)
	t.FormattedTaxAmount = f.Format(t.TaxAmount, cur)
	t.FormattedTaxAmountInPLN = f.Format(t.TaxAmountInPLN, pln)
}

func toMoney(c entity.Currency) money.Currency {
	return money.Currency{Symbol: c.Symbol, Position: c.Position, Digits: c.Digits}
}
