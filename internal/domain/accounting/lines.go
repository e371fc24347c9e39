// Package accounting calcula las líneas contables de un documento: importes por línea,
// líneas de impuesto, contrapartida y totales en moneda del documento y de la empresa.
package accounting

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// ErrUnknownTax la línea referencia un impuesto que no está en el catálogo.
var ErrUnknownTax = errors.New("impuesto desconocido")

var hundred = decimal.NewFromInt(100)

// LinePrice importes de una línea de producto para una cantidad dada.
type LinePrice struct {
	Subtotal decimal.Decimal
	Taxes    map[string]decimal.Decimal // tax_id -> importe
	Total    decimal.Decimal
}

// ComputeLinePrice calcula subtotal, impuestos y total de la línea con la cantidad indicada
// (redondeo por línea a 2 decimales).
func ComputeLinePrice(line *entity.InvoiceLine, quantity decimal.Decimal, taxes map[string]*entity.Tax) (LinePrice, error) {
	discount := decimal.NewFromInt(1).Sub(line.Discount.Div(hundred))
	subtotal := quantity.Mul(line.PriceUnit).Mul(discount).Round(2)
	res := LinePrice{Subtotal: subtotal, Taxes: make(map[string]decimal.Decimal, len(line.TaxIDs)), Total: subtotal}
	for _, id := range line.TaxIDs {
		tax, ok := taxes[id]
		if !ok {
			return LinePrice{}, fmt.Errorf("%w: %s", ErrUnknownTax, id)
		}
		amount := tax.Compute(subtotal).Round(2)
		res.Taxes[id] = res.Taxes[id].Add(amount)
		res.Total = res.Total.Add(amount)
	}
	return res, nil
}

// Recompute regenera las líneas de impuesto y la contrapartida del documento a partir de sus
// líneas de producto y fija los totales. rate convierte la moneda del documento a la de la empresa.
func Recompute(inv *entity.Invoice, taxes map[string]*entity.Tax, rate decimal.Decimal) error {
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	mult := inv.MoveType.BalanceMultiplier()
	refund := inv.MoveType.IsRefund()

	type taxAcc struct {
		tax    *entity.Tax
		amount decimal.Decimal
	}
	acc := map[string]*taxAcc{}
	var order []string

	products := inv.ProductLines()
	var untaxed, taxTotal decimal.Decimal
	var untaxedBalance, totalBalance, totalCurrency decimal.Decimal

	for i, l := range products {
		price, err := ComputeLinePrice(l, l.Quantity, taxes)
		if err != nil {
			return err
		}
		l.Sequence = i + 1
		l.PriceSubtotal = price.Subtotal
		l.PriceTotal = price.Total
		l.AmountCurrency = price.Subtotal.Mul(mult)
		l.Balance = l.AmountCurrency.Mul(rate).Round(2)

		var tags []string
		for _, id := range l.TaxIDs {
			t := taxes[id]
			tags = append(tags, t.BaseTags(refund)...)
			if _, ok := acc[id]; !ok {
				acc[id] = &taxAcc{tax: t}
				order = append(order, id)
			}
			acc[id].amount = acc[id].amount.Add(price.Taxes[id])
		}
		l.TagIDs = lo.Uniq(tags)

		untaxed = untaxed.Add(price.Subtotal)
		untaxedBalance = untaxedBalance.Add(l.Balance)
		totalCurrency = totalCurrency.Add(l.AmountCurrency)
	}

	lines := make([]*entity.InvoiceLine, 0, len(products)+len(order)+1)
	lines = append(lines, products...)
	seq := len(products)
	for _, id := range order {
		a := acc[id]
		seq++
		amountCurrency := a.amount.Mul(mult)
		lines = append(lines, &entity.InvoiceLine{
			InvoiceID:      inv.ID,
			Sequence:       seq,
			Kind:           entity.LineKindTax,
			Name:           a.tax.Name,
			Quantity:       decimal.Zero,
			PriceUnit:      decimal.Zero,
			TaxLineID:      a.tax.ID,
			TaxGroupID:     a.tax.TaxGroupID,
			TagIDs:         append([]string(nil), a.tax.TaxTags(refund)...),
			PriceSubtotal:  a.amount,
			PriceTotal:     a.amount,
			AmountCurrency: amountCurrency,
			Balance:        amountCurrency.Mul(rate).Round(2),
		})
		taxTotal = taxTotal.Add(a.amount)
		totalCurrency = totalCurrency.Add(amountCurrency)
	}
	for _, l := range lines {
		totalBalance = totalBalance.Add(l.Balance)
	}

	// contrapartida a cobrar/pagar: cuadra debe y haber
	seq++
	lines = append(lines, &entity.InvoiceLine{
		InvoiceID:      inv.ID,
		Sequence:       seq,
		Kind:           entity.LineKindTerm,
		Name:           inv.Name,
		Quantity:       decimal.Zero,
		PriceUnit:      decimal.Zero,
		AmountCurrency: totalCurrency.Neg(),
		Balance:        totalBalance.Neg(),
	})

	inv.Lines = lines
	inv.AmountUntaxed = untaxed
	inv.AmountTax = taxTotal
	inv.AmountTotal = untaxed.Add(taxTotal)
	inv.AmountUntaxedSigned = untaxedBalance.Neg()
	inv.AmountTotalSigned = totalBalance.Neg()
	return nil
}

// CheckBalanced verifica que la suma de saldos del documento sea cero.
func CheckBalanced(inv *entity.Invoice) error {
	var sum decimal.Decimal
	for _, l := range inv.Lines {
		sum = sum.Add(l.Balance)
	}
	if !sum.IsZero() {
		return fmt.Errorf("asiento descuadrado: la suma de saldos es %s", sum.StringFixed(2))
	}
	return nil
}

// RateDate fecha usada para buscar el tipo de cambio: fecha de venta, de factura,
// contable o hoy, en ese orden.
func RateDate(inv *entity.Invoice, today time.Time) time.Time {
	for _, d := range []time.Time{inv.SaleDate, inv.InvoiceDate, inv.Date} {
		if !d.IsZero() {
			return d
		}
	}
	return today
}

// ManualRateAllowed informa si el documento puede fijar su propio tipo de cambio.
func ManualRateAllowed(company *entity.Company, inv *entity.Invoice) bool {
	return company.EnableInvoiceRateChange && inv.CurrencyCode != company.CurrencyCode
}

// TaxesByGroupSequence ordena impuestos por la secuencia de su grupo (empates por nombre).
func TaxesByGroupSequence(list []*entity.Tax, groups map[string]*entity.TaxGroup) []*entity.Tax {
	out := append([]*entity.Tax(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := groupSequence(groups, out[i].TaxGroupID), groupSequence(groups, out[j].TaxGroupID)
		if si != sj {
			return si < sj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func groupSequence(groups map[string]*entity.TaxGroup, id string) int {
	if g, ok := groups[id]; ok {
		return g.Sequence
	}
	return 0
}
