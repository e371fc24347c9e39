// Package posting contiene las reglas para contabilizar facturas polacas: validaciones,
// fechas de venta y de VAT, y valores por defecto de TP y GTU.
package posting

import (
	"errors"
	"time"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// ApplyCreateDefaults completa TP desde el contratista y GTU desde el producto en
// documentos de venta. Se aplica al crear el documento.
func ApplyCreateDefaults(inv *entity.Invoice, partner *entity.Partner, products map[string]*entity.Product) {
	if inv.MoveType != entity.MoveTypeOutInvoice && inv.MoveType != entity.MoveTypeOutRefund {
		return
	}
	if partner != nil && partner.TP {
		inv.Flags.TP = true
	}
	for _, l := range inv.ProductLines() {
		if l.GTU != "" || l.ProductID == "" {
			continue
		}
		if p, ok := products[l.ProductID]; ok && p.GTU != "" {
			l.GTU = p.GTU
		}
	}
}

// Validate comprueba que el documento pueda contabilizarse. Devuelve todos los problemas
// encontrados unidos con errors.Join.
func Validate(inv *entity.Invoice) error {
	if inv.State == entity.InvoiceStatePosted {
		return domain.ErrAlreadyPosted
	}
	var errs []error
	if inv.MoveType.IsPurchase() && inv.Ref == "" {
		errs = append(errs, domain.ErrVendorReferenceRequired)
	}
	if inv.MoveType.IsInvoice() && inv.PartnerID == "" {
		errs = append(errs, domain.ErrPartnerRequired)
	}
	if len(inv.ProductLines()) == 0 {
		errs = append(errs, domain.ErrNoLines)
	}
	if inv.MoveType.IsPurchase() && inv.InvoiceDate.IsZero() {
		errs = append(errs, domain.ErrBillDateRequired)
	}
	if inv.MoveType.IsInvoice() && !inv.MoveType.IsRefund() && inv.AmountTotal.IsNegative() {
		errs = append(errs, domain.ErrNegativeTotal)
	}
	if !entity.ValidSaleDocType(inv.SaleDocType) || !entity.ValidPurchaseDocType(inv.PurchaseDocType) {
		errs = append(errs, domain.ErrInvalidInput)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// PrepareDates fija las fechas previas a la contabilización: fecha de venta (por defecto la
// de factura, hoy en ventas sin fecha), fecha de factura y fecha contable. Las compras sin
// fecha de factura la siguen teniendo vacía para que Validate las rechace.
func PrepareDates(inv *entity.Invoice, today time.Time) {
	if inv.MoveType == entity.MoveTypeEntry {
		if inv.Date.IsZero() {
			inv.Date = today
		}
		return
	}
	if inv.SaleDate.IsZero() {
		if inv.InvoiceDate.IsZero() {
			if inv.MoveType.IsSale() {
				inv.SaleDate = today
			}
		} else {
			inv.SaleDate = inv.InvoiceDate
		}
	}
	if inv.InvoiceDate.IsZero() && inv.MoveType.IsSale() {
		inv.InvoiceDate = today
	}
	if inv.Date.IsZero() {
		inv.Date = inv.InvoiceDate
	}
}

// AssignVATDate fija la fecha VAT tras contabilizar si no se indicó: la fecha de venta en
// facturas y correcciones de venta con fecha de factura, la fecha contable en el resto.
func AssignVATDate(inv *entity.Invoice) {
	if !inv.MoveType.IsInvoice() || !inv.VATDate.IsZero() {
		return
	}
	if !inv.InvoiceDate.IsZero() && (inv.MoveType == entity.MoveTypeOutInvoice || inv.MoveType == entity.MoveTypeOutRefund) {
		inv.VATDate = inv.SaleDate
		return
	}
	inv.VATDate = inv.Date
}
