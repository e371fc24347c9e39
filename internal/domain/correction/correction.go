// Package correction implementa las reglas de facturas correctivas (faktury korygujące):
// signo de la corrección, cadena de correcciones, restricciones y construcción de líneas.
package correction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/accounting"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// CorrectedAmountTotal total de la factura tras la corrección expresado en el sentido de la
// factura original. Sin factura corregida devuelve el total del documento.
func CorrectedAmountTotal(inv *entity.Invoice, taxes map[string]*entity.Tax) (decimal.Decimal, error) {
	if inv.RefundInvoiceID == "" {
		return inv.AmountTotal, nil
	}
	total := decimal.Zero
	for _, l := range inv.CorrectedLines() {
		price, err := accounting.ComputeLinePrice(l, l.QuantityReverse(), taxes)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price.Total)
	}
	return total, nil
}

// Sign devuelve -1 si la corrección reduce el total de la factura original (comparado a 2
// decimales) y 1 en cualquier otro caso. original es la factura raíz de la cadena.
func Sign(inv, original *entity.Invoice, taxes map[string]*entity.Tax) (int, error) {
	if !inv.MoveType.IsRefund() || original == nil {
		return 1, nil
	}
	own, err := CorrectedAmountTotal(inv, taxes)
	if err != nil {
		return 1, err
	}
	orig, err := CorrectedAmountTotal(original, taxes)
	if err != nil {
		return 1, err
	}
	if own.Round(2).LessThan(orig.Round(2)) {
		return -1, nil
	}
	return 1, nil
}

// Chain devuelve las correcciones encadenadas a partir de startID siguiendo SelectedCorrectionID.
// corrections son todas las correcciones de la misma factura raíz.
func Chain(startID string, corrections []*entity.Invoice) []*entity.Invoice {
	bySelected := make(map[string]*entity.Invoice, len(corrections))
	for _, c := range corrections {
		if c.SelectedCorrectionID != "" {
			bySelected[c.SelectedCorrectionID] = c
		}
	}
	var out []*entity.Invoice
	seen := map[string]struct{}{startID: {}}
	current := startID
	for {
		next, ok := bySelected[current]
		if !ok {
			return out
		}
		if _, loop := seen[next.ID]; loop {
			return out
		}
		seen[next.ID] = struct{}{}
		out = append(out, next)
		current = next.ID
	}
}

// Count número de correcciones asociadas: para facturas todas las que apuntan a ella,
// para correcciones la longitud de la cadena que parte de ella.
func Count(inv *entity.Invoice, corrections []*entity.Invoice) int {
	if inv.MoveType == entity.MoveTypeInInvoice || inv.MoveType == entity.MoveTypeOutInvoice {
		n := 0
		for _, c := range corrections {
			if c.RefundInvoiceID == inv.ID {
				n++
			}
		}
		return n
	}
	return len(Chain(inv.ID, corrections))
}

// CheckUnique valida que no exista otra corrección directa de la misma factura ni otra
// corrección de la misma corrección. siblings son las correcciones con la misma factura raíz.
func CheckUnique(c *entity.Invoice, siblings []*entity.Invoice) error {
	if c.RefundInvoiceID == "" {
		return nil
	}
	for _, s := range siblings {
		if s.ID == c.ID || s.RefundInvoiceID != c.RefundInvoiceID {
			continue
		}
		if c.SelectedCorrectionID == "" && s.SelectedCorrectionID == "" {
			return domain.ErrDirectCorrectionExists
		}
		if c.SelectedCorrectionID != "" && s.SelectedCorrectionID == c.SelectedCorrectionID {
			return domain.ErrCorrectionOfCorrectionExists
		}
	}
	return nil
}

// CheckStateChange impide volver a borrador o cancelar un documento con correcciones.
func CheckStateChange(targetState string, correctionCount int) error {
	if targetState != entity.InvoiceStateDraft && targetState != entity.InvoiceStateCancel {
		return nil
	}
	if correctionCount > 0 {
		return domain.ErrInvoiceHasCorrections
	}
	return nil
}

// Request datos de la corrección a emitir.
type Request struct {
	Date   time.Time
	Reason string
	Ref    string
}

// Build crea la corrección en borrador de root (factura raíz). Si selected no es nil se
// corrige esa corrección: sus líneas corregidas se revierten y se vuelven a añadir como
// estado corregido editable; si no, se copian las líneas de root y sus réplicas corregidas.
func Build(root, selected *entity.Invoice, req Request) (*entity.Invoice, error) {
	if root.State != entity.InvoiceStatePosted || !root.MoveType.IsInvoice() || root.MoveType.IsRefund() {
		return nil, domain.ErrNotCorrectable
	}
	c := &entity.Invoice{
		CompanyID:        root.CompanyID,
		JournalID:        root.JournalID,
		PartnerID:        root.PartnerID,
		Ref:              req.Ref,
		MoveType:         root.MoveType.RefundType(),
		State:            entity.InvoiceStateDraft,
		CurrencyCode:     root.CurrencyCode,
		CurrencyRate:     root.CurrencyRate,
		Date:             req.Date,
		InvoiceDate:      req.Date,
		SaleDate:         root.SaleDate,
		RefundInvoiceID:  root.ID,
		CorrectionReason: req.Reason,
		SaleDocType:      root.SaleDocType,
		PurchaseDocType:  root.PurchaseDocType,
		Flags:            root.Flags,
	}
	if c.Ref == "" {
		c.Ref = root.Ref
	}

	if selected == nil {
		for _, l := range root.ProductLines() {
			orig := l.Clone()
			orig.Corrected = false
			c.Lines = append(c.Lines, orig)
		}
		for _, l := range root.ProductLines() {
			cl := l.Clone()
			cl.Corrected = true
			cl.Quantity = l.Quantity.Neg()
			c.Lines = append(c.Lines, cl)
		}
		return c, nil
	}

	if selected.RefundInvoiceID != root.ID {
		return nil, domain.ErrNotCorrectable
	}
	c.MoveType = selected.MoveType
	c.SelectedCorrectionID = selected.ID
	corrected := selected.CorrectedLines()
	for _, l := range corrected {
		rev := l.Clone()
		rev.Corrected = false
		rev.PriceUnit = l.PriceUnit.Neg()
		rev.Quantity = l.Quantity.Neg()
		c.Lines = append(c.Lines, rev)
	}
	for _, l := range corrected {
		cl := l.Clone()
		cl.Corrected = true
		cl.Quantity = l.Quantity.Abs().Neg()
		c.Lines = append(c.Lines, cl)
	}
	return c, nil
}
