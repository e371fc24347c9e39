package invoicing

import (
	"fmt"
	"time"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

// parseDates convierte fechas AAAA-MM-DD; las vacías quedan en cero.
func parseDates(values ...string) ([]time.Time, error) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		t, err := time.Parse(dto.DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, v)
		}
		out[i] = t
	}
	return out, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}

func toInvoiceResponse(inv *entity.Invoice, correctionCount int) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:                   inv.ID,
		CompanyID:            inv.CompanyID,
		JournalID:            inv.JournalID,
		PartnerID:            inv.PartnerID,
		Name:                 inv.Name,
		Ref:                  inv.Ref,
		MoveType:             string(inv.MoveType),
		State:                inv.State,
		CurrencyCode:         inv.CurrencyCode,
		CurrencyRate:         inv.CurrencyRate,
		Date:                 formatDate(inv.Date),
		InvoiceDate:          formatDate(inv.InvoiceDate),
		SaleDate:             formatDate(inv.SaleDate),
		VATDate:              formatDate(inv.VATDate),
		DateDue:              formatDate(inv.DateDue),
		RefundInvoiceID:      inv.RefundInvoiceID,
		SelectedCorrectionID: inv.SelectedCorrectionID,
		CorrectionReason:     inv.CorrectionReason,
		CorrectionCount:      correctionCount,
		SaleDocType:          inv.SaleDocType,
		PurchaseDocType:      inv.PurchaseDocType,
		Flags:                inv.Flags,
		AmountUntaxed:        inv.AmountUntaxed,
		AmountTax:            inv.AmountTax,
		AmountTotal:          inv.AmountTotal,
		AmountUntaxedSigned:  inv.AmountUntaxedSigned,
		AmountTotalSigned:    inv.AmountTotalSigned,
		Lines:                make([]dto.InvoiceLineResponse, 0, len(inv.Lines)),
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:             l.ID,
			Sequence:       l.Sequence,
			Kind:           l.Kind,
			ProductID:      l.ProductID,
			Name:           l.Name,
			Quantity:       l.Quantity,
			PriceUnit:      l.PriceUnit,
			Discount:       l.Discount,
			TaxIDs:         l.TaxIDs,
			TaxLineID:      l.TaxLineID,
			Corrected:      l.Corrected,
			GTU:            l.GTU,
			PriceSubtotal:  l.PriceSubtotal,
			PriceTotal:     l.PriceTotal,
			AmountCurrency: l.AmountCurrency,
			Balance:        l.Balance,
		})
	}
	return resp
}
