package invoicing

import (
	"context"
	"fmt"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/correction"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

// CreateCorrection crea en borrador la factura correctiva de invoiceID. Si invoiceID es una
// corrección se corrige esa corrección; si no, SelectedCorrectionID elige la corrección a
// corregir y vacío crea la corrección directa. Lines fija el estado final de las líneas
// corregidas (cantidad expresada como en la factura original).
func (uc *InvoiceUseCase) CreateCorrection(ctx context.Context, companyID, invoiceID string, in dto.CreateCorrectionRequest) (*dto.InvoiceResponse, error) {
	target, err := uc.load(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	root := target
	selectedID := in.SelectedCorrectionID
	if target.IsCorrection() {
		root, err = uc.load(ctx, companyID, target.RefundInvoiceID)
		if err != nil {
			return nil, err
		}
		if selectedID == "" {
			selectedID = target.ID
		}
	}

	var selected *entity.Invoice
	if selectedID != "" {
		selected, err = uc.load(ctx, companyID, selectedID)
		if err != nil {
			return nil, err
		}
	}

	dates, err := parseDates(in.Date)
	if err != nil {
		return nil, err
	}
	date := dates[0]
	if date.IsZero() {
		date = uc.today()
	}

	c, err := correction.Build(root, selected, correction.Request{Date: date, Reason: in.Reason, Ref: in.Ref})
	if err != nil {
		return nil, err
	}
	if err := applyCorrectedLines(c, in.Lines); err != nil {
		return nil, err
	}

	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := uc.recompute(ctx, company, c); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunInvoicing(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.JournalRepository) error {
		siblings, err := invoiceRepo.ListCorrections(ctx, root.ID)
		if err != nil {
			return err
		}
		if err := correction.CheckUnique(c, siblings); err != nil {
			return err
		}
		return invoiceRepo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", companyID).
		Str("correction_id", c.ID).
		Str("root_id", root.ID).
		Str("selected_correction_id", c.SelectedCorrectionID).
		Msg("factura correctiva creada")
	return toInvoiceResponse(c, 0), nil
}

func applyCorrectedLines(c *entity.Invoice, changes []dto.CorrectedLineRequest) error {
	corrected := c.CorrectedLines()
	for _, ch := range changes {
		if ch.Index < 0 || ch.Index >= len(corrected) {
			return fmt.Errorf("%w: línea corregida %d inexistente", domain.ErrInvalidInput, ch.Index)
		}
		l := corrected[ch.Index]
		if ch.Quantity != nil {
			l.Quantity = ch.Quantity.Neg()
		}
		if ch.PriceUnit != nil {
			l.PriceUnit = *ch.PriceUnit
		}
		if ch.Discount != nil {
			l.Discount = *ch.Discount
		}
	}
	return nil
}
