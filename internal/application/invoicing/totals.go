package invoicing

import (
	"context"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain/correction"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/taxtotals"
	"github.com/jhoicas/jpk-api/pkg/money"
)

// WithDefaultLang idioma de formato para empresas sin idioma configurado.
func (uc *InvoiceUseCase) WithDefaultLang(lang string) *InvoiceUseCase {
	uc.defaultLang = lang
	return uc
}

func (uc *InvoiceUseCase) formatter(company *entity.Company) taxtotals.Formatter {
	lang := company.Lang
	if lang == "" {
		lang = uc.defaultLang
	}
	return money.NewFormatter(lang)
}

// TaxTotals resumen de impuestos por subtotal y grupo de VAT. En una factura final con
// anticipos, withDownPayments=false suma los resúmenes de los anticipos liquidados.
func (uc *InvoiceUseCase) TaxTotals(ctx context.Context, companyID, id string, withDownPayments bool) (*taxtotals.Totals, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	in, err := uc.totalsInput(ctx, company, inv, nil)
	if err != nil {
		return nil, err
	}
	main := taxtotals.TaxTotals(in)
	if len(inv.AdvanceInvoiceIDs) == 0 {
		return main, nil
	}

	advances := make([]*taxtotals.Totals, 0, len(inv.AdvanceInvoiceIDs))
	for _, advID := range inv.AdvanceInvoiceIDs {
		adv, err := uc.load(ctx, companyID, advID)
		if err != nil {
			return nil, err
		}
		advIn := in
		advIn.Invoice = adv
		advIn.Sign = 1
		advances = append(advances, taxtotals.TaxTotals(advIn))
	}
	return taxtotals.FinalTaxTotals(main, advances, withDownPayments, in.Formatter, in.Currency, in.CompanyCurrency), nil
}

// Summary desglose por grupo de VAT con el signo de la factura. En correcciones añade el
// resumen expresado como cambio sobre la factura original.
func (uc *InvoiceUseCase) Summary(ctx context.Context, companyID, id string) (*dto.InvoiceSummaryResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	in, err := uc.totalsInput(ctx, company, inv, nil)
	if err != nil {
		return nil, err
	}
	resp := &dto.InvoiceSummaryResponse{Summary: taxtotals.AmountSummary(in)}
	if inv.RefundInvoiceID == "" {
		return resp, nil
	}

	root, err := uc.load(ctx, companyID, inv.RefundInvoiceID)
	if err != nil {
		return nil, err
	}
	rootIn := in
	rootIn.Invoice = root
	rootIn.Sign = 1
	resp.Corrected = taxtotals.CorrectedSummary(resp.Summary, taxtotals.AmountSummary(rootIn), in)
	return resp, nil
}

// totalsInput prepara la agregación del documento. root es la factura raíz si ya se cargó.
func (uc *InvoiceUseCase) totalsInput(ctx context.Context, company *entity.Company, inv, root *entity.Invoice) (taxtotals.Input, error) {
	cat, err := uc.catalog.taxes(ctx, company.ID)
	if err != nil {
		return taxtotals.Input{}, err
	}
	cur, err := uc.catalog.currency(ctx, inv.CurrencyCode)
	if err != nil {
		return taxtotals.Input{}, err
	}
	pln, err := uc.catalog.currency(ctx, company.CurrencyCode)
	if err != nil {
		return taxtotals.Input{}, err
	}

	sign := 1
	if inv.IsCorrection() {
		if root == nil {
			if root, err = uc.load(ctx, inv.CompanyID, inv.RefundInvoiceID); err != nil {
				return taxtotals.Input{}, err
			}
		}
		if sign, err = correction.Sign(inv, root, cat.taxes); err != nil {
			return taxtotals.Input{}, err
		}
	}
	return taxtotals.Input{
		Invoice:         inv,
		Taxes:           cat.taxes,
		Groups:          cat.groups,
		Sign:            sign,
		Currency:        cur,
		CompanyCurrency: pln,
		Formatter:       uc.formatter(company),
	}, nil
}
