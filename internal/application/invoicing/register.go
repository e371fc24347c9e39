package invoicing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
	"github.com/jhoicas/jpk-api/internal/domain/taxtotals"
)

const (
	registerPageSize = 500
	registerWorkers  = 8
)

// Register rejestr faktur: una fila por documento con importes netos, por grupo de VAT y
// brutos en PLN. Las compras y las correcciones que reducen importes llevan signo negativo.
func (uc *InvoiceUseCase) Register(ctx context.Context, companyID string, in dto.RegisterReportRequest) (*dto.RegisterReportResponse, error) {
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	dates, err := parseDates(in.DateFrom, in.DateTo)
	if err != nil {
		return nil, err
	}

	f := repository.InvoiceFilter{
		CompanyID: companyID,
		MoveTypes: registerMoveTypes(in.Kind),
		States:    []string{entity.InvoiceStatePosted},
		DateFrom:  dates[0],
		DateTo:    dates[1],
		Limit:     registerPageSize,
	}
	if in.State != "" {
		f.States = []string{in.State}
	}
	var headers []*entity.Invoice
	for {
		page, err := uc.invoiceRepo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		headers = append(headers, page...)
		if len(page) < registerPageSize {
			break
		}
		f.Offset += registerPageSize
	}

	invoices, err := uc.loadLines(ctx, headers)
	if err != nil {
		return nil, err
	}
	partners, err := uc.partnerRepo.GetByIDs(ctx, lo.Uniq(lo.FilterMap(invoices, func(inv *entity.Invoice, _ int) (string, bool) {
		return inv.PartnerID, inv.PartnerID != ""
	})))
	if err != nil {
		return nil, err
	}
	roots, err := uc.invoiceRepo.GetByIDs(ctx, lo.Uniq(lo.FilterMap(invoices, func(inv *entity.Invoice, _ int) (string, bool) {
		return inv.RefundInvoiceID, inv.RefundInvoiceID != ""
	})))
	if err != nil {
		return nil, err
	}
	cat, err := uc.catalog.taxes(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := &dto.RegisterReportResponse{Rows: make([]dto.RegisterRow, 0, len(invoices))}
	groupNames := map[string]int{}
	for _, inv := range invoices {
		in, err := uc.totalsInput(ctx, company, inv, roots[inv.RefundInvoiceID])
		if err != nil {
			return nil, err
		}
		row := registerRow(company, inv, partners[inv.PartnerID], roots[inv.RefundInvoiceID], in)
		for _, g := range cat.groups {
			if _, ok := row.GroupsPLN[g.Name]; ok {
				groupNames[g.Name] = g.Sequence
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	resp.Groups = lo.Keys(groupNames)
	sort.Slice(resp.Groups, func(i, j int) bool {
		a, b := resp.Groups[i], resp.Groups[j]
		if groupNames[a] != groupNames[b] {
			return groupNames[a] < groupNames[b]
		}
		return a < b
	})
	return resp, nil
}

func registerMoveTypes(kind string) []entity.MoveType {
	sale := []entity.MoveType{entity.MoveTypeOutInvoice, entity.MoveTypeOutRefund, entity.MoveTypeOutReceipt}
	purchase := []entity.MoveType{entity.MoveTypeInInvoice, entity.MoveTypeInRefund, entity.MoveTypeInReceipt}
	switch kind {
	case entity.JournalTypeSale:
		return sale
	case entity.JournalTypePurchase:
		return purchase
	}
	return append(sale, purchase...)
}

// loadLines carga en paralelo los documentos completos manteniendo el orden de headers.
func (uc *InvoiceUseCase) loadLines(ctx context.Context, headers []*entity.Invoice) ([]*entity.Invoice, error) {
	p := pool.NewWithResults[*entity.Invoice]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(registerWorkers)
	for _, h := range headers {
		id := h.ID
		p.Go(func(ctx context.Context) (*entity.Invoice, error) {
			inv, err := uc.invoiceRepo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("cargar factura %s: %w", id, err)
			}
			return inv, nil
		})
	}
	loaded, err := p.Wait()
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(lo.Compact(loaded), func(inv *entity.Invoice) string { return inv.ID })
	out := make([]*entity.Invoice, 0, len(headers))
	for _, h := range headers {
		if inv, ok := byID[h.ID]; ok {
			out = append(out, inv)
		}
	}
	return out, nil
}

func registerRow(company *entity.Company, inv *entity.Invoice, partner *entity.Partner, root *entity.Invoice, in taxtotals.Input) dto.RegisterRow {
	sign := decimal.NewFromInt(int64(in.Sign))
	if inv.MoveType.IsPurchase() {
		sign = sign.Neg()
	}

	row := dto.RegisterRow{
		InvoiceID:     inv.ID,
		Number:        inv.Name,
		PartnerID:     inv.PartnerID,
		InvoiceDate:   formatDate(inv.InvoiceDate),
		SaleDate:      formatDate(inv.SaleDate),
		VATDate:       formatDate(inv.VATDate),
		Company:       company.Name,
		DateDue:       formatDate(inv.InvoiceDate),
		State:         inv.State,
		CurrencyCode:  inv.CurrencyCode,
		NetPLN:        inv.AmountUntaxedSigned.Abs().Mul(sign),
		GroupsPLN:     map[string]decimal.Decimal{},
		GrossPLN:      inv.AmountTotalSigned.Abs().Mul(sign),
		GrossCurrency: inv.AmountTotal.Abs().Mul(sign),
	}
	if !inv.DateDue.IsZero() {
		row.DateDue = formatDate(inv.DateDue)
	}
	if root != nil {
		row.CorrectionOf = root.Name
	}
	if partner != nil {
		row.PartnerName = partner.Name
		row.Address = strings.TrimSpace(strings.Join([]string{partner.Street, partner.Street2}, " "))
		row.City = partner.City
		row.Zip = partner.Zip
		row.NIP = partner.VAT
	}

	totals := taxtotals.TaxTotals(in)
	for _, groups := range totals.GroupsBySubtotal {
		for _, g := range groups {
			row.GroupsPLN[g.Name] = row.GroupsPLN[g.Name].Add(g.AmountInPLN.Abs().Mul(sign))
		}
	}
	return row
}
