// Package invoicing contiene los casos de uso de facturas y facturas correctivas:
// alta en borrador, contabilización, cambios de estado, resúmenes de impuestos y rejestr faktur.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/jpk-api/internal/application/dto"
	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/accounting"
	"github.com/jhoicas/jpk-api/internal/domain/correction"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/posting"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

// Repositories puertos usados por los casos de uso de facturación.
type Repositories struct {
	Invoices   repository.InvoiceRepository
	Journals   repository.JournalRepository
	Partners   repository.PartnerRepository
	Products   repository.ProductRepository
	Companies  repository.CompanyRepository
	Taxes      repository.TaxRepository
	Currencies repository.CurrencyRepository
}

// InvoiceUseCase casos de uso de facturas y correcciones.
type InvoiceUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	journalRepo  repository.JournalRepository
	partnerRepo  repository.PartnerRepository
	productRepo  repository.ProductRepository
	companyRepo  repository.CompanyRepository
	currencyRepo repository.CurrencyRepository
	txRunner     TxRunner
	catalog      *catalogCache
	log          *logger.Logger
	now          func() time.Time
	defaultLang  string
}

// NewInvoiceUseCase construye el caso de uso. cacheTTL controla cuánto se guardan impuestos y monedas.
func NewInvoiceUseCase(repos Repositories, txRunner TxRunner, log *logger.Logger, cacheTTL time.Duration) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceRepo:  repos.Invoices,
		journalRepo:  repos.Journals,
		partnerRepo:  repos.Partners,
		productRepo:  repos.Products,
		companyRepo:  repos.Companies,
		currencyRepo: repos.Currencies,
		txRunner:     txRunner,
		catalog:      newCatalogCache(repos.Taxes, repos.Currencies, cacheTTL),
		log:          log,
		now:          time.Now,
	}
}

// WithClock fija el reloj usado para fechas por defecto (tests).
func (uc *InvoiceUseCase) WithClock(now func() time.Time) *InvoiceUseCase {
	uc.now = now
	return uc
}

func (uc *InvoiceUseCase) today() time.Time {
	y, m, d := uc.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create registra el documento en borrador con sus líneas e importes calculados.
func (uc *InvoiceUseCase) Create(ctx context.Context, companyID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	moveType := entity.MoveType(in.MoveType)
	if !moveType.Valid() || moveType.IsRefund() {
		return nil, domain.ErrInvalidInput
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var partner *entity.Partner
	if in.PartnerID != "" {
		partner, err = uc.partnerRepo.GetByID(ctx, in.PartnerID)
		if err != nil {
			return nil, err
		}
		if partner == nil {
			return nil, domain.ErrNotFound
		}
		if partner.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
	}

	journal, err := uc.journalFor(ctx, companyID, in.JournalID, moveType)
	if err != nil {
		return nil, err
	}

	dates, err := parseDates(in.Date, in.InvoiceDate, in.SaleDate, in.VATDate, in.DateDue)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		CompanyID:         companyID,
		JournalID:         journal.ID,
		PartnerID:         in.PartnerID,
		Ref:               in.Ref,
		MoveType:          moveType,
		State:             entity.InvoiceStateDraft,
		CurrencyCode:      in.CurrencyCode,
		CurrencyRate:      in.CurrencyRate,
		Date:              dates[0],
		InvoiceDate:       dates[1],
		SaleDate:          dates[2],
		VATDate:           dates[3],
		DateDue:           dates[4],
		IsDownPayment:     in.IsDownPayment,
		AdvanceInvoiceIDs: in.AdvanceInvoiceIDs,
		SaleDocType:       in.SaleDocType,
		PurchaseDocType:   in.PurchaseDocType,
		Flags:             in.Flags,
		ChangeJPKProof:    in.ChangeJPKProof,
	}
	if inv.CurrencyCode == "" {
		inv.CurrencyCode = company.CurrencyCode
	}
	if inv.SaleDocType == "" && moveType.IsSale() {
		inv.SaleDocType = journal.SaleDocType
	}
	if inv.PurchaseDocType == "" && moveType.IsPurchase() {
		inv.PurchaseDocType = journal.PurchaseDocType
	}

	productIDs := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.ProductID != "" {
			productIDs = append(productIDs, l.ProductID)
		}
	}
	products, err := uc.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for _, l := range in.Lines {
		line, err := newProductLine(companyID, l, products)
		if err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, line)
	}
	posting.ApplyCreateDefaults(inv, partner, products)

	if err := uc.recompute(ctx, company, inv); err != nil {
		return nil, err
	}
	if err := uc.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, 0), nil
}

func newProductLine(companyID string, in dto.InvoiceLineRequest, products map[string]*entity.Product) (*entity.InvoiceLine, error) {
	if in.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: cantidad cero", domain.ErrInvalidInput)
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: descuento fuera de rango", domain.ErrInvalidInput)
	}
	line := &entity.InvoiceLine{
		Kind:      entity.LineKindProduct,
		ProductID: in.ProductID,
		Name:      in.Name,
		Quantity:  in.Quantity,
		PriceUnit: in.PriceUnit,
		Discount:  in.Discount,
		TaxIDs:    in.TaxIDs,
		GTU:       in.GTU,
	}
	if in.ProductID == "" {
		if line.Name == "" {
			return nil, fmt.Errorf("%w: la línea necesita producto o descripción", domain.ErrInvalidInput)
		}
		return line, nil
	}
	p, ok := products[in.ProductID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if line.Name == "" {
		line.Name = p.Name
	}
	if line.PriceUnit.IsZero() {
		line.PriceUnit = p.Price
	}
	if len(line.TaxIDs) == 0 {
		line.TaxIDs = append([]string(nil), p.TaxIDs...)
	}
	return line, nil
}

// Get devuelve el documento con sus líneas y el número de correcciones asociadas.
func (uc *InvoiceUseCase) Get(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	count, err := uc.correctionCount(ctx, inv)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, count), nil
}

// List devuelve las cabeceras de la empresa según los filtros.
func (uc *InvoiceUseCase) List(ctx context.Context, companyID string, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()
	f := repository.InvoiceFilter{CompanyID: companyID, Limit: in.Limit, Offset: in.Offset}
	if in.MoveType != "" {
		f.MoveTypes = []entity.MoveType{entity.MoveType(in.MoveType)}
	}
	if in.State != "" {
		f.States = []string{in.State}
	}
	dates, err := parseDates(in.DateFrom, in.DateTo)
	if err != nil {
		return nil, err
	}
	f.DateFrom, f.DateTo = dates[0], dates[1]

	list, err := uc.invoiceRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *toInvoiceResponse(inv, 0))
	}
	return &dto.InvoiceListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// Post valida y contabiliza el documento: fechas, tipo de cambio, importes, número del diario
// y fecha VAT. Todos los problemas de validación se devuelven juntos.
func (uc *InvoiceUseCase) Post(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	posting.PrepareDates(inv, uc.today())
	if err := uc.recompute(ctx, company, inv); err != nil {
		return nil, err
	}
	if err := posting.Validate(inv); err != nil {
		return nil, err
	}
	if err := accounting.CheckBalanced(inv); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	err = uc.txRunner.RunInvoicing(ctx, func(invoiceRepo repository.InvoiceRepository, journalRepo repository.JournalRepository) error {
		journal, err := journalRepo.GetByID(ctx, inv.JournalID)
		if err != nil {
			return err
		}
		if journal == nil {
			return domain.ErrNotFound
		}
		if inv.Name == "" {
			seq, err := journalRepo.NextNumber(ctx, journal.ID)
			if err != nil {
				return err
			}
			inv.Name = journal.FormatNumber(inv.Date, seq)
		}
		postedAt := uc.now()
		inv.State = entity.InvoiceStatePosted
		inv.PostedAt = &postedAt
		posting.AssignVATDate(inv)
		return invoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo contabilizar la factura")
		return nil, err
	}
	uc.log.Info().
		Str("company_id", companyID).
		Str("invoice_id", inv.ID).
		Str("name", inv.Name).
		Str("move_type", string(inv.MoveType)).
		Str("total", inv.AmountTotal.StringFixed(2)).
		Msg("factura contabilizada")

	count, err := uc.correctionCount(ctx, inv)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, count), nil
}

// ResetToDraft devuelve el documento a borrador si no tiene correcciones.
func (uc *InvoiceUseCase) ResetToDraft(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	return uc.changeState(ctx, companyID, id, entity.InvoiceStateDraft)
}

// Cancel anula el documento si no tiene correcciones.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	return uc.changeState(ctx, companyID, id, entity.InvoiceStateCancel)
}

func (uc *InvoiceUseCase) changeState(ctx context.Context, companyID, id, target string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if inv.State == target {
		return nil, domain.ErrConflict
	}
	count, err := uc.correctionCount(ctx, inv)
	if err != nil {
		return nil, err
	}
	if err := correction.CheckStateChange(target, count); err != nil {
		return nil, err
	}
	inv.State = target
	if target == entity.InvoiceStateDraft {
		inv.PostedAt = nil
	}
	if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("state", target).Msg("estado de factura cambiado")
	return toInvoiceResponse(inv, count), nil
}

// load devuelve el documento con líneas comprobando que pertenece a la empresa.
func (uc *InvoiceUseCase) load(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

func (uc *InvoiceUseCase) company(ctx context.Context, id string) (*entity.Company, error) {
	c, err := uc.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// journalFor devuelve el diario indicado o el diario por defecto del tipo de documento.
func (uc *InvoiceUseCase) journalFor(ctx context.Context, companyID, journalID string, t entity.MoveType) (*entity.Journal, error) {
	if journalID != "" {
		j, err := uc.journalRepo.GetByID(ctx, journalID)
		if err != nil {
			return nil, err
		}
		if j == nil {
			return nil, domain.ErrNotFound
		}
		if j.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		return j, nil
	}
	journalType := entity.JournalTypeGeneral
	switch {
	case t.IsSale():
		journalType = entity.JournalTypeSale
	case t.IsPurchase():
		journalType = entity.JournalTypePurchase
	}
	j, err := uc.journalRepo.GetDefault(ctx, companyID, journalType)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("%w: la empresa no tiene diario %s por defecto", domain.ErrInvalidInput, journalType)
	}
	return j, nil
}

// recompute regenera líneas de impuesto, contrapartida y totales con el tipo de cambio vigente.
func (uc *InvoiceUseCase) recompute(ctx context.Context, company *entity.Company, inv *entity.Invoice) error {
	cat, err := uc.catalog.taxes(ctx, company.ID)
	if err != nil {
		return err
	}
	rate, err := uc.rate(ctx, company, inv)
	if err != nil {
		return err
	}
	if err := accounting.Recompute(inv, cat.taxes, rate); err != nil {
		if errors.Is(err, accounting.ErrUnknownTax) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return err
	}
	return nil
}

// rate tipo de cambio del documento a la moneda de la empresa: el fijado en la factura si la
// empresa lo permite, si no el de la tabla a la fecha de venta, factura, contable u hoy.
func (uc *InvoiceUseCase) rate(ctx context.Context, company *entity.Company, inv *entity.Invoice) (decimal.Decimal, error) {
	one := decimal.NewFromInt(1)
	if inv.CurrencyCode == "" || inv.CurrencyCode == company.CurrencyCode {
		return one, nil
	}
	if accounting.ManualRateAllowed(company, inv) && inv.CurrencyRate.IsPositive() {
		return inv.CurrencyRate, nil
	}
	date := accounting.RateDate(inv, uc.today())
	r, err := uc.currencyRepo.RateAt(ctx, company.ID, inv.CurrencyCode, date)
	if err != nil {
		return decimal.Zero, err
	}
	if r == nil {
		return decimal.Zero, fmt.Errorf("%w: no hay tipo de cambio %s al %s", domain.ErrInvalidInput,
			inv.CurrencyCode, date.Format(dto.DateLayout))
	}
	return r.Rate, nil
}

// correctionCount número de correcciones que bloquean los cambios de estado del documento.
func (uc *InvoiceUseCase) correctionCount(ctx context.Context, inv *entity.Invoice) (int, error) {
	if !inv.MoveType.IsInvoice() {
		return 0, nil
	}
	rootID := inv.ID
	if inv.IsCorrection() {
		rootID = inv.RefundInvoiceID
	}
	corrections, err := uc.invoiceRepo.ListCorrections(ctx, rootID)
	if err != nil {
		return 0, err
	}
	return correction.Count(inv, corrections), nil
}
