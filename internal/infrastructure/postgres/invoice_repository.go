package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Create y Update escriben varias sentencias: llamarlos dentro de TxRunner.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, journal_id, COALESCE(partner_id::text, ''), name, ref, move_type, state,
	currency_code, currency_rate, date, invoice_date, sale_date, vat_date, date_due,
	COALESCE(refund_invoice_id::text, ''), COALESCE(selected_correction_id::text, ''), correction_reason,
	is_down_payment, advance_invoice_ids, sale_doc_type, purchase_doc_type, jpk_flags, change_jpk_proof,
	amount_untaxed, amount_tax, amount_total, amount_untaxed_signed, amount_total_signed,
	posted_at, created_at, updated_at`

const lineColumns = `
	id, invoice_id, sequence, kind, COALESCE(product_id::text, ''), name, quantity, price_unit, discount,
	tax_ids, COALESCE(tax_line_id::text, ''), COALESCE(tax_group_id::text, ''), corrected, gtu, tag_ids,
	price_subtotal, price_total, amount_currency, balance`

// Create persiste la cabecera y sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO invoices (id, company_id, journal_id, partner_id, name, ref, move_type, state,
			currency_code, currency_rate, date, invoice_date, sale_date, vat_date, date_due,
			refund_invoice_id, selected_correction_id, correction_reason, is_down_payment, advance_invoice_ids,
			sale_doc_type, purchase_doc_type, jpk_flags, change_jpk_proof,
			amount_untaxed, amount_tax, amount_total, amount_untaxed_signed, amount_total_signed,
			posted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q, invoiceArgs(inv)...).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return mapInvoiceError("insert invoice", err)
	}
	return r.insertLines(ctx, inv)
}

// Update reemplaza la cabecera y todas las líneas.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	const q = `
		UPDATE invoices
		SET company_id = $2, journal_id = $3, partner_id = $4, name = $5, ref = $6, move_type = $7, state = $8,
		    currency_code = $9, currency_rate = $10, date = $11, invoice_date = $12, sale_date = $13,
		    vat_date = $14, date_due = $15, refund_invoice_id = $16, selected_correction_id = $17,
		    correction_reason = $18, is_down_payment = $19, advance_invoice_ids = $20, sale_doc_type = $21,
		    purchase_doc_type = $22, jpk_flags = $23, change_jpk_proof = $24, amount_untaxed = $25,
		    amount_tax = $26, amount_total = $27, amount_untaxed_signed = $28, amount_total_signed = $29,
		    posted_at = $30, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, q, invoiceArgs(inv)...).Scan(&inv.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return mapInvoiceError("update invoice", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	return r.insertLines(ctx, inv)
}

func (r *InvoiceRepo) insertLines(ctx context.Context, inv *entity.Invoice) error {
	const q = `
		INSERT INTO invoice_lines (id, invoice_id, sequence, kind, product_id, name, quantity, price_unit, discount,
			tax_ids, tax_line_id, tax_group_id, corrected, gtu, tag_ids, price_subtotal, price_total,
			amount_currency, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	for i, l := range inv.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.InvoiceID = inv.ID
		if l.Sequence == 0 {
			l.Sequence = i + 1
		}
		_, err := r.q.Exec(ctx, q, l.ID, l.InvoiceID, l.Sequence, l.Kind, nullIfEmpty(l.ProductID), l.Name,
			l.Quantity, l.PriceUnit, l.Discount, orEmpty(l.TaxIDs), nullIfEmpty(l.TaxLineID),
			nullIfEmpty(l.TaxGroupID), l.Corrected, l.GTU, orEmpty(l.TagIDs), l.PriceSubtotal, l.PriceTotal,
			l.AmountCurrency, l.Balance)
		if err != nil {
			return fmt.Errorf("insert invoice line %d: %w", i+1, err)
		}
	}
	return nil
}

// GetByID devuelve el documento con sus líneas o nil si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM invoice_lines WHERE invoice_id = $1 ORDER BY sequence`, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	return inv, rows.Err()
}

// ListCorrections cabeceras (sin líneas) de las correcciones de la factura raíz, por fecha de alta.
func (r *InvoiceRepo) ListCorrections(ctx context.Context, rootID string) ([]*entity.Invoice, error) {
	return r.list(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE refund_invoice_id = $1 ORDER BY created_at, id`, rootID)
}

// GetByIDs cabeceras (sin líneas) indexadas por ID.
func (r *InvoiceRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Invoice, error) {
	out := make(map[string]*entity.Invoice, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.list(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range list {
		out[inv.ID] = inv
	}
	return out, nil
}

// List cabeceras filtradas por empresa, tipo, estado y fecha de factura.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	types := make([]string, 0, len(f.MoveTypes))
	for _, t := range f.MoveTypes {
		types = append(types, string(t))
	}
	const q = `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1
		  AND (cardinality($2::text[]) = 0 OR move_type = ANY($2))
		  AND (cardinality($3::text[]) = 0 OR state = ANY($3))
		  AND ($4::date IS NULL OR invoice_date >= $4)
		  AND ($5::date IS NULL OR invoice_date <= $5)
		ORDER BY invoice_date DESC NULLS FIRST, created_at DESC
		LIMIT $6 OFFSET $7`
	return r.list(ctx, q, f.CompanyID, types, orEmpty(f.States), nullTime(f.DateFrom), nullTime(f.DateTo),
		defaultLimit(f.Limit), f.Offset)
}

func (r *InvoiceRepo) list(ctx context.Context, q string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func invoiceArgs(inv *entity.Invoice) []any {
	return []any{
		inv.ID, inv.CompanyID, inv.JournalID, nullIfEmpty(inv.PartnerID), inv.Name, inv.Ref, string(inv.MoveType),
		inv.State, inv.CurrencyCode, inv.CurrencyRate, nullTime(inv.Date), nullTime(inv.InvoiceDate),
		nullTime(inv.SaleDate), nullTime(inv.VATDate), nullTime(inv.DateDue),
		nullIfEmpty(inv.RefundInvoiceID), nullIfEmpty(inv.SelectedCorrectionID), inv.CorrectionReason,
		inv.IsDownPayment, orEmpty(inv.AdvanceInvoiceIDs), inv.SaleDocType, inv.PurchaseDocType, inv.Flags,
		inv.ChangeJPKProof, inv.AmountUntaxed, inv.AmountTax, inv.AmountTotal, inv.AmountUntaxedSigned,
		inv.AmountTotalSigned, inv.PostedAt,
	}
}

// mapInvoiceError traduce los índices únicos de correcciones a errores de dominio.
func mapInvoiceError(op string, err error) error {
	if isUniqueViolation(err) {
		switch constraintName(err) {
		case "ux_invoices_direct_correction":
			return domain.ErrDirectCorrectionExists
		case "ux_invoices_correction_of_correction":
			return domain.ErrCorrectionOfCorrectionExists
		}
		return domain.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var (
		inv                                   entity.Invoice
		moveType                              string
		date, invDate, saleDate, vatDate, due *time.Time
	)
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.JournalID, &inv.PartnerID, &inv.Name, &inv.Ref, &moveType, &inv.State,
		&inv.CurrencyCode, &inv.CurrencyRate, &date, &invDate, &saleDate, &vatDate, &due,
		&inv.RefundInvoiceID, &inv.SelectedCorrectionID, &inv.CorrectionReason,
		&inv.IsDownPayment, &inv.AdvanceInvoiceIDs, &inv.SaleDocType, &inv.PurchaseDocType, &inv.Flags,
		&inv.ChangeJPKProof, &inv.AmountUntaxed, &inv.AmountTax, &inv.AmountTotal, &inv.AmountUntaxedSigned,
		&inv.AmountTotalSigned, &inv.PostedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.MoveType = entity.MoveType(moveType)
	inv.Date, inv.InvoiceDate, inv.SaleDate = timeOrZero(date), timeOrZero(invDate), timeOrZero(saleDate)
	inv.VATDate, inv.DateDue = timeOrZero(vatDate), timeOrZero(due)
	return &inv, nil
}

func scanLine(row pgxScanner) (*entity.InvoiceLine, error) {
	var l entity.InvoiceLine
	err := row.Scan(&l.ID, &l.InvoiceID, &l.Sequence, &l.Kind, &l.ProductID, &l.Name, &l.Quantity, &l.PriceUnit,
		&l.Discount, &l.TaxIDs, &l.TaxLineID, &l.TaxGroupID, &l.Corrected, &l.GTU, &l.TagIDs,
		&l.PriceSubtotal, &l.PriceTotal, &l.AmountCurrency, &l.Balance)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
