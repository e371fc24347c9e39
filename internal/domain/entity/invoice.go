package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveType tipo de documento contable.
type MoveType string

// Tipos de documento.
const (
	MoveTypeEntry      MoveType = "entry"
	MoveTypeOutInvoice MoveType = "out_invoice"
	MoveTypeOutRefund  MoveType = "out_refund"
	MoveTypeInInvoice  MoveType = "in_invoice"
	MoveTypeInRefund   MoveType = "in_refund"
	MoveTypeOutReceipt MoveType = "out_receipt"
	MoveTypeInReceipt  MoveType = "in_receipt"
)

// Valid informa si el tipo es conocido.
func (t MoveType) Valid() bool {
	switch t {
	case MoveTypeEntry, MoveTypeOutInvoice, MoveTypeOutRefund, MoveTypeInInvoice,
		MoveTypeInRefund, MoveTypeOutReceipt, MoveTypeInReceipt:
		return true
	}
	return false
}

// IsInvoice informa si es factura, corrección o recibo (todo salvo asiento manual).
func (t MoveType) IsInvoice() bool { return t.Valid() && t != MoveTypeEntry }

// IsRefund informa si es una factura correctiva.
func (t MoveType) IsRefund() bool { return t == MoveTypeOutRefund || t == MoveTypeInRefund }

// IsSale informa si es documento de venta (incluye recibos).
func (t MoveType) IsSale() bool {
	return t == MoveTypeOutInvoice || t == MoveTypeOutRefund || t == MoveTypeOutReceipt
}

// IsPurchase informa si es documento de compra (incluye recibos).
func (t MoveType) IsPurchase() bool {
	return t == MoveTypeInInvoice || t == MoveTypeInRefund || t == MoveTypeInReceipt
}

// IsInbound informa si el documento genera un cobro (la contrapartida de ingresos va al haber).
func (t MoveType) IsInbound() bool {
	return t == MoveTypeOutInvoice || t == MoveTypeInRefund || t == MoveTypeOutReceipt
}

// BalanceMultiplier -1 para documentos de cobro, 1 en el resto.
func (t MoveType) BalanceMultiplier() decimal.Decimal {
	if t.IsInbound() {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// RefundType tipo de corrección que corresponde a una factura.
func (t MoveType) RefundType() MoveType {
	switch t {
	case MoveTypeOutInvoice, MoveTypeOutReceipt:
		return MoveTypeOutRefund
	case MoveTypeInInvoice, MoveTypeInReceipt:
		return MoveTypeInRefund
	}
	return t
}

// Estados del documento.
const (
	InvoiceStateDraft  = "draft"
	InvoiceStatePosted = "posted"
	InvoiceStateCancel = "cancel"
)

// Typ Dokumentu (ventas) y Dokument Zakupu (compras) del JPK_V7M.
const (
	SaleDocTypeRO  = "RO"
	SaleDocTypeFP  = "FP"
	SaleDocTypeWEW = "WEW"

	PurchaseDocTypeMK    = "MK"
	PurchaseDocTypeVATRR = "VAT_RR"
	PurchaseDocTypeWEW   = "WEW"
)

// ValidSaleDocType informa si el código es un Typ Dokumentu válido (vacío se admite).
func ValidSaleDocType(code string) bool {
	switch code {
	case "", SaleDocTypeRO, SaleDocTypeFP, SaleDocTypeWEW:
		return true
	}
	return false
}

// ValidPurchaseDocType informa si el código es un Dokument Zakupu válido (vacío se admite).
func ValidPurchaseDocType(code string) bool {
	switch code {
	case "", PurchaseDocTypeMK, PurchaseDocTypeVATRR, PurchaseDocTypeWEW:
		return true
	}
	return false
}

// Invoice representa la cabecera de una factura, corrección o asiento.
type Invoice struct {
	ID        string
	CompanyID string
	JournalID string
	PartnerID string
	Name      string // número asignado al contabilizar
	Ref       string // número de factura del proveedor
	MoveType  MoveType
	State     string

	CurrencyCode string
	// CurrencyRate tipo fijado manualmente; cero = usar la tabla de tipos.
	CurrencyRate decimal.Decimal

	Date        time.Time // fecha contable
	InvoiceDate time.Time
	SaleDate    time.Time // data sprzedaży / fecha del tipo de cambio
	VATDate     time.Time // fecha del registro VAT
	DateDue     time.Time

	// RefundInvoiceID apunta siempre a la factura raíz de la cadena de correcciones.
	RefundInvoiceID string
	// SelectedCorrectionID corrección que se corrige (vacío = corrección directa).
	SelectedCorrectionID string
	CorrectionReason     string

	IsDownPayment     bool
	AdvanceInvoiceIDs []string // anticipos liquidados por esta factura final

	SaleDocType     string // Typ Dokumentu
	PurchaseDocType string // Dokument Zakupu
	Flags           JPKFlags
	ChangeJPKProof  string // número de documento alternativo en la ewidencja

	AmountUntaxed decimal.Decimal
	AmountTax     decimal.Decimal
	AmountTotal   decimal.Decimal
	// Importes firmados en moneda de la empresa.
	AmountUntaxedSigned decimal.Decimal
	AmountTotalSigned   decimal.Decimal

	Lines []*InvoiceLine

	PostedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCorrection informa si el documento corrige otra factura.
func (i *Invoice) IsCorrection() bool {
	return i.MoveType.IsRefund() && i.RefundInvoiceID != ""
}

// ProductLines líneas visibles en la factura (sin líneas de impuesto).
func (i *Invoice) ProductLines() []*InvoiceLine {
	out := make([]*InvoiceLine, 0, len(i.Lines))
	for _, l := range i.Lines {
		if l.Kind == LineKindProduct {
			out = append(out, l)
		}
	}
	return out
}

// TaxLines líneas generadas por impuestos.
func (i *Invoice) TaxLines() []*InvoiceLine {
	out := make([]*InvoiceLine, 0)
	for _, l := range i.Lines {
		if l.Kind == LineKindTax {
			out = append(out, l)
		}
	}
	return out
}

// CorrectedLines líneas de producto marcadas como estado tras la corrección.
func (i *Invoice) CorrectedLines() []*InvoiceLine {
	out := make([]*InvoiceLine, 0)
	for _, l := range i.Lines {
		if l.Kind == LineKindProduct && l.Corrected {
			out = append(out, l)
		}
	}
	return out
}

// OriginalLines líneas de producto anteriores a la corrección (solo en correcciones).
func (i *Invoice) OriginalLines() []*InvoiceLine {
	if !i.IsCorrection() {
		return nil
	}
	out := make([]*InvoiceLine, 0)
	for _, l := range i.Lines {
		if l.Kind == LineKindProduct && !l.Corrected {
			out = append(out, l)
		}
	}
	return out
}
