package invoicing

import (
	"context"

	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de facturas y diarios.
// Se usa al contabilizar (numeración) y al crear correcciones (unicidad de la cadena).
type TxRunner interface {
	RunInvoicing(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		journalRepo repository.JournalRepository,
	) error) error
}
