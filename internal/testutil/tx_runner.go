package testutil

import (
	"context"

	"github.com/jhoicas/jpk-api/internal/domain/repository"
)

// TxRunner ejecuta el callback directamente sobre los stores en memoria (sin rollback).
type TxRunner struct {
	Invoices repository.InvoiceRepository
	Journals repository.JournalRepository
	// Calls número de transacciones abiertas.
	Calls int
}

func (r *TxRunner) RunInvoicing(_ context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	journalRepo repository.JournalRepository,
) error) error {
	r.Calls++
	return fn(r.Invoices, r.Journals)
}
