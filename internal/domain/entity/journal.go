package entity

import (
	"fmt"
	"time"
)

// Tipos de diario.
const (
	JournalTypeSale     = "sale"
	JournalTypePurchase = "purchase"
	JournalTypeGeneral  = "general"
)

// Journal representa un diario contable con su numeración de documentos.
// Una empresa puede tener varios diarios; solo uno por defecto para cada tipo.
type Journal struct {
	ID         string
	CompanyID  string
	Code       string // ej: "FV", "FZ"
	Name       string
	Type       string // sale, purchase, general
	Prefix     string // prefijo de numeración (ej: "FV")
	NextNumber int64
	// Valores por defecto de Typ Dokumentu / Dokument Zakupu para los documentos del diario.
	SaleDocType     string
	PurchaseDocType string
	IsDefault       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FormatNumber construye el número de documento: PREFIX/AAAA/MM/NNNN.
func (j *Journal) FormatNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("%s/%04d/%02d/%04d", j.Prefix, date.Year(), int(date.Month()), seq)
}
