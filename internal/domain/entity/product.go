package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o servicio facturable.
type Product struct {
	ID        string
	CompanyID string
	SKU       string // código único por empresa
	Name      string
	Price     decimal.Decimal // precio de venta neto
	TaxIDs    []string        // impuestos por defecto
	GTU       string          // código GTU por defecto para JPK_V7M
	CreatedAt time.Time
	UpdatedAt time.Time
}
