package reporting

import "context"

// Document archivo JPK generado listo para archivar.
type Document struct {
	CompanyID string
	Kind      string // vat, v7m
	Year      int
	Month     int
	Filename  string // sin extensión
	Content   []byte
	Digest    string // SHA-256 de la forma canónica
}

// Archiver guarda una copia de los JPK exportados y devuelve la clave del objeto.
type Archiver interface {
	Archive(ctx context.Context, doc Document) (string, error)
}
