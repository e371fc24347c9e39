package entity

import "time"

// Versiones de esquema JPK_V7M soportadas.
const (
	V7MVersion12E = "1-2E"
	V7MVersion10E = "1-0E"
)

// Opciones de P_55_58 (forma de devolución).
const (
	RefundP55 = "P_55"
	RefundP56 = "P_56"
	RefundP57 = "P_57"
	RefundP58 = "P_58"
)

// Declaration parte declarativa VAT-7 de un JPK_V7M exportado.
// Ints y Bools se indexan por nombre de posición en minúsculas (p_10, p_59...).
type Declaration struct {
	ID                string
	CompanyID         string
	Version           string // 1-2E, 1-0E
	Year              int
	Month             int
	CelZlozenia       int // 1 = złożenie, 2 = korekta
	CzescDeklaracyjna bool
	CzescEwidencyjna  bool
	Ints              map[string]int64
	Bools             map[string]bool
	P5558             string // P_55..P_58
	P61               string
	POrdzu            string
	SourceXML         []byte
	ArchiveKey        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Int devuelve el valor entero de la posición o 0.
func (d *Declaration) Int(name string) int64 {
	if d.Ints == nil {
		return 0
	}
	return d.Ints[name]
}

// Bool devuelve el valor lógico de la posición o false.
func (d *Declaration) Bool(name string) bool {
	if d.Bools == nil {
		return false
	}
	return d.Bools[name]
}

// IsCorrection informa si el envío es una corrección.
func (d *Declaration) IsCorrection() bool {
	return d.CelZlozenia != 1
}
