package entity

import (
	"strings"
	"time"
	"unicode"
)

// europeCountries países que el registro JPK trata como Europa para KodKrajuNadaniaTIN.
var europeCountries = map[string]struct{}{
	"AD": {}, "AL": {}, "AT": {}, "BA": {}, "BE": {}, "BG": {}, "BY": {}, "CH": {}, "CY": {}, "CZ": {},
	"DE": {}, "DK": {}, "EE": {}, "ES": {}, "FI": {}, "FO": {}, "FR": {}, "GB": {}, "GG": {}, "GI": {},
	"GR": {}, "HR": {}, "HU": {}, "IE": {}, "IM": {}, "IS": {}, "IT": {}, "JE": {}, "LI": {}, "LT": {},
	"LU": {}, "LV": {}, "MC": {}, "MD": {}, "ME": {}, "MK": {}, "MT": {}, "NL": {}, "NO": {}, "PL": {},
	"PT": {}, "RO": {}, "RS": {}, "RU": {}, "SE": {}, "SI": {}, "SJ": {}, "SK": {}, "SM": {}, "UA": {},
	"VA": {}, "XK": {},
}

// Partner representa un contratista (cliente o proveedor) de la empresa.
type Partner struct {
	ID          string
	CompanyID   string
	Name        string
	VAT         string // NIP o VAT UE con prefijo de país
	Street      string
	Street2     string
	City        string
	Zip         string
	CountryCode string
	Email       string
	Lang        string
	// TP vínculos entre comprador y vendedor (art. 32 ust. 2 pkt 1).
	TP        bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InEurope informa si el país del contratista pertenece al grupo Europa.
func (p *Partner) InEurope() bool {
	_, ok := europeCountries[strings.ToUpper(p.CountryCode)]
	return ok
}

// TINCountry devuelve el código de país del NIP para KodKrajuNadaniaTIN,
// o cadena vacía si el contratista no es europeo o su VAT no lleva prefijo.
func (p *Partner) TINCountry() string {
	if p == nil || p.VAT == "" || !p.InEurope() {
		return ""
	}
	runes := []rune(p.VAT)
	if len(runes) < 2 {
		return ""
	}
	for _, r := range runes[:2] {
		if !unicode.IsLetter(r) {
			return ""
		}
	}
	return string(runes[:2])
}

// Address devuelve "calle, código, ciudad" omitiendo las partes vacías.
func (p *Partner) Address() string {
	var b strings.Builder
	if p.Street != "" {
		b.WriteString(p.Street + ", ")
	}
	if p.Zip != "" {
		b.WriteString(p.Zip + ", ")
	}
	b.WriteString(p.City)
	return b.String()
}
