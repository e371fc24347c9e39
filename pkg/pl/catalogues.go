// Package pl contiene catálogos y validaciones fiscales de Polonia usados por JPK.
package pl

// =============================================================================
// Grupos de mercancías GTU (JPK_V7M, oznaczenia dotyczące dostawy towarów)
// =============================================================================

// GTUCodes códigos GTU con su descripción corta.
var GTUCodes = []struct {
	Code        string
	Description string
}{
	{"GTU_01", "Napoje alkoholowe"},
	{"GTU_02", "Towary, o których mowa w art. 103 ust. 5aa ustawy"},
	{"GTU_03", "Oleje opałowe i smarowe"},
	{"GTU_04", "Wyroby tytoniowe"},
	{"GTU_05", "Odpady"},
	{"GTU_06", "Urządzenia elektroniczne"},
	{"GTU_07", "Pojazdy i części samochodowe"},
	{"GTU_08", "Metale szlachetne i nieszlachetne"},
	{"GTU_09", "Leki oraz wyroby medyczne"},
	{"GTU_10", "Budynki, budowle i grunty"},
	{"GTU_11", "Obrót uprawnieniami do emisji gazów cieplarnianych"},
	{"GTU_12", "Usługi niematerialne"},
	{"GTU_13", "Usługi transportowe i gospodarki magazynowej"},
}

// =============================================================================
// Tipos de documento JPK precargados
// =============================================================================

// DocumentTypes tipos de archivo JPK soportados por los generadores.
var DocumentTypes = []struct {
	Name          string
	SystemCode    string
	SchemaVersion string
	Description   string
}{
	{"JPK_VAT", "JPK_VAT (3)", "1-1", "Ewidencja VAT (JPK_VAT wariant 3)"},
	{"JPK_V7M_1_2E", "JPK_V7M (1)", "1-2E", "Deklaracja i ewidencja VAT (JPK_V7M wariant 1)"},
	{"JPK_V7M_1_0E", "JPK_V7M (2)", "1-0E", "Deklaracja i ewidencja VAT (JPK_V7M wariant 2)"},
}

// =============================================================================
// Oznaczenia dowodów sprzedaży / zakupu
// =============================================================================

// SaleDocTypes Typ Dokumentu para ventas.
var SaleDocTypes = map[string]string{
	"RO":  "dokument zbiorczy wewnętrzny zawierający sprzedaż z kas rejestrujących",
	"FP":  "faktura do paragonu, o której mowa w art. 109 ust. 3d ustawy",
	"WEW": "dokument wewnętrzny",
}

// PurchaseDocTypes Dokument Zakupu para compras.
var PurchaseDocTypes = map[string]string{
	"MK":     "metoda kasowa",
	"VAT_RR": "faktury VAT RR, o której mowa w art. 116 ustawy",
	"WEW":    "dokument wewnętrzny",
}
