package entity

import "time"

// Tipos de documento JPK.
const (
	JPKTypeCyclic = "JPK"   // envío periódico
	JPKTypeAdHoc  = "JPKAH" // envío durante inspección
)

// Nombres de los tipos de documento usados por los generadores.
const (
	DocTypeJPKVAT    = "JPK_VAT"
	DocTypeJPKV7M12E = "JPK_V7M_1_2E"
	DocTypeJPKV7M10E = "JPK_V7M_1_0E"
)

// Secciones de la ewidencja.
const (
	SectionSale     = "SprzedazWiersz"
	SectionPurchase = "ZakupWiersz"
)

// DocumentType representa un tipo de archivo JPK (nombre único; código + versión únicos).
type DocumentType struct {
	ID            string
	Name          string
	Active        bool
	JPKType       string // JPK, JPKAH
	SystemCode    string // ej: "JPK_V7M (2)"
	SchemaVersion string // ej: "1-0E"
	Description   string
	CreatedAt     time.Time
}

// GTU código de grupo de mercancías (GTU_01..GTU_13).
type GTU struct {
	ID          string
	Name        string
	Description string
}

// TaxOffice urząd skarbowy (código TKodUS).
type TaxOffice struct {
	ID   string
	Code string
	Name string
}

// AccountTag etiqueta contable aplicada a las líneas.
type AccountTag struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
}

// JPKAccountTag mapea una etiqueta contable a un campo del JPK.
type JPKAccountTag struct {
	ID             string
	AccountTagID   string
	DocumentTypeID string
	Markup         string // elemento K_xx
	Section        string // SprzedazWiersz, ZakupWiersz
	V7Group        string // pozycja P_xx de la declaración
}

// Nombres de los flags de procedimiento JPK.
const (
	FlagSW                   = "SW"
	FlagEE                   = "EE"
	FlagTP                   = "TP"
	FlagTTWNT                = "TT_WNT"
	FlagTTD                  = "TT_D"
	FlagMRT                  = "MR_T"
	FlagMRUZ                 = "MR_UZ"
	FlagI42                  = "I_42"
	FlagI63                  = "I_63"
	FlagBSPV                 = "B_SPV"
	FlagBSPVDostawa          = "B_SPV_DOSTAWA"
	FlagBMPVProwizja         = "B_MPV_PROWIZJA"
	FlagMPP                  = "MPP"
	FlagKorektaPodstawyOpodt = "KorektaPodstawyOpodt"
	FlagIMP                  = "IMP"
	FlagWSTOEE               = "WSTO_EE"
	FlagIED                  = "IED"
)

// JPKFlags oznaczenia procedur del documento.
type JPKFlags struct {
	MPP                  bool `json:"mpp"`
	SW                   bool `json:"sw"`
	EE                   bool `json:"ee"`
	TP                   bool `json:"tp"`
	TTWNT                bool `json:"tt_wnt"`
	TTD                  bool `json:"tt_d"`
	MRT                  bool `json:"mr_t"`
	MRUZ                 bool `json:"mr_uz"`
	I42                  bool `json:"i_42"`
	I63                  bool `json:"i_63"`
	BSPV                 bool `json:"b_spv"`
	BSPVDostawa          bool `json:"b_spv_dostawa"`
	BMPVProwizja         bool `json:"b_mpv_prowizja"`
	KorektaPodstawyOpodt bool `json:"korekta_podstawy_opodt"`
	ReverseCharge        bool `json:"reverse_charge"`
	WSTOEE               bool `json:"wsto_ee"`
	IED                  bool `json:"ied"`
	IMP                  bool `json:"imp"`
}

// Names devuelve los flags activos con su nombre JPK. ReverseCharge no tiene elemento propio.
func (f JPKFlags) Names() []string {
	pairs := []struct {
		on   bool
		name string
	}{
		{f.SW, FlagSW}, {f.EE, FlagEE}, {f.TP, FlagTP}, {f.TTWNT, FlagTTWNT}, {f.TTD, FlagTTD},
		{f.MRT, FlagMRT}, {f.MRUZ, FlagMRUZ}, {f.I42, FlagI42}, {f.I63, FlagI63}, {f.BSPV, FlagBSPV},
		{f.BSPVDostawa, FlagBSPVDostawa}, {f.BMPVProwizja, FlagBMPVProwizja},
		{f.KorektaPodstawyOpodt, FlagKorektaPodstawyOpodt}, {f.MPP, FlagMPP}, {f.IMP, FlagIMP},
		{f.WSTOEE, FlagWSTOEE}, {f.IED, FlagIED},
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.on {
			out = append(out, p.name)
		}
	}
	return out
}
