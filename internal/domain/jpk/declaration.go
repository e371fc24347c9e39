package jpk

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
)

var (
	p37Fields      = []string{"p_10", "p_11", "p_13", "p_15", "p_17", "p_19", "p_21", "p_22", "p_23", "p_25", "p_27", "p_29", "p_31"}
	p38PlusFields  = []string{"p_16", "p_18", "p_20", "p_24", "p_26", "p_28", "p_30", "p_32", "p_33", "p_34"}
	p38MinusFields = []string{"p_35", "p_36"}
	p48Fields      = []string{"p_39", "p_41", "p_43", "p_44", "p_45", "p_46", "p_47"}
)

// IntFields posiciones enteras de la declaración, incluidas las calculadas.
var IntFields = func() []string {
	var out []string
	for i := 10; i <= 54; i++ {
		out = append(out, fmt.Sprintf("p_%d", i))
	}
	return append(out, "p_60", "p_62", "p_68", "p_69")
}()

// BoolFields posiciones lógicas de la declaración.
var BoolFields = []string{"p_59", "p_63", "p_64", "p_65", "p_66", "p_67", "p_540", "p_560", "p_660"}

// computedFields no se aceptan como entrada.
var computedFields = map[string]bool{"p_37": true, "p_38": true, "p_48": true, "p_51": true, "p_53": true, "p_62": true}

// IsInputField informa si la posición entera puede fijarse manualmente.
func IsInputField(name string) bool {
	return slices.Contains(IntFields, name) && !computedFields[name]
}

func sum(d *entity.Declaration, fields []string) int64 {
	var s int64
	for _, f := range fields {
		s += d.Int(f)
	}
	return s
}

// NewDeclaration crea la declaración de un JPK_V7M a partir de las sumas por posición de la
// ewidencja. Las posiciones desconocidas o calculadas se ignoran.
func NewDeclaration(version string, year, month, cel int, groups map[string]int64) *entity.Declaration {
	d := &entity.Declaration{
		Version:           version,
		Year:              year,
		Month:             month,
		CelZlozenia:       cel,
		CzescDeklaracyjna: true,
		CzescEwidencyjna:  true,
		Ints:              map[string]int64{},
		Bools:             map[string]bool{},
	}
	for k, v := range groups {
		if IsInputField(k) {
			d.Ints[k] = v
		}
	}
	Compute(d)
	return d
}

// Compute recalcula P_37, P_38, P_48, P_51, P_53 y P_62.
func Compute(d *entity.Declaration) {
	if d.Ints == nil {
		d.Ints = map[string]int64{}
	}
	d.Ints["p_37"] = sum(d, p37Fields)
	d.Ints["p_38"] = sum(d, p38PlusFields) - sum(d, p38MinusFields)
	d.Ints["p_48"] = sum(d, p48Fields)

	p38, p48, p49, p50, p52 := d.Int("p_38"), d.Int("p_48"), d.Int("p_49"), d.Int("p_50"), d.Int("p_52")
	var p51 int64
	if p38-p48 > 0 {
		p51 = p38 - p48 - p49 - p50
	}
	d.Ints["p_51"] = p51

	var p53 int64
	if d.Version == entity.V7MVersion10E {
		if p51 <= 0 && p48+p49+p50+p52-p38 >= 0 {
			p53 = p48 - p38 + p49 + p50 + p52
		}
	} else if p48-p38 >= 0 {
		p53 = p48 - p38 - p52
	}
	d.Ints["p_53"] = p53
	d.Ints["p_62"] = p53 - d.Int("p_54")
}

// Validate exige al menos una sección en las correcciones.
func Validate(d *entity.Declaration) error {
	if d.CelZlozenia == 2 && !d.CzescDeklaracyjna && !d.CzescEwidencyjna {
		return domain.ErrDeclarationSectionRequired
	}
	return nil
}

// Filename nombre del archivo exportado, sin extensión.
func Filename(d *entity.Declaration) string {
	name := fmt.Sprintf("v7m_%d_%d", d.Month, d.Year)
	if d.CelZlozenia > 1 {
		name += "_korekta"
	}
	return name
}

// Position elemento de PozycjeSzczegolowe.
type Position struct {
	Name  string
	Value string
}

// Positions devuelve las posiciones a emitir ordenadas por nombre. P_54 y P_55..P_58 se omiten
// si P_54 es cero; P_59..P_61 si P_59 no está marcado.
func Positions(d *entity.Declaration) []Position {
	p54Zero := d.Int("p_54") == 0
	p59 := d.Bool("p_59")
	skip := func(name string) bool {
		switch name {
		case "p_54", "p_55_58":
			return p54Zero
		case "p_59", "p_60", "p_61":
			return !p59
		}
		return false
	}

	var out []Position
	for _, f := range IntFields {
		if !skip(f) {
			out = append(out, Position{strings.ToUpper(f), strconv.FormatInt(d.Int(f), 10)})
		}
	}
	for _, f := range BoolFields {
		if !skip(f) && d.Bool(f) {
			out = append(out, Position{strings.ToUpper(f), "1"})
		}
	}
	if !skip("p_61") && d.P61 != "" {
		out = append(out, Position{"P_61", d.P61})
	}
	if d.POrdzu != "" {
		out = append(out, Position{"P_ORDZU", d.POrdzu})
	}
	if !skip("p_55_58") && d.P5558 != "" {
		out = append(out, Position{strings.ToUpper(d.P5558), "1"})
	}
	slices.SortFunc(out, func(a, b Position) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// ValidRefundOption informa si el valor de P_55..P_58 es admitido (vacío incluido).
func ValidRefundOption(v string) bool {
	switch v {
	case "", entity.RefundP55, entity.RefundP56, entity.RefundP57, entity.RefundP58:
		return true
	}
	return false
}
