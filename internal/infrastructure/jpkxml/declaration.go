package jpkxml

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
)

// RenderDeclaration reconstruye el XML exportado con las posiciones actuales de la declaración.
// En una corrección se quitan Deklaracja y/o Ewidencja si su parte no está marcada.
func RenderDeclaration(source []byte, d *entity.Declaration) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(source); err != nil {
		return nil, fmt.Errorf("jpkxml: parsear XML de origen: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("jpkxml: documento sin raíz")
	}

	withDeklaracja := !d.IsCorrection() || d.CzescDeklaracyjna
	withEwidencja := !d.IsCorrection() || d.CzescEwidencyjna

	if withDeklaracja {
		deklaracje := childElements(root, "Deklaracja")
		if len(deklaracje) == 0 {
			return nil, fmt.Errorf("jpkxml: el XML de origen no tiene Deklaracja")
		}
		pozycje := rebuildPositions(deklaracje[0])
		for _, p := range jpk.Positions(d) {
			add(pozycje, p.Name, p.Value)
		}
	} else {
		for _, el := range childElements(root, "Deklaracja") {
			root.RemoveChild(el)
		}
	}

	if !withEwidencja {
		for _, el := range childElements(root, "Ewidencja") {
			root.RemoveChild(el)
		}
	}
	return serialize(doc)
}

// rebuildPositions vacía PozycjeSzczegolowe o la crea si falta.
func rebuildPositions(deklaracja *etree.Element) *etree.Element {
	existing := childElements(deklaracja, "PozycjeSzczegolowe")
	if len(existing) == 0 {
		return add(deklaracja, "PozycjeSzczegolowe", "")
	}
	p := existing[0]
	for _, t := range append([]etree.Token(nil), p.Child...) {
		p.RemoveChild(t)
	}
	return p
}
