package jpk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/jpk-api/internal/domain"
	"github.com/jhoicas/jpk-api/internal/domain/entity"
	"github.com/jhoicas/jpk-api/internal/domain/jpk"
)

func TestSchemaFor(t *testing.T) {
	v1, err := jpk.SchemaFor(entity.V7MVersion12E)
	require.NoError(t, err)
	assert.Equal(t, "JPK_V7M (1)", v1.SystemCode)
	assert.Equal(t, jpk.NamespaceETD, v1.ETDNamespace)
	assert.False(t, v1.RequireEmail)

	v2, err := jpk.SchemaFor(entity.V7MVersion10E)
	require.NoError(t, err)
	assert.Equal(t, "VAT-7 (22)", v2.DeclSystemCode)
	assert.Empty(t, v2.ETDNamespace)
	assert.True(t, v2.RequireEmail)

	_, err = jpk.SchemaFor("9-9")
	assert.ErrorIs(t, err, domain.ErrUnsupportedSchema)
}

func TestRowFlags_RestriccionesPorSeccion(t *testing.T) {
	flags := entity.JPKFlags{TP: true, KorektaPodstawyOpodt: true, IMP: true, SW: true, WSTOEE: true}
	v1, _ := jpk.SchemaFor(entity.V7MVersion12E)
	v2, _ := jpk.SchemaFor(entity.V7MVersion10E)

	assert.Equal(t, []string{"SW", "TP"}, v1.Ordered(v1.RowFlags(flags, entity.SectionSale)))
	assert.Equal(t, []string{"SW", "KorektaPodstawyOpodt", "IMP"}, v1.Ordered(v1.RowFlags(flags, entity.SectionPurchase)))

	assert.Equal(t, []string{"TP", "KorektaPodstawyOpodt", "WSTO_EE"}, v2.Ordered(v2.RowFlags(flags, entity.SectionSale)),
		"1-0E no conoce SW y Korekta solo va en ventas")
	assert.Equal(t, []string{"IMP", "WSTO_EE"}, v2.Ordered(v2.RowFlags(flags, entity.SectionPurchase)))
}

func TestBuildLedger(t *testing.T) {
	a := saleEntry("a", "K_19", false, "-100.40")
	a.V7Group = "P_19"
	a.GTU = "GTU_12"
	a.Flags = entity.JPKFlags{TP: true}
	tax := saleEntry("a", "K_20", true, "-23.09")
	tax.V7Group = "P_20"
	b := saleEntry("b", "K_19", false, "-0.20")
	b.V7Group = "P_19"
	p := purchaseEntry("c", "K_42", false, "50")
	p.V7Group = "p_42"
	ptax := purchaseEntry("c", "K_43", true, "11.50")
	ptax.V7Group = "P_43"

	sections := jpk.GroupV7M(jpk.AggregateV7M([]jpk.Entry{a, tax, b, p, ptax}))
	schema, _ := jpk.SchemaFor(entity.V7MVersion10E)
	partners := map[string]*entity.Partner{"c1": {VAT: "DE123456789", CountryCode: "DE"}}

	l := jpk.BuildLedger(sections, schema, partners)

	require.Len(t, l.Sale.Rows, 2)
	first := l.Sale.Rows[0]
	assert.Equal(t, []string{"GTU_12", "TP"}, first.Flags)
	assert.True(t, first.HasFlag("TP"))
	assert.Equal(t, "DE", first.TINCountry)
	require.Len(t, first.Amounts, 2)
	assert.Equal(t, "K_19", first.Amounts[0].Markup)
	assert.Equal(t, "100.40", first.Amounts[0].Amount.StringFixed(2))
	assert.Equal(t, "23.09", l.Sale.TaxTotal.StringFixed(2))

	require.Len(t, l.Purchase.Rows, 1)
	assert.Empty(t, l.Purchase.Rows[0].TINCountry)
	assert.Equal(t, "11.50", l.Purchase.TaxTotal.StringFixed(2))

	assert.Equal(t, int64(101), l.Groups["p_19"], "100.40 + 0.20 redondeado")
	assert.Equal(t, int64(23), l.Groups["p_20"])
	assert.Equal(t, int64(50), l.Groups["p_42"])
	assert.Equal(t, int64(12), l.Groups["p_43"], "11.50 redondea hacia arriba")
}

func TestBuildLedger_ImportesRepetidosSeDeduplican(t *testing.T) {
	x := saleEntry("a", "K_19", false, "-10")
	x.V7Group = "P_19"
	y := x
	y.V7Group = "P_21"

	sections := jpk.GroupV7M(jpk.AggregateV7M([]jpk.Entry{x, y}))
	schema, _ := jpk.SchemaFor(entity.V7MVersion12E)

	l := jpk.BuildLedger(sections, schema, nil)

	require.Len(t, l.Sale.Rows, 1)
	assert.Len(t, l.Sale.Rows[0].Amounts, 1, "mismo marcador e importe se emite una vez")
	assert.Equal(t, int64(10), l.Groups["p_19"])
	assert.Equal(t, int64(10), l.Groups["p_21"])
}
