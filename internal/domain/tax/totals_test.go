package tax_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
)

func TestIVASaldo(t *testing.T) {
	iva := entity.IVATotals{
		DebitoFiscal: d("121000"), CreditoFiscal: d("50000"),
		Retenciones: d("1000"), Percepciones: d("2000"),
		SaldoAFavorAnterior: d("8000"),
	}
	assert.True(t, d("68000").Equal(tax.IVASaldo(iva)), "el saldo anterior no computable no resta")

	iva.SaldoAFavorDisponible = true
	assert.True(t, d("60000").Equal(tax.IVASaldo(iva)))
}

func TestComputeTotals_PorRegimen(t *testing.T) {
	pt := &entity.PeriodTotals{
		IVA:               entity.IVATotals{DebitoFiscal: d("121000"), CreditoFiscal: d("50000")},
		IIBB:              []entity.IIBBJurisdictionTotals{{Jurisdiction: "CABA", Impuesto: d("3000"), Retenciones: d("500")}},
		Monotributo:       entity.FlatContribution{Cuota: d("68900")},
		Autonomos:         entity.FlatContribution{Cuota: d("25000")},
		AgentRetenciones:  d("1200"),
		AgentPercepciones: d("300"),
	}

	ri := tax.ComputeTotals(entity.RegimeRI, pt, entity.ClosureSettings{})
	assert.True(t, d("71000").Equal(ri[entity.TaxTypeIVA]))
	assert.True(t, d("2500").Equal(ri[entity.TaxTypeIIBB]))
	assert.True(t, d("1200").Equal(ri[entity.TaxTypeRetDepositar]))
	assert.NotContains(t, ri, entity.TaxTypeAutonomos)
	assert.NotContains(t, ri, entity.TaxTypeMonotributo)

	ri = tax.ComputeTotals(entity.RegimeRI, pt, entity.ClosureSettings{AutonomosEnabled: true})
	assert.True(t, d("25000").Equal(ri[entity.TaxTypeAutonomos]))

	mt := tax.ComputeTotals(entity.RegimeMT, pt, entity.ClosureSettings{})
	assert.Len(t, mt, 2)
	assert.True(t, d("68900").Equal(mt[entity.TaxTypeMonotributo]))

	pt.IIBB = nil
	mt = tax.ComputeTotals(entity.RegimeMT, pt, entity.ClosureSettings{})
	assert.Len(t, mt, 1, "sin jurisdicciones informadas el monotributista no liquida IIBB")
}

func TestValidateOverride(t *testing.T) {
	cases := []struct {
		name string
		tax  entity.TaxType
		o    entity.TotalOverride
		ok   bool
	}{
		{"manual con importe", entity.TaxTypeIIBB, entity.TotalOverride{Mode: entity.OverrideModeManual, Amount: dp("10")}, true},
		{"IVA negativo", entity.TaxTypeIVA, entity.TotalOverride{Mode: entity.OverrideModeManual, Amount: dp("-10")}, true},
		{"computed sin importe", entity.TaxTypeIVA, entity.TotalOverride{Mode: entity.OverrideModeComputed}, true},
		{"manual sin importe", entity.TaxTypeIVA, entity.TotalOverride{Mode: entity.OverrideModeManual}, false},
		{"computed con importe", entity.TaxTypeIVA, entity.TotalOverride{Mode: entity.OverrideModeComputed, Amount: dp("1")}, false},
		{"IIBB negativo", entity.TaxTypeIIBB, entity.TotalOverride{Mode: entity.OverrideModeManual, Amount: dp("-1")}, false},
		{"modo desconocido", entity.TaxTypeIVA, entity.TotalOverride{Mode: "OTRO"}, false},
		{"impuesto desconocido", "GANANCIAS", entity.TotalOverride{Mode: entity.OverrideModeComputed}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tax.ValidateOverride(tc.tax, tc.o)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInvalidOverride), "got %v", err)
		})
	}
}

func TestObligationAmounts(t *testing.T) {
	pt := &entity.PeriodTotals{
		IIBB: []entity.IIBBJurisdictionTotals{
			{Jurisdiction: "CABA", Impuesto: d("3000")},
			{Jurisdiction: "BA", Impuesto: d("1000")},
		},
	}
	c := &entity.TaxClosePeriod{
		Regime:            entity.RegimeRI,
		Totals:            entity.ClosureTotals{entity.TaxTypeIVA: d("-30000"), entity.TaxTypeIIBB: d("4000")},
		IIBBJurisdictions: tax.IIBBBreakdown(pt),
		Overrides: map[entity.TaxType]entity.TotalOverride{
			entity.TaxTypeIIBB: {Mode: entity.OverrideModeManual, Amount: dp("3500")},
		},
		Corrections: []entity.ManualCorrection{
			{TaxType: entity.TaxTypeIIBB, Jurisdiction: "ba", Amount: d("200")},
			{TaxType: entity.TaxTypeMonotributo, Amount: d("999")},
		},
	}

	got := map[string]string{}
	for _, a := range tax.ObligationAmounts(c) {
		got[tax.ObligationKey(a.TaxType, "2024-05", a.Jurisdiction)] = a.Amount.String()
	}
	require.Contains(t, got, "IVA|2024-05|GENERAL")
	assert.Equal(t, "0", got["IVA|2024-05|GENERAL"], "el saldo a favor no genera obligación a pagar")
	assert.Equal(t, "2500", got["IIBB|2024-05|CABA"], "la diferencia del ajuste va a la primera jurisdicción")
	assert.Equal(t, "1200", got["IIBB|2024-05|BA"])
	assert.NotContains(t, got, "MONOTRIBUTO|2024-05|GENERAL", "corrección de un impuesto ajeno al régimen")
}

func TestClosureTaxTypes_MonotributoConIIBBSoloSiHuboApertura(t *testing.T) {
	c := &entity.TaxClosePeriod{Regime: entity.RegimeMT}
	assert.Equal(t, []entity.TaxType{entity.TaxTypeMonotributo}, tax.ClosureTaxTypes(c))

	c.IIBBJurisdictions = []entity.JurisdictionTotal{{Jurisdiction: "CABA", Amount: d("1500")}}
	assert.Equal(t, []entity.TaxType{entity.TaxTypeMonotributo, entity.TaxTypeIIBB}, tax.ClosureTaxTypes(c))
}
