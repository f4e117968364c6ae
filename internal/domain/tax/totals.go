package tax

import (
	"fmt"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// IVASaldo posición de IVA: débito - crédito - retenciones - percepciones - saldo anterior
// (si es computable). Negativo = saldo a favor.
func IVASaldo(t entity.IVATotals) decimal.Decimal {
	s := t.DebitoFiscal.Sub(t.CreditoFiscal).Sub(t.Retenciones).Sub(t.Percepciones)
	if t.SaldoAFavorDisponible {
		s = s.Sub(t.SaldoAFavorAnterior)
	}
	return s
}

// IIBBSaldo impuesto determinado de la jurisdicción menos retenciones y percepciones sufridas.
func IIBBSaldo(j entity.IIBBJurisdictionTotals) decimal.Decimal {
	return j.Impuesto.Sub(j.Retenciones).Sub(j.Percepciones)
}

// ApplicableTaxTypes impuestos que corresponden al régimen.
// RI: IVA, IIBB, autónomos si está habilitado y los regímenes de agente.
// MT: Monotributo e IIBB sólo si el proveedor informó jurisdicciones.
func ApplicableTaxTypes(regime entity.Regime, pt *entity.PeriodTotals, settings entity.ClosureSettings) []entity.TaxType {
	switch regime {
	case entity.RegimeMT:
		out := []entity.TaxType{entity.TaxTypeMonotributo}
		if pt != nil && len(pt.IIBB) > 0 {
			out = append(out, entity.TaxTypeIIBB)
		}
		return out
	default:
		out := []entity.TaxType{entity.TaxTypeIVA, entity.TaxTypeIIBB}
		if settings.AutonomosEnabled {
			out = append(out, entity.TaxTypeAutonomos)
		}
		return append(out, entity.TaxTypeRetDepositar, entity.TaxTypePerDepositar)
	}
}

// ComputeTotals totales calculados por impuesto para el régimen.
func ComputeTotals(regime entity.Regime, pt *entity.PeriodTotals, settings entity.ClosureSettings) entity.ClosureTotals {
	out := entity.ClosureTotals{}
	if pt == nil {
		return out
	}
	for _, t := range ApplicableTaxTypes(regime, pt, settings) {
		switch t {
		case entity.TaxTypeIVA:
			out[t] = IVASaldo(pt.IVA)
		case entity.TaxTypeIIBB:
			out[t] = lo.Reduce(pt.IIBB, func(acc decimal.Decimal, j entity.IIBBJurisdictionTotals, _ int) decimal.Decimal {
				return acc.Add(IIBBSaldo(j))
			}, decimal.Zero)
		case entity.TaxTypeMonotributo:
			out[t] = pt.Monotributo.Cuota
		case entity.TaxTypeAutonomos:
			out[t] = pt.Autonomos.Cuota
		case entity.TaxTypeRetDepositar:
			out[t] = pt.AgentRetenciones
		case entity.TaxTypePerDepositar:
			out[t] = pt.AgentPercepciones
		}
	}
	return out
}

// ValidateOverride reglas del ajuste manual: MANUAL exige importe, COMPUTED no lo admite y
// sólo IVA puede ser negativo (saldo a favor).
func ValidateOverride(taxType entity.TaxType, o entity.TotalOverride) error {
	if !taxType.IsValid() {
		return fmt.Errorf("%w: impuesto %q", domain.ErrInvalidOverride, taxType)
	}
	switch o.Mode {
	case entity.OverrideModeComputed:
		if o.Amount != nil {
			return fmt.Errorf("%w: %s en modo COMPUTED no lleva importe", domain.ErrInvalidOverride, taxType)
		}
	case entity.OverrideModeManual:
		if o.Amount == nil {
			return fmt.Errorf("%w: %s en modo MANUAL requiere importe", domain.ErrInvalidOverride, taxType)
		}
		if o.Amount.IsNegative() && taxType != entity.TaxTypeIVA {
			return fmt.Errorf("%w: %s no admite importes negativos", domain.ErrInvalidOverride, taxType)
		}
	default:
		return fmt.Errorf("%w: modo %q", domain.ErrInvalidOverride, o.Mode)
	}
	return nil
}

// ManualAmount importe manual vigente para el impuesto, si lo hay.
func ManualAmount(overrides map[entity.TaxType]entity.TotalOverride, taxType entity.TaxType) (decimal.Decimal, bool) {
	o, ok := overrides[taxType]
	if !ok || o.Mode != entity.OverrideModeManual || o.Amount == nil {
		return decimal.Zero, false
	}
	return *o.Amount, true
}

// EffectiveTotals totales calculados con los ajustes manuales aplicados.
func EffectiveTotals(computed entity.ClosureTotals, overrides map[entity.TaxType]entity.TotalOverride) entity.ClosureTotals {
	out := computed.Clone()
	if out == nil {
		out = entity.ClosureTotals{}
	}
	for t := range overrides {
		if v, ok := ManualAmount(overrides, t); ok {
			out[t] = v
		}
	}
	return out
}

// IIBBBreakdown saldo de IIBB por jurisdicción, en el orden informado por el proveedor.
func IIBBBreakdown(pt *entity.PeriodTotals) []entity.JurisdictionTotal {
	if pt == nil {
		return nil
	}
	return lo.Map(pt.IIBB, func(j entity.IIBBJurisdictionTotals, _ int) entity.JurisdictionTotal {
		return entity.JurisdictionTotal{Jurisdiction: NormalizeJurisdiction(j.Jurisdiction), Amount: IIBBSaldo(j)}
	})
}

// ClosureTaxTypes impuestos del cierre según lo capturado en el último refresco.
func ClosureTaxTypes(c *entity.TaxClosePeriod) []entity.TaxType {
	if c.Regime == entity.RegimeMT {
		out := []entity.TaxType{entity.TaxTypeMonotributo}
		if len(c.IIBBJurisdictions) > 0 {
			out = append(out, entity.TaxTypeIIBB)
		}
		return out
	}
	return ApplicableTaxTypes(c.Regime, nil, c.Settings)
}

// ObligationAmount importe adeudado por impuesto y jurisdicción.
type ObligationAmount struct {
	TaxType      entity.TaxType
	Jurisdiction string
	Amount       decimal.Decimal
}

// ObligationAmounts importes a registrar como obligaciones del período, tomados del cierre
// (totales, apertura de IIBB, ajustes y correcciones). Los saldos a favor quedan en cero (el
// cobro se concilia aparte). Un ajuste manual de IIBB con varias jurisdicciones imputa la
// diferencia a la primera informada. Las correcciones manuales se suman con signo a la
// obligación de su impuesto y jurisdicción.
func ObligationAmounts(c *entity.TaxClosePeriod) []ObligationAmount {
	var out []ObligationAmount
	applicable := ClosureTaxTypes(c)
	for _, t := range applicable {
		switch t {
		case entity.TaxTypeIIBB:
			out = append(out, iibbAmounts(c)...)
		default:
			v := c.Totals[t]
			if m, ok := ManualAmount(c.Overrides, t); ok {
				v = m
			}
			out = append(out, ObligationAmount{TaxType: t, Jurisdiction: afip.JurisdictionGeneral, Amount: v})
		}
	}
	for _, corr := range c.Corrections {
		if !lo.Contains(applicable, corr.TaxType) {
			continue
		}
		j := corr.Jurisdiction
		if j == "" {
			j = afip.JurisdictionGeneral
			if corr.TaxType == entity.TaxTypeIIBB && len(c.IIBBJurisdictions) > 0 {
				j = c.IIBBJurisdictions[0].Jurisdiction
			}
		}
		j = NormalizeJurisdiction(j)
		_, idx, found := lo.FindIndexOf(out, func(a ObligationAmount) bool {
			return a.TaxType == corr.TaxType && a.Jurisdiction == j
		})
		if found {
			out[idx].Amount = out[idx].Amount.Add(corr.Amount)
			continue
		}
		out = append(out, ObligationAmount{TaxType: corr.TaxType, Jurisdiction: j, Amount: corr.Amount})
	}
	for i := range out {
		if out[i].Amount.IsNegative() {
			out[i].Amount = decimal.Zero
		}
	}
	return out
}

func iibbAmounts(c *entity.TaxClosePeriod) []ObligationAmount {
	out := make([]ObligationAmount, 0, len(c.IIBBJurisdictions))
	computed := decimal.Zero
	for _, j := range c.IIBBJurisdictions {
		computed = computed.Add(j.Amount)
		out = append(out, ObligationAmount{
			TaxType: entity.TaxTypeIIBB, Jurisdiction: NormalizeJurisdiction(j.Jurisdiction), Amount: j.Amount,
		})
	}
	m, ok := ManualAmount(c.Overrides, entity.TaxTypeIIBB)
	if !ok {
		return out
	}
	if len(out) == 0 {
		return []ObligationAmount{{TaxType: entity.TaxTypeIIBB, Jurisdiction: NormalizeJurisdiction(""), Amount: m}}
	}
	out[0].Amount = out[0].Amount.Add(m.Sub(computed))
	return out
}
