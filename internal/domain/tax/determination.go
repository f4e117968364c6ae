package tax

import (
	"fmt"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/shopspring/decimal"
)

// Leg renglón de determinación expresado por rol, antes de resolver la cuenta.
type Leg struct {
	Role        string
	Debit       bool
	Amount      decimal.Decimal
	Description string
	balancing   bool // contrapartida del saldo; se reemplaza con un ajuste manual
}

// DeterminationLegs renglones por rol del asiento de determinación del impuesto.
// Los impuestos de agente (retenciones/percepciones a depositar) no llevan determinación.
func DeterminationLegs(taxType entity.TaxType, pt *entity.PeriodTotals) ([]Leg, error) {
	if pt == nil {
		pt = &entity.PeriodTotals{}
	}
	var legs []Leg
	switch taxType {
	case entity.TaxTypeIVA:
		iva := pt.IVA
		legs = append(legs,
			Leg{Role: afip.RoleIVADebitoFiscal, Debit: true, Amount: iva.DebitoFiscal, Description: "IVA débito fiscal"},
			Leg{Role: afip.RoleIVACreditoFiscal, Amount: iva.CreditoFiscal, Description: "IVA crédito fiscal"},
			Leg{Role: afip.RoleIVARetenciones, Amount: iva.Retenciones, Description: "Retenciones de IVA sufridas"},
			Leg{Role: afip.RoleIVAPercepciones, Amount: iva.Percepciones, Description: "Percepciones de IVA sufridas"},
		)
		if iva.SaldoAFavorDisponible {
			legs = append(legs, Leg{Role: afip.RoleIVASaldoAFavor, Amount: iva.SaldoAFavorAnterior, Description: "Saldo a favor anterior"})
		}
		legs = append(legs, balancingLeg(IVASaldo(iva), afip.RoleIVAAPagar, afip.RoleIVASaldoAFavor, "Posición IVA"))
	case entity.TaxTypeIIBB:
		for _, j := range pt.IIBB {
			name := "IIBB " + NormalizeJurisdiction(j.Jurisdiction)
			legs = append(legs,
				Leg{Role: afip.RoleIIBBGasto, Debit: true, Amount: j.Impuesto, Description: name},
				Leg{Role: afip.RoleIIBBRetenciones, Amount: j.Retenciones.Add(j.Percepciones), Description: name + " retenciones y percepciones"},
				balancingLeg(IIBBSaldo(j), afip.RoleIIBBAPagar, afip.RoleIIBBSaldoAFavor, name),
			)
		}
	case entity.TaxTypeMonotributo:
		legs = flatLegs(pt.Monotributo, afip.RoleMonotributoGasto, afip.RoleMonotributoAPagar, "Monotributo")
	case entity.TaxTypeAutonomos:
		legs = flatLegs(pt.Autonomos, afip.RoleAutonomosGasto, afip.RoleAutonomosAPagar, "Aportes autónomos")
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrDeterminationNotApplicable, taxType)
	}
	return legs, nil
}

func flatLegs(c entity.FlatContribution, expenseRole, payableRole, desc string) []Leg {
	if c.Categoria != "" {
		desc += " cat. " + c.Categoria
	}
	return []Leg{
		{Role: expenseRole, Debit: true, Amount: c.Cuota, Description: desc},
		{Role: payableRole, Amount: c.Cuota, Description: desc, balancing: true},
	}
}

// balancingLeg saldo positivo al pasivo (haber), negativo al activo saldo a favor (debe).
func balancingLeg(saldo decimal.Decimal, payableRole, receivableRole, desc string) Leg {
	if saldo.IsNegative() {
		return Leg{Role: receivableRole, Debit: true, Amount: saldo.Neg(), Description: desc + " saldo a favor", balancing: true}
	}
	return Leg{Role: payableRole, Amount: saldo, Description: desc + " a pagar", balancing: true}
}

// ApplyManualAmount reemplaza las contrapartidas por una sola por el importe manual y lleva la
// diferencia con el saldo calculado a la cuenta de ajustes.
func ApplyManualAmount(taxType entity.TaxType, legs []Leg, manual decimal.Decimal) []Leg {
	payableRole, receivableRole := afip.RoleIVAAPagar, afip.RoleIVASaldoAFavor
	switch taxType {
	case entity.TaxTypeIIBB:
		payableRole, receivableRole = afip.RoleIIBBAPagar, afip.RoleIIBBSaldoAFavor
	case entity.TaxTypeMonotributo:
		payableRole, receivableRole = afip.RoleMonotributoAPagar, ""
	case entity.TaxTypeAutonomos:
		payableRole, receivableRole = afip.RoleAutonomosAPagar, ""
	}
	computed := decimal.Zero
	out := make([]Leg, 0, len(legs)+2)
	for _, l := range legs {
		if !l.balancing {
			out = append(out, l)
			continue
		}
		if l.Debit {
			computed = computed.Sub(l.Amount)
		} else {
			computed = computed.Add(l.Amount)
		}
	}
	label := taxType.Label()
	if manual.IsNegative() && receivableRole != "" {
		out = append(out, Leg{Role: receivableRole, Debit: true, Amount: manual.Neg(), Description: label + " saldo a favor (ajustado)", balancing: true})
	} else {
		out = append(out, Leg{Role: payableRole, Amount: manual, Description: label + " a pagar (ajustado)", balancing: true})
	}
	diff := computed.Sub(manual)
	switch {
	case diff.IsPositive():
		out = append(out, Leg{Role: afip.RoleAjusteImpuestos, Amount: diff, Description: "Ajuste " + label})
	case diff.IsNegative():
		out = append(out, Leg{Role: afip.RoleAjusteImpuestos, Debit: true, Amount: diff.Neg(), Description: "Ajuste " + label})
	}
	return out
}

// BuildDeterminationLines arma el asiento de determinación del impuesto: omite renglones en
// cero, resuelve las cuentas de los roles usados y valida el balance.
func (p Policy) BuildDeterminationLines(
	r *AccountResolver,
	taxType entity.TaxType,
	pt *entity.PeriodTotals,
	overrides map[entity.TaxType]entity.TotalOverride,
	accountOverrides map[string]string,
) ([]entity.EntryLine, error) {
	legs, err := DeterminationLegs(taxType, pt)
	if err != nil {
		return nil, err
	}
	if manual, ok := ManualAmount(overrides, taxType); ok {
		legs = ApplyManualAmount(taxType, legs, manual)
	}
	lines := make([]entity.EntryLine, 0, len(legs))
	for _, l := range legs {
		if p.ApproxZero(l.Amount) {
			continue
		}
		accountID, err := r.MustResolve(l.Role, accountOverrides[l.Role])
		if err != nil {
			return nil, err
		}
		lines = append(lines, line(accountID, l.Amount, l.Debit, l.Description))
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNothingToDetermine, taxType)
	}
	if err := p.ValidateBalanced(lines); err != nil {
		return nil, err
	}
	return lines, nil
}
