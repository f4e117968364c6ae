// Package tax contiene el motor puro de obligaciones impositivas: resolución de cuentas,
// armado y validación de asientos, claves de conciliación, conciliación de pagos contra
// obligaciones y la máquina de estados del cierre de período. No hace I/O.
package tax

import (
	"fmt"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultEpsilon tolerancia de redondeo en unidades de moneda.
var DefaultEpsilon = decimal.New(1, -2)

// Policy agrupa la tolerancia usada en todas las comparaciones de importes.
type Policy struct {
	Epsilon decimal.Decimal
}

// DefaultPolicy política con tolerancia de 0.01.
func DefaultPolicy() Policy { return Policy{Epsilon: DefaultEpsilon} }

// NewPolicy construye la política; una tolerancia no positiva usa la por defecto.
func NewPolicy(epsilon decimal.Decimal) Policy {
	if !epsilon.IsPositive() {
		return DefaultPolicy()
	}
	return Policy{Epsilon: epsilon}
}

// ApproxZero indica |v| < epsilon.
func (p Policy) ApproxZero(v decimal.Decimal) bool {
	return v.Abs().LessThan(p.Epsilon)
}

// ApproxEqual indica |a-b| < epsilon.
func (p Policy) ApproxEqual(a, b decimal.Decimal) bool {
	return p.ApproxZero(a.Sub(b))
}

// ValidateBalanced verifica debe == haber dentro de la tolerancia, sin importes negativos
// y con a lo sumo un lado distinto de cero por renglón.
func (p Policy) ValidateBalanced(lines []entity.EntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: el asiento necesita al menos dos renglones", domain.ErrUnbalancedEntry)
	}
	var debit, credit decimal.Decimal
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: renglón %d con importe negativo", domain.ErrUnbalancedEntry, i+1)
		}
		if !l.Debit.IsZero() && !l.Credit.IsZero() {
			return fmt.Errorf("%w: renglón %d con debe y haber", domain.ErrUnbalancedEntry, i+1)
		}
		if l.AccountID == "" {
			return fmt.Errorf("%w: renglón %d sin cuenta", domain.ErrUnbalancedEntry, i+1)
		}
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	if !p.ApproxEqual(debit, credit) {
		return fmt.Errorf("%w: debe %s, haber %s", domain.ErrUnbalancedEntry, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}

// DeriveStatus estado de una obligación según total y cancelado.
func (p Policy) DeriveStatus(total, settled decimal.Decimal) string {
	switch {
	case !total.IsPositive():
		return entity.ObligationStatusNotApplicable
	case settled.LessThan(p.Epsilon):
		return entity.ObligationStatusPending
	case settled.GreaterThanOrEqual(total.Sub(p.Epsilon)):
		return entity.ObligationStatusPaid
	default:
		return entity.ObligationStatusPartial
	}
}

// Remaining saldo pendiente: total - cancelado, llevado a cero dentro de la tolerancia.
func (p Policy) Remaining(total, settled decimal.Decimal) decimal.Decimal {
	r := total.Sub(settled)
	if r.LessThan(p.Epsilon) {
		return decimal.Zero
	}
	return r
}
