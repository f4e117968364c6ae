package tax

import (
	"fmt"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/shopspring/decimal"
)

// Split cuenta de fondos (banco, caja) y el importe que aporta a la cancelación.
type Split struct {
	AccountID string
	Amount    decimal.Decimal
}

// SettlementLinesInput datos para armar el asiento de cancelación de una obligación.
type SettlementLinesInput struct {
	Direction           entity.Direction
	Amount              decimal.Decimal
	ObligationAccountID string // cuenta pasiva (a pagar) o activa (saldo a favor)
	Splits              []Split
	Description         string
}

// ObligationRole rol contable de la cuenta que registra la obligación según impuesto y sentido.
func ObligationRole(taxType entity.TaxType, direction entity.Direction) (string, bool) {
	if direction == entity.DirectionReceivable {
		switch taxType {
		case entity.TaxTypeIVA:
			return afip.RoleIVASaldoAFavor, true
		case entity.TaxTypeIIBB:
			return afip.RoleIIBBSaldoAFavor, true
		}
		return "", false
	}
	switch taxType {
	case entity.TaxTypeIVA:
		return afip.RoleIVAAPagar, true
	case entity.TaxTypeIIBB:
		return afip.RoleIIBBAPagar, true
	case entity.TaxTypeMonotributo:
		return afip.RoleMonotributoAPagar, true
	case entity.TaxTypeAutonomos:
		return afip.RoleAutonomosAPagar, true
	case entity.TaxTypeRetDepositar:
		return afip.RoleRetencionesADepositar, true
	case entity.TaxTypePerDepositar:
		return afip.RolePercepcionesADepositar, true
	}
	return "", false
}

// BuildSettlementLines arma los renglones de un pago (PAYABLE: debe a la obligación, haber a
// las cuentas de fondos) o de un cobro (RECEIVABLE: al revés). Valida en este orden: importe
// positivo, al menos una cuenta de fondos, cuentas imputables, suma de cuentas igual al
// importe y balance final.
func (p Policy) BuildSettlementLines(r *AccountResolver, in SettlementLinesInput) ([]entity.EntryLine, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrAmountNotPositive
	}
	if len(in.Splits) == 0 {
		return nil, domain.ErrNoSettlementSplits
	}
	sum := decimal.Zero
	for i, s := range in.Splits {
		if !r.IsPostable(s.AccountID) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSplitAccount, s.AccountID)
		}
		if !s.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: cuenta de pago %d", domain.ErrAmountNotPositive, i+1)
		}
		sum = sum.Add(s.Amount)
	}
	if !p.ApproxEqual(sum, in.Amount) {
		return nil, fmt.Errorf("%w: cuentas %s, importe %s", domain.ErrSplitMismatch, sum.StringFixed(2), in.Amount.StringFixed(2))
	}
	if !r.IsPostable(in.ObligationAccountID) {
		return nil, fmt.Errorf("%w: cuenta de la obligación %q", domain.ErrInvalidSplitAccount, in.ObligationAccountID)
	}

	payable := in.Direction != entity.DirectionReceivable
	lines := make([]entity.EntryLine, 0, len(in.Splits)+1)
	lines = append(lines, line(in.ObligationAccountID, in.Amount, payable, in.Description))
	for _, s := range in.Splits {
		desc := in.Description
		if a, ok := r.Account(s.AccountID); ok {
			desc = in.Description + " - " + a.Name
		}
		lines = append(lines, line(s.AccountID, s.Amount, !payable, desc))
	}
	if err := p.ValidateBalanced(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func line(accountID string, amount decimal.Decimal, debit bool, desc string) entity.EntryLine {
	l := entity.EntryLine{AccountID: accountID, Description: desc}
	if debit {
		l.Debit = amount
	} else {
		l.Credit = amount
	}
	return l
}
