package tax_test

import (
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// planModelo plan de cuentas mínimo con los códigos canónicos y dos cuentas de fondos.
func planModelo() []entity.Account {
	return []entity.Account{
		{ID: "acc-iva-df", Code: "2.1.3.01", Name: "IVA Débito Fiscal"},
		{ID: "acc-iva-cf", Code: "1.1.4.01", Name: "IVA Crédito Fiscal"},
		{ID: "acc-iva-ret", Code: "1.1.4.02", Name: "Retenciones IVA"},
		{ID: "acc-iva-per", Code: "1.1.4.03", Name: "Percepciones IVA"},
		{ID: "acc-iva-saf", Code: "1.1.4.04", Name: "IVA Saldo a favor"},
		{ID: "acc-iva-pagar", Code: "2.1.3.02", Name: "IVA a pagar"},
		{ID: "acc-iibb-gasto", Code: "5.2.1.01", Name: "Impuesto Ingresos Brutos"},
		{ID: "acc-iibb-ret", Code: "1.1.4.05", Name: "Retenciones IIBB"},
		{ID: "acc-iibb-pagar", Code: "2.1.3.03", Name: "IIBB a pagar"},
		{ID: "acc-iibb-saf", Code: "1.1.4.06", Name: "IIBB saldo a favor"},
		{ID: "acc-mt-gasto", Code: "5.2.1.02", Name: "Cuota Monotributo"},
		{ID: "acc-mt-pagar", Code: "2.1.3.04", Name: "Monotributo a pagar"},
		{ID: "acc-ajuste", Code: "5.2.1.99", Name: "Ajustes de impuestos"},
		{ID: "acc-banco", Code: "1.1.1.02", Name: "Banco Nación cuenta corriente"},
		{ID: "acc-caja", Code: "1.1.1.01", Name: "Caja"},
		{ID: "acc-activo", Code: "1.1", Name: "Activo corriente", IsHeader: true},
	}
}
