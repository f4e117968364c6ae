package entity

import "github.com/shopspring/decimal"

// IVATotals totales de IVA del período, ya agregados desde los comprobantes.
type IVATotals struct {
	DebitoFiscal          decimal.Decimal
	CreditoFiscal         decimal.Decimal
	Retenciones           decimal.Decimal
	Percepciones          decimal.Decimal
	SaldoAFavorAnterior   decimal.Decimal
	SaldoAFavorDisponible bool // el saldo técnico anterior puede computarse en este período
}

// IIBBJurisdictionTotals Ingresos Brutos de una jurisdicción.
type IIBBJurisdictionTotals struct {
	Jurisdiction string
	Base         decimal.Decimal
	Alicuota     decimal.Decimal
	Impuesto     decimal.Decimal
	Retenciones  decimal.Decimal
	Percepciones decimal.Decimal
}

// FlatContribution cuota fija mensual (Monotributo, Autónomos).
type FlatContribution struct {
	Categoria string
	Cuota     decimal.Decimal
}

// PeriodTotals entrada del motor: totales calculados por el proveedor para un mes.
type PeriodTotals struct {
	Month             string
	IVA               IVATotals
	IIBB              []IIBBJurisdictionTotals
	Monotributo       FlatContribution
	Autonomos         FlatContribution
	AgentRetenciones  decimal.Decimal // retenciones practicadas como agente
	AgentPercepciones decimal.Decimal // percepciones practicadas como agente
}
