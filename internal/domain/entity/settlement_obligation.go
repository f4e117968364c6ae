package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxSettlementObligation vista unificada de una obligación (registrada o saldo a favor
// sintetizado) con su historial de cancelaciones. Se reconstruye en cada lectura.
type TaxSettlementObligation struct {
	ID               string // id de liquidación (determinístico)
	ObligationID     string // registro de obligación de origen; vacío si es sintetizada
	TaxType          TaxType
	PeriodKey        string
	Jurisdiction     string
	Direction        Direction
	SourceTaxEntryID string
	DueDate          *time.Time
	AmountTotal      decimal.Decimal
	AmountSettled    decimal.Decimal
	AmountRemaining  decimal.Decimal
	Status           string
	Payments         []TaxPaymentLink
}

// ObligationSummary registro de obligación con el resumen de sus pagos.
type ObligationSummary struct {
	Obligation      TaxObligation
	AmountPaid      decimal.Decimal
	AmountRemaining decimal.Decimal
	Payments        []TaxPaymentLink
}
