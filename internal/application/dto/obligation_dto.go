package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentResponse pago o cobro imputado a una obligación.
type PaymentResponse struct {
	ID             string          `json:"id"`
	JournalEntryID string          `json:"journal_entry_id"`
	PaidAt         time.Time       `json:"paid_at"`
	Method         string          `json:"method"`
	Reference      string          `json:"reference,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      string          `json:"direction"`
}

// ObligationSummaryResponse obligación registrada con el resumen de sus pagos.
type ObligationSummaryResponse struct {
	ID              string            `json:"id"`
	Key             string            `json:"key"`
	TaxType         string            `json:"tax_type"`
	TaxLabel        string            `json:"tax_label"`
	Period          string            `json:"period"`
	Jurisdiction    string            `json:"jurisdiction"`
	DueDate         time.Time         `json:"due_date"`
	AmountDue       decimal.Decimal   `json:"amount_due"`
	AmountPaid      decimal.Decimal   `json:"amount_paid"`
	AmountRemaining decimal.Decimal   `json:"amount_remaining"`
	Status          string            `json:"status"`
	Payments        []PaymentResponse `json:"payments"`
}

// SettlementObligationResponse vista de liquidación (obligación o saldo a favor) con su historial.
type SettlementObligationResponse struct {
	ID               string            `json:"id"`
	ObligationID     string            `json:"obligation_id,omitempty"`
	TaxType          string            `json:"tax_type"`
	TaxLabel         string            `json:"tax_label"`
	Period           string            `json:"period"`
	Jurisdiction     string            `json:"jurisdiction"`
	Direction        string            `json:"direction"`
	SourceTaxEntryID string            `json:"source_tax_entry_id,omitempty"`
	DueDate          *time.Time        `json:"due_date,omitempty"`
	AmountTotal      decimal.Decimal   `json:"amount_total"`
	AmountSettled    decimal.Decimal   `json:"amount_settled"`
	AmountRemaining  decimal.Decimal   `json:"amount_remaining"`
	Status           string            `json:"status"`
	Payments         []PaymentResponse `json:"payments"`
}
