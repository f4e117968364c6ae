package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryLineDTO renglón de asiento.
type EntryLineDTO struct {
	AccountID   string          `json:"account_id" validate:"required"`
	AccountCode string          `json:"account_code,omitempty"`
	AccountName string          `json:"account_name,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// EntryPreviewRequest opciones para armar el asiento de determinación.
type EntryPreviewRequest struct {
	Regime string `json:"regime" validate:"omitempty,oneof=RI MT"`
	// AccountOverrides cuenta explícita por rol (rol -> id de cuenta).
	AccountOverrides map[string]string `json:"account_overrides"`
}

// SaveEntryRequest guarda el asiento de determinación. Sin lines se vuelve a armar con los
// totales vigentes.
type SaveEntryRequest struct {
	Regime           string            `json:"regime" validate:"omitempty,oneof=RI MT"`
	AccountOverrides map[string]string `json:"account_overrides"`
	Date             *time.Time        `json:"date"`
	Memo             string            `json:"memo" validate:"max=200"`
	Lines            []EntryLineDTO    `json:"lines" validate:"omitempty,dive"`
}

// EntryPreviewResponse asiento armado (vista previa o guardado).
type EntryPreviewResponse struct {
	EntryID     string          `json:"entry_id,omitempty"`
	TaxType     string          `json:"tax_type"`
	Period      string          `json:"period"`
	Regime      string          `json:"regime"`
	SourceID    string          `json:"source_id"`
	Date        time.Time       `json:"date"`
	Memo        string          `json:"memo"`
	Lines       []EntryLineDTO  `json:"lines"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// SplitRequest cuenta de fondos de un pago o cobro.
type SplitRequest struct {
	AccountID string          `json:"account_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

// SettlementRequest pago (obligación a pagar) o cobro (saldo a favor) de una obligación.
type SettlementRequest struct {
	Regime              string          `json:"regime" validate:"omitempty,oneof=RI MT"`
	Date                *time.Time      `json:"date"`
	Amount              decimal.Decimal `json:"amount"`
	Method              string          `json:"method" validate:"required"`
	Reference           string          `json:"reference" validate:"max=120"`
	Splits              []SplitRequest  `json:"splits" validate:"omitempty,dive"`
	ObligationAccountID string          `json:"obligation_account_id"`
	Memo                string          `json:"memo" validate:"max=200"`
}

// SettlementPreviewResponse asiento de cancelación sin persistir.
type SettlementPreviewResponse struct {
	SettlementID string          `json:"settlement_id"`
	Direction    string          `json:"direction"`
	Date         time.Time       `json:"date"`
	Memo         string          `json:"memo"`
	Lines        []EntryLineDTO  `json:"lines"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
}

// SettlementResultResponse resultado de registrar un pago o cobro.
type SettlementResultResponse struct {
	EntryID    string                       `json:"entry_id"`
	PaymentID  string                       `json:"payment_id"`
	Obligation SettlementObligationResponse `json:"obligation"`
}
