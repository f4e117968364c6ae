package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Módulo de origen de los asientos generados por el motor de impuestos.
const SourceModuleTaxes = "taxes"

// EntryKind tipo de asiento impositivo.
type EntryKind string

const (
	EntryKindDetermination EntryKind = "DETERMINATION" // reconoce la obligación del período
	EntryKindSettlement    EntryKind = "SETTLEMENT"    // registra el pago o cobro
)

// EntryTag etiqueta estructurada que el motor adjunta al crear un asiento.
type EntryTag struct {
	Source  string    `json:"source"`
	TaxType TaxType   `json:"tax_type"`
	Period  string    `json:"period"` // YYYY-MM
	Kind    EntryKind `json:"kind"`
}

// EntryMetadata datos de trazabilidad del asiento. SourceID es la clave de idempotencia.
type EntryMetadata struct {
	SourceModule string    `json:"source_module"`
	SourceID     string    `json:"source_id"`
	Tag          *EntryTag `json:"tag,omitempty"`
}

// EntryLine renglón del asiento. En este motor solo uno de Debit/Credit es distinto de cero.
type EntryLine struct {
	AccountID   string          `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntry asiento del libro diario (colaborador externo: el libro mayor no es de este motor).
type JournalEntry struct {
	ID        string
	Date      time.Time
	Memo      string
	Lines     []EntryLine
	Metadata  EntryMetadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Totals devuelve la suma de debe y haber del asiento.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
