package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido de la obligación.
type Direction string

const (
	DirectionPayable    Direction = "PAYABLE"    // se adeuda al fisco
	DirectionReceivable Direction = "RECEIVABLE" // saldo a favor del contribuyente
)

// TaxPaymentLink registro de un pago o cobro contra una obligación. Guarda las claves de
// conciliación (impuesto, período, asiento de determinación) para poder reconciliar aunque
// cambie el esquema de identificadores de la obligación.
type TaxPaymentLink struct {
	ID               string
	ObligationID     string // id del registro de obligación o, si no existe, id de la liquidación
	SettlementID     string // id de la liquidación al momento del registro
	JournalEntryID   string
	PaidAt           time.Time
	Method           string
	Reference        string
	Amount           decimal.Decimal
	TaxType          TaxType
	PeriodKey        string // YYYY-MM
	Jurisdiction     string // sólo IIBB; vacío en pagos anteriores a la apertura
	Direction        Direction
	SourceTaxEntryID string // asiento de determinación que originó la obligación
	CreatedAt        time.Time
}
