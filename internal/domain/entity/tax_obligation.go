package entity

import (
	"time"

	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/shopspring/decimal"
)

// TaxType impuesto administrado por el motor.
type TaxType string

const (
	TaxTypeIVA          TaxType = afip.TaxIVA
	TaxTypeIIBB         TaxType = afip.TaxIIBB
	TaxTypeMonotributo  TaxType = afip.TaxMonotributo
	TaxTypeAutonomos    TaxType = afip.TaxAutonomos
	TaxTypeRetDepositar TaxType = afip.TaxRetDepositar
	TaxTypePerDepositar TaxType = afip.TaxPerDepositar
)

// AllTaxTypes orden canónico de los impuestos (listados y constancias).
var AllTaxTypes = []TaxType{
	TaxTypeIVA, TaxTypeIIBB, TaxTypeMonotributo, TaxTypeAutonomos, TaxTypeRetDepositar, TaxTypePerDepositar,
}

// IsValid indica si el impuesto está catalogado.
func (t TaxType) IsValid() bool {
	switch t {
	case TaxTypeIVA, TaxTypeIIBB, TaxTypeMonotributo, TaxTypeAutonomos, TaxTypeRetDepositar, TaxTypePerDepositar:
		return true
	}
	return false
}

// Label etiqueta legible del impuesto.
func (t TaxType) Label() string {
	if l, ok := afip.TaxLabels[string(t)]; ok {
		return l
	}
	return string(t)
}

// Estados de una obligación.
const (
	ObligationStatusPending       = "PENDING"
	ObligationStatusPartial       = "PARTIAL"
	ObligationStatusPaid          = "PAID"
	ObligationStatusNotApplicable = "NOT_APPLICABLE"
)

// TaxObligation importe adeudado por (impuesto, período, jurisdicción). Nunca se duplica:
// se identifica por Key y se actualiza in situ.
type TaxObligation struct {
	ID           string
	Key          string // TAXTYPE|YYYY-MM|JURISDICTION
	TaxType      TaxType
	Period       string // YYYY-MM
	Jurisdiction string
	DueDate      time.Time
	AmountDue    decimal.Decimal
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
