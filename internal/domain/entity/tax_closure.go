package entity

import (
	"time"

	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/shopspring/decimal"
)

// Regime régimen del contribuyente.
type Regime string

const (
	RegimeRI Regime = afip.RegimeRI // Responsable Inscripto
	RegimeMT Regime = afip.RegimeMT // Monotributo
)

// IsValid indica si el régimen es conocido.
func (r Regime) IsValid() bool { return r == RegimeRI || r == RegimeMT }

// ClosureStatus estado del cierre.
type ClosureStatus string

const (
	ClosureStatusOpen   ClosureStatus = "OPEN"
	ClosureStatusClosed ClosureStatus = "CLOSED"
)

// Acciones del registro de auditoría.
const (
	AuditActionClosed   = "CLOSED"
	AuditActionUnlocked = "UNLOCKED"
)

// ClosureSteps checklist del cierre, en orden.
type ClosureSteps struct {
	OperationsReconciled bool `json:"operations_reconciled"`
	ReconciliationDone   bool `json:"reconciliation_done"`
	EntriesGenerated     bool `json:"entries_generated"`
	Filed                bool `json:"filed"`
}

// ClosureTotals totales por impuesto. Un impuesto ausente equivale a "sin calcular".
type ClosureTotals map[TaxType]decimal.Decimal

// Clone copia profunda (decimal es inmutable).
func (t ClosureTotals) Clone() ClosureTotals {
	if t == nil {
		return nil
	}
	out := make(ClosureTotals, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// OverrideMode variante del ajuste de un total.
type OverrideMode string

const (
	OverrideModeComputed OverrideMode = "COMPUTED" // usar el valor calculado
	OverrideModeManual   OverrideMode = "MANUAL"   // usar Amount
)

// TotalOverride ajuste manual de un total (unión con etiqueta Mode).
type TotalOverride struct {
	Mode   OverrideMode     `json:"mode"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// ClosureSnapshot cifras presentadas, capturadas al cerrar.
type ClosureSnapshot struct {
	Totals     ClosureTotals      `json:"totals"`
	EntryIDs   map[TaxType]string `json:"entry_ids"`
	CapturedAt time.Time          `json:"captured_at"`
}

// AuditEntry registro de auditoría del cierre (solo se agregan).
type AuditEntry struct {
	Action string    `json:"action"`
	At     time.Time `json:"at"`
	UserID string    `json:"user_id,omitempty"`
}

// ManualCorrection corrección manual (con signo) sobre la obligación de un impuesto/jurisdicción.
type ManualCorrection struct {
	ID           string          `json:"id"`
	TaxType      TaxType         `json:"tax_type"`
	Jurisdiction string          `json:"jurisdiction,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
}

// JurisdictionTotal saldo calculado de una jurisdicción, en el orden informado.
type JurisdictionTotal struct {
	Jurisdiction string          `json:"jurisdiction"`
	Amount       decimal.Decimal `json:"amount"`
}

// ClosureSettings opciones del cierre.
type ClosureSettings struct {
	AutonomosEnabled bool `json:"autonomos_enabled"`
}

// TaxClosePeriod documento de cierre por (mes, régimen).
type TaxClosePeriod struct {
	ID                string
	Month             string // YYYY-MM
	Regime            Regime
	Status            ClosureStatus
	Steps             ClosureSteps
	Totals            ClosureTotals       // calculados
	IIBBJurisdictions []JurisdictionTotal // apertura de IIBB del último refresco
	Overrides         map[TaxType]TotalOverride
	EntryIDs          map[TaxType]string // asiento de determinación por impuesto
	Snapshot          *ClosureSnapshot
	Audit             []AuditEntry
	Corrections       []ManualCorrection
	Settings          ClosureSettings
	RefreshedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsClosed indica si el período está bloqueado.
func (c *TaxClosePeriod) IsClosed() bool { return c.Status == ClosureStatusClosed }
