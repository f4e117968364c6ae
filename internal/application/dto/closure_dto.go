package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverrideRequest ajuste manual de un total: MANUAL exige amount, COMPUTED vuelve al calculado.
type OverrideRequest struct {
	Mode   string           `json:"mode" validate:"required,oneof=COMPUTED MANUAL"`
	Amount *decimal.Decimal `json:"amount"`
}

// CorrectionRequest corrección manual con signo sobre una obligación.
type CorrectionRequest struct {
	ID           string          `json:"id"`
	TaxType      string          `json:"tax_type" validate:"required,oneof=IVA IIBB MONOTRIBUTO AUTONOMOS RET_DEPOSITAR PER_DEPOSITAR"`
	Jurisdiction string          `json:"jurisdiction" validate:"omitempty,max=20"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description" validate:"max=200"`
}

// UpdateClosureRequest cambios parciales al cierre. Los campos ausentes no se modifican;
// corrections reemplaza la lista completa cuando viene.
type UpdateClosureRequest struct {
	Regime               string                     `json:"regime" validate:"omitempty,oneof=RI MT"`
	OperationsReconciled *bool                      `json:"operations_reconciled"`
	ReconciliationDone   *bool                      `json:"reconciliation_done"`
	Overrides            map[string]OverrideRequest `json:"overrides" validate:"omitempty,dive"`
	Corrections          []CorrectionRequest        `json:"corrections" validate:"omitempty,dive"`
	AutonomosEnabled     *bool                      `json:"autonomos_enabled"`
}

// ClosureStepsResponse checklist del cierre.
type ClosureStepsResponse struct {
	OperationsReconciled bool `json:"operations_reconciled"`
	ReconciliationDone   bool `json:"reconciliation_done"`
	EntriesGenerated     bool `json:"entries_generated"`
	Filed                bool `json:"filed"`
}

// SnapshotResponse cifras congeladas al cerrar.
type SnapshotResponse struct {
	Totals     map[string]decimal.Decimal `json:"totals"`
	EntryIDs   map[string]string          `json:"entry_ids"`
	CapturedAt time.Time                  `json:"captured_at"`
}

// AuditEntryResponse registro de auditoría.
type AuditEntryResponse struct {
	Action string    `json:"action"`
	At     time.Time `json:"at"`
	UserID string    `json:"user_id,omitempty"`
}

// ClosureResponse documento de cierre. Reported son las cifras a informar: la foto si está
// cerrado, si no los totales calculados con ajustes.
type ClosureResponse struct {
	ID               string                     `json:"id"`
	Month            string                     `json:"month"`
	Regime           string                     `json:"regime"`
	Status           string                     `json:"status"`
	Steps            ClosureStepsResponse       `json:"steps"`
	Totals           map[string]decimal.Decimal `json:"totals"`
	Reported         map[string]decimal.Decimal `json:"reported"`
	Overrides        map[string]OverrideRequest `json:"overrides"`
	EntryIDs         map[string]string          `json:"entry_ids"`
	Snapshot         *SnapshotResponse          `json:"snapshot,omitempty"`
	Audit            []AuditEntryResponse       `json:"audit"`
	Corrections      []CorrectionRequest        `json:"corrections"`
	AutonomosEnabled bool                       `json:"autonomos_enabled"`
	RefreshedAt      *time.Time                 `json:"refreshed_at,omitempty"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// UpdateClosureResponse resultado de una actualización; applied=false si el período está cerrado.
type UpdateClosureResponse struct {
	Applied bool            `json:"applied"`
	Closure ClosureResponse `json:"closure"`
}
