package tax

import (
	"fmt"
	"time"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

// NewClosure documento de cierre abierto y vacío.
func NewClosure(id, month string, regime entity.Regime, now time.Time) *entity.TaxClosePeriod {
	return &entity.TaxClosePeriod{
		ID:        id,
		Month:     month,
		Regime:    regime,
		Status:    entity.ClosureStatusOpen,
		Totals:    entity.ClosureTotals{},
		Overrides: map[entity.TaxType]entity.TotalOverride{},
		EntryIDs:  map[entity.TaxType]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ClosureUpdate cambios parciales al cierre; los campos nil no se tocan.
type ClosureUpdate struct {
	OperationsReconciled *bool
	ReconciliationDone   *bool
	Overrides            map[entity.TaxType]entity.TotalOverride
	Corrections          *[]entity.ManualCorrection
	Settings             *entity.ClosureSettings
}

// ApplyUpdate aplica los cambios si el período está abierto. Con el período cerrado no
// modifica nada y devuelve false sin error. Los ajustes se validan todos antes de aplicar.
func ApplyUpdate(c *entity.TaxClosePeriod, u ClosureUpdate, now time.Time) (bool, error) {
	if c.IsClosed() {
		return false, nil
	}
	for t, o := range u.Overrides {
		if err := ValidateOverride(t, o); err != nil {
			return false, err
		}
	}
	if u.Corrections != nil {
		for i, corr := range *u.Corrections {
			if !corr.TaxType.IsValid() {
				return false, fmt.Errorf("%w: corrección %d con impuesto %q", domain.ErrInvalidInput, i+1, corr.TaxType)
			}
		}
	}

	if u.OperationsReconciled != nil {
		c.Steps.OperationsReconciled = *u.OperationsReconciled
	}
	if u.ReconciliationDone != nil {
		c.Steps.ReconciliationDone = *u.ReconciliationDone
	}
	if len(u.Overrides) > 0 && c.Overrides == nil {
		c.Overrides = map[entity.TaxType]entity.TotalOverride{}
	}
	for t, o := range u.Overrides {
		if o.Mode == entity.OverrideModeComputed {
			delete(c.Overrides, t)
			continue
		}
		amount := *o.Amount
		c.Overrides[t] = entity.TotalOverride{Mode: o.Mode, Amount: &amount}
	}
	if u.Corrections != nil {
		c.Corrections = append([]entity.ManualCorrection(nil), (*u.Corrections)...)
	}
	if u.Settings != nil {
		c.Settings = *u.Settings
	}
	c.UpdatedAt = now
	return true, nil
}

// Refresh recarga los totales calculados y la apertura de IIBB, descarta asientos que ya no
// existen y recalcula el paso "asientos generados". Con el período cerrado no hace nada y
// devuelve false.
func (p Policy) Refresh(
	c *entity.TaxClosePeriod,
	computed entity.ClosureTotals,
	iibb []entity.JurisdictionTotal,
	existing map[string]bool,
	now time.Time,
) bool {
	if c.IsClosed() {
		return false
	}
	c.Totals = computed.Clone()
	if c.Totals == nil {
		c.Totals = entity.ClosureTotals{}
	}
	c.IIBBJurisdictions = append([]entity.JurisdictionTotal(nil), iibb...)
	for t, id := range c.EntryIDs {
		if !existing[id] {
			delete(c.EntryIDs, t)
		}
	}
	c.Steps.EntriesGenerated = p.EntriesComplete(c)
	c.RefreshedAt = &now
	c.UpdatedAt = now
	return true
}

// EntriesComplete indica si todo impuesto con determinación y total distinto de cero tiene
// su asiento generado.
func (p Policy) EntriesComplete(c *entity.TaxClosePeriod) bool {
	for t, v := range EffectiveTotals(c.Totals, c.Overrides) {
		if !HasDetermination(t) || p.ApproxZero(v) {
			continue
		}
		if c.EntryIDs[t] == "" {
			return false
		}
	}
	return true
}

// HasDetermination indica si el impuesto lleva asiento de determinación.
func HasDetermination(t entity.TaxType) bool {
	switch t {
	case entity.TaxTypeIVA, entity.TaxTypeIIBB, entity.TaxTypeMonotributo, entity.TaxTypeAutonomos:
		return true
	}
	return false
}

// RecordEntry asocia el asiento de determinación al impuesto.
func (p Policy) RecordEntry(c *entity.TaxClosePeriod, taxType entity.TaxType, entryID string, now time.Time) error {
	if c.IsClosed() {
		return domain.ErrPeriodClosed
	}
	if c.EntryIDs == nil {
		c.EntryIDs = map[entity.TaxType]string{}
	}
	c.EntryIDs[taxType] = entryID
	c.Steps.EntriesGenerated = p.EntriesComplete(c)
	c.UpdatedAt = now
	return nil
}

// Close bloquea el período y congela las cifras presentadas.
func Close(c *entity.TaxClosePeriod, userID string, now time.Time) error {
	if c.IsClosed() {
		return domain.ErrPeriodAlreadyClosed
	}
	entryIDs := make(map[entity.TaxType]string, len(c.EntryIDs))
	for t, id := range c.EntryIDs {
		entryIDs[t] = id
	}
	c.Snapshot = &entity.ClosureSnapshot{
		Totals:     EffectiveTotals(c.Totals, c.Overrides),
		EntryIDs:   entryIDs,
		CapturedAt: now,
	}
	c.Status = entity.ClosureStatusClosed
	c.Steps.Filed = true
	c.Audit = append(c.Audit, entity.AuditEntry{Action: entity.AuditActionClosed, At: now, UserID: userID})
	c.UpdatedAt = now
	return nil
}

// Unlock reabre un período cerrado. La foto de cierre se conserva hasta el próximo cierre.
func Unlock(c *entity.TaxClosePeriod, userID string, now time.Time) error {
	if !c.IsClosed() {
		return domain.ErrPeriodNotClosed
	}
	c.Status = entity.ClosureStatusOpen
	c.Audit = append(c.Audit, entity.AuditEntry{Action: entity.AuditActionUnlocked, At: now, UserID: userID})
	c.UpdatedAt = now
	return nil
}

// ReportedTotals cifras a informar: la foto si el período está cerrado, si no los totales
// calculados con los ajustes manuales.
func ReportedTotals(c *entity.TaxClosePeriod) entity.ClosureTotals {
	if c.IsClosed() && c.Snapshot != nil {
		return c.Snapshot.Totals.Clone()
	}
	return EffectiveTotals(c.Totals, c.Overrides)
}
