package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
)

var _ repository.TaxClosureRepository = (*TaxClosureRepo)(nil)

// TaxClosureRepo cierres mensuales por (mes, régimen). Checklist, ajustes, foto y auditoría
// viajan en una columna jsonb.
type TaxClosureRepo struct {
	q Querier
}

// NewTaxClosureRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxClosureRepository(q Querier) *TaxClosureRepo {
	return &TaxClosureRepo{q: q}
}

type closureDocument struct {
	Steps             entity.ClosureSteps                     `json:"steps"`
	Totals            entity.ClosureTotals                    `json:"totals"`
	IIBBJurisdictions []entity.JurisdictionTotal              `json:"iibb_jurisdictions,omitempty"`
	Overrides         map[entity.TaxType]entity.TotalOverride `json:"overrides,omitempty"`
	EntryIDs          map[entity.TaxType]string               `json:"entry_ids,omitempty"`
	Snapshot          *entity.ClosureSnapshot                 `json:"snapshot,omitempty"`
	Audit             []entity.AuditEntry                     `json:"audit,omitempty"`
	Corrections       []entity.ManualCorrection               `json:"corrections,omitempty"`
	Settings          entity.ClosureSettings                  `json:"settings"`
	RefreshedAt       *time.Time                              `json:"refreshed_at,omitempty"`
}

// Get obtiene el cierre; nil si no existe.
func (r *TaxClosureRepo) Get(ctx context.Context, month string, regime entity.Regime) (*entity.TaxClosePeriod, error) {
	query := `
		SELECT id, month, regime, status, document, created_at, updated_at
		FROM tax_closures WHERE month = $1 AND regime = $2`
	var c entity.TaxClosePeriod
	var regimeStr, status string
	var raw []byte
	err := r.q.QueryRow(ctx, query, month, string(regime)).Scan(
		&c.ID, &c.Month, &regimeStr, &status, &raw, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tax closure: %w", err)
	}
	c.Regime = entity.Regime(regimeStr)
	c.Status = entity.ClosureStatus(status)

	var doc closureDocument
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode tax closure %s: %w", c.ID, err)
		}
	}
	c.Steps = doc.Steps
	c.Totals = doc.Totals
	if c.Totals == nil {
		c.Totals = entity.ClosureTotals{}
	}
	c.IIBBJurisdictions = doc.IIBBJurisdictions
	c.Overrides = doc.Overrides
	if c.Overrides == nil {
		c.Overrides = map[entity.TaxType]entity.TotalOverride{}
	}
	c.EntryIDs = doc.EntryIDs
	if c.EntryIDs == nil {
		c.EntryIDs = map[entity.TaxType]string{}
	}
	c.Snapshot = doc.Snapshot
	c.Audit = doc.Audit
	c.Corrections = doc.Corrections
	c.Settings = doc.Settings
	c.RefreshedAt = doc.RefreshedAt
	return &c, nil
}

// Save inserta o reemplaza el cierre de (mes, régimen).
func (r *TaxClosureRepo) Save(ctx context.Context, c *entity.TaxClosePeriod) error {
	raw, err := json.Marshal(closureDocument{
		Steps:             c.Steps,
		Totals:            c.Totals,
		IIBBJurisdictions: c.IIBBJurisdictions,
		Overrides:         c.Overrides,
		EntryIDs:          c.EntryIDs,
		Snapshot:          c.Snapshot,
		Audit:             c.Audit,
		Corrections:       c.Corrections,
		Settings:          c.Settings,
		RefreshedAt:       c.RefreshedAt,
	})
	if err != nil {
		return fmt.Errorf("encode tax closure: %w", err)
	}
	query := `
		INSERT INTO tax_closures (id, month, regime, status, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (month, regime) DO UPDATE
		SET status     = EXCLUDED.status,
		    document   = EXCLUDED.document,
		    updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query, c.ID, c.Month, string(c.Regime), string(c.Status), raw, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save tax closure: %w", err)
	}
	return nil
}
