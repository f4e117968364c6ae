package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
)

var _ repository.TaxObligationRepository = (*TaxObligationRepo)(nil)

// TaxObligationRepo obligaciones por (impuesto, período, jurisdicción).
type TaxObligationRepo struct {
	q Querier
}

// NewTaxObligationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxObligationRepository(q Querier) *TaxObligationRepo {
	return &TaxObligationRepo{q: q}
}

const obligationColumns = `id, obligation_key, tax_type, period, jurisdiction, due_date, amount_due, status, created_at, updated_at`

// GetByKey obtiene la obligación por clave natural; nil si no existe.
func (r *TaxObligationRepo) GetByKey(ctx context.Context, key string) (*entity.TaxObligation, error) {
	return r.getOne(ctx, `SELECT `+obligationColumns+` FROM tax_obligations WHERE obligation_key = $1`, key)
}

// GetByID obtiene la obligación por ID; nil si no existe.
func (r *TaxObligationRepo) GetByID(ctx context.Context, id string) (*entity.TaxObligation, error) {
	return r.getOne(ctx, `SELECT `+obligationColumns+` FROM tax_obligations WHERE id = $1`, id)
}

func (r *TaxObligationRepo) getOne(ctx context.Context, query string, arg string) (*entity.TaxObligation, error) {
	o, err := scanObligation(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tax obligation: %w", err)
	}
	return o, nil
}

// Upsert inserta o actualiza por clave natural. Si otra escritura creó la clave primero se
// conserva su id y se devuelve en ob.ID.
func (r *TaxObligationRepo) Upsert(ctx context.Context, ob *entity.TaxObligation) error {
	if ob.ID == "" {
		ob.ID = uuid.New().String()
	}
	query := `
		INSERT INTO tax_obligations (` + obligationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (obligation_key) DO UPDATE
		SET due_date   = EXCLUDED.due_date,
		    amount_due = EXCLUDED.amount_due,
		    status     = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		ob.ID, ob.Key, string(ob.TaxType), ob.Period, ob.Jurisdiction, ob.DueDate,
		ob.AmountDue, ob.Status, ob.CreatedAt, ob.UpdatedAt,
	).Scan(&ob.ID)
	if err != nil {
		return fmt.Errorf("upsert tax obligation: %w", err)
	}
	return nil
}

// UpdateStatus actualiza sólo el estado.
func (r *TaxObligationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.q.Exec(ctx, `UPDATE tax_obligations SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update tax obligation status: %w", err)
	}
	return nil
}

// List obligaciones del período ("" = todas), por clave.
func (r *TaxObligationRepo) List(ctx context.Context, period string) ([]entity.TaxObligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM tax_obligations WHERE ($1 = '' OR period = $1) ORDER BY obligation_key`
	rows, err := r.q.Query(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("list tax obligations: %w", err)
	}
	defer rows.Close()
	var list []entity.TaxObligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tax obligation: %w", err)
		}
		list = append(list, *o)
	}
	return list, rows.Err()
}

func scanObligation(row pgx.Row) (*entity.TaxObligation, error) {
	var o entity.TaxObligation
	var taxType string
	if err := row.Scan(&o.ID, &o.Key, &taxType, &o.Period, &o.Jurisdiction, &o.DueDate,
		&o.AmountDue, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.TaxType = entity.TaxType(taxType)
	return &o, nil
}
