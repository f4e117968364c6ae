package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
)

var _ repository.TaxPaymentRepository = (*TaxPaymentRepo)(nil)

// TaxPaymentRepo vínculos de pago entre obligaciones y asientos de cancelación.
type TaxPaymentRepo struct {
	q Querier
}

// NewTaxPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxPaymentRepository(q Querier) *TaxPaymentRepo {
	return &TaxPaymentRepo{q: q}
}

// Create registra el pago.
func (r *TaxPaymentRepo) Create(ctx context.Context, p *entity.TaxPaymentLink) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO tax_payments (id, obligation_id, settlement_id, journal_entry_id, paid_at, method, reference,
		                          amount, tax_type, period_key, jurisdiction, direction, source_tax_entry_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.ObligationID, nullIfEmpty(p.SettlementID), p.JournalEntryID, p.PaidAt, p.Method,
		nullIfEmpty(p.Reference), p.Amount, string(p.TaxType), p.PeriodKey, nullIfEmpty(p.Jurisdiction), nullIfEmpty(string(p.Direction)),
		nullIfEmpty(p.SourceTaxEntryID), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tax payment: %w", err)
	}
	return nil
}

// List pagos del período ("" = todos), por fecha de pago.
func (r *TaxPaymentRepo) List(ctx context.Context, period string) ([]entity.TaxPaymentLink, error) {
	query := `
		SELECT id, obligation_id, settlement_id, journal_entry_id, paid_at, method, reference,
		       amount, tax_type, period_key, jurisdiction, direction, source_tax_entry_id, created_at
		FROM tax_payments WHERE ($1 = '' OR period_key = $1) ORDER BY paid_at, created_at`
	rows, err := r.q.Query(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("list tax payments: %w", err)
	}
	defer rows.Close()
	var list []entity.TaxPaymentLink
	for rows.Next() {
		var p entity.TaxPaymentLink
		var settlementID, reference, jurisdiction, direction, sourceEntry *string
		var taxType string
		if err := rows.Scan(&p.ID, &p.ObligationID, &settlementID, &p.JournalEntryID, &p.PaidAt, &p.Method, &reference,
			&p.Amount, &taxType, &p.PeriodKey, &jurisdiction, &direction, &sourceEntry, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tax payment: %w", err)
		}
		p.SettlementID = derefStr(settlementID)
		p.Reference = derefStr(reference)
		p.Jurisdiction = derefStr(jurisdiction)
		p.Direction = entity.Direction(derefStr(direction))
		p.SourceTaxEntryID = derefStr(sourceEntry)
		p.TaxType = entity.TaxType(taxType)
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un pago por ID.
func (r *TaxPaymentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tax_payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete tax payment: %w", err)
	}
	return nil
}
