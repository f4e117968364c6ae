package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Impuestos-api/internal/application/taxes"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

var _ taxes.TotalsProvider = (*PeriodTotalsRepo)(nil)

// PeriodTotalsRepo lee los totales mensuales que deja el módulo de comprobantes en
// tax_period_totals y tax_period_iibb. Un mes sin filas devuelve totales en cero.
type PeriodTotalsRepo struct {
	q Querier
}

// NewPeriodTotalsRepository construye el adaptador.
func NewPeriodTotalsRepository(q Querier) *PeriodTotalsRepo {
	return &PeriodTotalsRepo{q: q}
}

// GetPeriodTotals totales del mes (YYYY-MM).
func (r *PeriodTotalsRepo) GetPeriodTotals(ctx context.Context, month string) (*entity.PeriodTotals, error) {
	pt := &entity.PeriodTotals{Month: month}
	query := `
		SELECT iva_debito_fiscal, iva_credito_fiscal, iva_retenciones, iva_percepciones,
		       iva_saldo_a_favor_anterior, iva_saldo_a_favor_disponible,
		       COALESCE(monotributo_categoria, ''), monotributo_cuota,
		       COALESCE(autonomos_categoria, ''), autonomos_cuota,
		       agent_retenciones, agent_percepciones
		FROM tax_period_totals WHERE month = $1`
	err := r.q.QueryRow(ctx, query, month).Scan(
		&pt.IVA.DebitoFiscal, &pt.IVA.CreditoFiscal, &pt.IVA.Retenciones, &pt.IVA.Percepciones,
		&pt.IVA.SaldoAFavorAnterior, &pt.IVA.SaldoAFavorDisponible,
		&pt.Monotributo.Categoria, &pt.Monotributo.Cuota,
		&pt.Autonomos.Categoria, &pt.Autonomos.Cuota,
		&pt.AgentRetenciones, &pt.AgentPercepciones,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get period totals: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT jurisdiction, base, alicuota, impuesto, retenciones, percepciones
		FROM tax_period_iibb WHERE month = $1 ORDER BY position, jurisdiction`, month)
	if err != nil {
		return nil, fmt.Errorf("list iibb totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var j entity.IIBBJurisdictionTotals
		if err := rows.Scan(&j.Jurisdiction, &j.Base, &j.Alicuota, &j.Impuesto, &j.Retenciones, &j.Percepciones); err != nil {
			return nil, fmt.Errorf("scan iibb totals: %w", err)
		}
		pt.IIBB = append(pt.IIBB, j)
	}
	return pt, rows.Err()
}
