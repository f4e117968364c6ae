package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Impuestos-api/internal/application/taxes"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
)

var _ taxes.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunTax inicia una transacción, ejecuta fn con los repos de impuestos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) RunTax(ctx context.Context, fn func(
	journalRepo repository.JournalRepository,
	obligationRepo repository.TaxObligationRepository,
	paymentRepo repository.TaxPaymentRepository,
	closureRepo repository.TaxClosureRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	journalRepo := NewJournalRepository(tx)
	obligationRepo := NewTaxObligationRepository(tx)
	paymentRepo := NewTaxPaymentRepository(tx)
	closureRepo := NewTaxClosureRepository(tx)

	if err := fn(journalRepo, obligationRepo, paymentRepo, closureRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
