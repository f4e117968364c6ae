package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
)

var (
	_ repository.AccountRepository        = (*AccountRepo)(nil)
	_ repository.AccountMappingRepository = (*AccountMappingRepo)(nil)
)

// AccountRepo plan de cuentas (solo lectura).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// List devuelve el plan de cuentas ordenado por código.
func (r *AccountRepo) List(ctx context.Context) ([]entity.Account, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, name, is_header, created_at FROM accounts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var list []entity.Account
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.IsHeader, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// AccountMappingRepo asignación de cuentas a roles impositivos.
type AccountMappingRepo struct {
	q Querier
}

// NewAccountMappingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountMappingRepository(q Querier) *AccountMappingRepo {
	return &AccountMappingRepo{q: q}
}

// GetAccountID devuelve la cuenta asignada al rol o "" si no hay.
func (r *AccountMappingRepo) GetAccountID(ctx context.Context, role string) (string, error) {
	var id string
	err := r.q.QueryRow(ctx, `SELECT account_id FROM account_mappings WHERE role = $1`, role).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get account mapping: %w", err)
	}
	return id, nil
}

// List devuelve todas las asignaciones.
func (r *AccountMappingRepo) List(ctx context.Context) ([]entity.AccountMapping, error) {
	rows, err := r.q.Query(ctx, `SELECT role, account_id, updated_at FROM account_mappings ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("list account mappings: %w", err)
	}
	defer rows.Close()
	var list []entity.AccountMapping
	for rows.Next() {
		var m entity.AccountMapping
		if err := rows.Scan(&m.Role, &m.AccountID, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account mapping: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Set crea o reemplaza la asignación del rol.
func (r *AccountMappingRepo) Set(ctx context.Context, m entity.AccountMapping) error {
	query := `
		INSERT INTO account_mappings (role, account_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (role) DO UPDATE SET account_id = EXCLUDED.account_id, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, m.Role, m.AccountID); err != nil {
		return fmt.Errorf("set account mapping: %w", err)
	}
	return nil
}
