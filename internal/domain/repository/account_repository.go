package repository

import (
	"context"

	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

// AccountRepository provee el plan de cuentas (colaborador externo, solo lectura).
type AccountRepository interface {
	// List devuelve todas las cuentas, títulos incluidos.
	List(ctx context.Context) ([]entity.Account, error)
}

// AccountMappingRepository asignaciones de cuentas configuradas por el usuario.
type AccountMappingRepository interface {
	// GetAccountID devuelve la cuenta asignada al rol, o "" si no hay asignación.
	GetAccountID(ctx context.Context, role string) (string, error)
	List(ctx context.Context) ([]entity.AccountMapping, error)
	Set(ctx context.Context, mapping entity.AccountMapping) error
}
