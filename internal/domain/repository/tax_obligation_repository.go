package repository

import (
	"context"

	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

// TaxObligationRepository persistencia de obligaciones, indexadas por su clave natural.
type TaxObligationRepository interface {
	// GetByKey devuelve nil, nil si no existe.
	GetByKey(ctx context.Context, key string) (*entity.TaxObligation, error)
	GetByID(ctx context.Context, id string) (*entity.TaxObligation, error)
	// Upsert inserta o actualiza por Key (ON CONFLICT).
	Upsert(ctx context.Context, ob *entity.TaxObligation) error
	UpdateStatus(ctx context.Context, id, status string) error
	// List lista las obligaciones; period vacío = todas.
	List(ctx context.Context, period string) ([]entity.TaxObligation, error)
}
