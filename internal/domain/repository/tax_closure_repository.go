package repository

import (
	"context"

	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

// TaxClosureRepository documentos de cierre por (mes, régimen).
type TaxClosureRepository interface {
	// Get devuelve nil, nil si no existe.
	Get(ctx context.Context, month string, regime entity.Regime) (*entity.TaxClosePeriod, error)
	// Save inserta o reemplaza el documento completo.
	Save(ctx context.Context, c *entity.TaxClosePeriod) error
}

