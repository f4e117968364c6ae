package repository

import (
	"context"

	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

// TaxPaymentRepository registros de pagos/cobros de obligaciones.
type TaxPaymentRepository interface {
	Create(ctx context.Context, p *entity.TaxPaymentLink) error
	// List lista los pagos; period vacío = todos.
	List(ctx context.Context, period string) ([]entity.TaxPaymentLink, error)
	// Delete elimina un registro huérfano (su asiento ya no existe).
	Delete(ctx context.Context, id string) error
}
