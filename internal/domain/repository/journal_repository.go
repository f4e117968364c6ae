package repository

import (
	"context"

	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
)

// JournalRepository puerto del libro diario. El motor nunca borra asientos.
type JournalRepository interface {
	// Create persiste el asiento y completa su ID.
	Create(ctx context.Context, entry *entity.JournalEntry) error
	Update(ctx context.Context, id string, entry *entity.JournalEntry) error
	// Get devuelve nil, nil si el asiento no existe.
	Get(ctx context.Context, id string) (*entity.JournalEntry, error)
	// BulkGet devuelve los asientos existentes indexados por ID (los faltantes se omiten).
	BulkGet(ctx context.Context, ids []string) (map[string]*entity.JournalEntry, error)
	// FindBySource busca el asiento por su clave de idempotencia; nil, nil si no existe.
	FindBySource(ctx context.Context, module, sourceID string) (*entity.JournalEntry, error)
	// ListByModule lista los asientos de un módulo de origen (determinaciones y cancelaciones).
	ListByModule(ctx context.Context, module string) ([]*entity.JournalEntry, error)
}
