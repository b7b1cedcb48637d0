package repository

import (
	"context"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// CardRepository define el puerto de persistencia para tarjetas.
type CardRepository interface {
	Create(ctx context.Context, card *entity.Card) error
	GetByID(ctx context.Context, id string) (*entity.Card, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Card, error)
	// Update persiste los sellos de ciclo de vida (repaid/satisfied/transferred) y updated_at.
	Update(ctx context.Context, card *entity.Card) error
}
