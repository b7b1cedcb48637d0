package repository

import (
	"context"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// SettlementRepository define el puerto de persistencia para liquidaciones.
type SettlementRepository interface {
	Create(ctx context.Context, settlement *entity.Settlement) error
	GetByID(ctx context.Context, id string) (*entity.Settlement, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Settlement, error)
	Update(ctx context.Context, settlement *entity.Settlement) error
	Delete(ctx context.Context, id string) error
	ListByCard(ctx context.Context, cardID string) ([]*entity.Settlement, error)
	ListByTransfer(ctx context.Context, transferID string) ([]*entity.Settlement, error)
	// ValidatedUnits suma Number de las liquidaciones validadas de la tarjeta.
	ValidatedUnits(ctx context.Context, cardID string) (int, error)
	ExistsByCollection(ctx context.Context, collectionID string) (bool, error)
}
