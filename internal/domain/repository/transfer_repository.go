package repository

import (
	"context"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia para transferencias.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	Update(ctx context.Context, transfer *entity.Transfer) error
	Delete(ctx context.Context, id string) error
}
