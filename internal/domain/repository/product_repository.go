package repository

import (
	"context"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// ProductRepository puerto de lectura de productos.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// CardTypeRepository puerto de lectura de tipos (monto por unidad y lista de materiales).
type CardTypeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.CardType, error)
}
