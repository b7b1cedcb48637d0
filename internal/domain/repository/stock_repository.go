package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// StockRepository define el puerto del historial de stock por producto.
// Usado dentro de transacciones para garantizar la consistencia del saldo corrido.
type StockRepository interface {
	// Create inserta la fila y asigna ID y Seq.
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// Latest devuelve la última fila del producto o nil si nunca tuvo stock.
	Latest(ctx context.Context, productID string) (*entity.StockMovement, error)
	// LatestForUpdate serializa los movimientos del producto hasta el fin de la transacción
	// y devuelve su última fila (nil si no existe).
	LatestForUpdate(ctx context.Context, productID string) (*entity.StockMovement, error)
	// Update enmienda cantidades de una fila (solo la última fila manual de su producto).
	Update(ctx context.Context, movement *entity.StockMovement) error
	Delete(ctx context.Context, id string) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error)
	// LatestByCard devuelve la fila más reciente de la tarjeta con alguno de los tipos dados.
	LatestByCard(ctx context.Context, cardID string, movementTypes ...string) (*entity.StockMovement, error)
	// CountByCardBetween cuenta filas de la tarjeta de un tipo creadas en [from, to).
	CountByCardBetween(ctx context.Context, cardID, movementType string, from, to time.Time) (int, error)
}
