package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// CollectionRepository define el puerto de persistencia para colectas.
type CollectionRepository interface {
	Create(ctx context.Context, collection *entity.Collection) error
	GetByID(ctx context.Context, id string) (*entity.Collection, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Collection, error)
	Update(ctx context.Context, collection *entity.Collection) error
	Delete(ctx context.Context, id string) error
	// ExistsForCollectorOnDay indica si el colector ya tiene una colecta ese día (excluyendo excludeID).
	ExistsForCollectorOnDay(ctx context.Context, collectorID string, day time.Time, excludeID string) (bool, error)
}
