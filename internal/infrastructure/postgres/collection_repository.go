package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

var _ repository.CollectionRepository = (*CollectionRepo)(nil)

const collectionColumns = `id, collector_id, agent_id, amount, rest, collected_at, created_at, updated_at`

// CollectionRepo implementación de CollectionRepository (usable con pool o tx).
type CollectionRepo struct {
	q Querier
}

// NewCollectionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCollectionRepository(q Querier) *CollectionRepo {
	return &CollectionRepo{q: q}
}

// Create persiste una colecta. El índice único (collector_id, collected_at) se traduce a ErrDuplicateCollection.
func (r *CollectionRepo) Create(ctx context.Context, c *entity.Collection) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO collections (`+collectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.CollectorID, c.AgentID, c.Amount, c.Rest, c.CollectedAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCollection
		}
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

// GetByID obtiene una colecta por ID.
func (r *CollectionRepo) GetByID(ctx context.Context, id string) (*entity.Collection, error) {
	return r.get(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = $1`, id)
}

// GetForUpdate obtiene la colecta y bloquea la fila (SELECT FOR UPDATE).
func (r *CollectionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Collection, error) {
	return r.get(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = $1 FOR UPDATE`, id)
}

func (r *CollectionRepo) get(ctx context.Context, query, id string) (*entity.Collection, error) {
	var c entity.Collection
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CollectorID, &c.AgentID, &c.Amount, &c.Rest, &c.CollectedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &c, nil
}

// Update persiste colector, agente, monto, saldo y fecha.
func (r *CollectionRepo) Update(ctx context.Context, c *entity.Collection) error {
	_, err := r.q.Exec(ctx, `
		UPDATE collections
		SET collector_id = $2, agent_id = $3, amount = $4, rest = $5, collected_at = $6, updated_at = $7
		WHERE id = $1`,
		c.ID, c.CollectorID, c.AgentID, c.Amount, c.Rest, c.CollectedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCollection
		}
		if isCheckViolation(err, "collections_rest_check") {
			return domain.ErrInsufficientAmount
		}
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

// Delete elimina una colecta por ID. Si aún la referencian liquidaciones devuelve ErrCollectionHasSettlements.
func (r *CollectionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCollectionHasSettlements
		}
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// ExistsForCollectorOnDay indica si el colector ya tiene colecta ese día (excluyendo excludeID).
func (r *CollectionRepo) ExistsForCollectorOnDay(ctx context.Context, collectorID string, day time.Time, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM collections
			WHERE collector_id = $1 AND collected_at = $2::date AND id <> $3
		)`, collectorID, day, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists collection: %w", err)
	}
	return exists, nil
}
