package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

var _ repository.SettlementRepository = (*SettlementRepo)(nil)

const settlementColumns = `id, number, agent_id, card_id, collection_id, transfer_id, is_validated, created_at, updated_at`

// SettlementRepo implementación de SettlementRepository (usable con pool o tx).
type SettlementRepo struct {
	q Querier
}

// NewSettlementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSettlementRepository(q Querier) *SettlementRepo {
	return &SettlementRepo{q: q}
}

// Create persiste una liquidación.
func (r *SettlementRepo) Create(ctx context.Context, s *entity.Settlement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO settlements (`+settlementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Number, s.AgentID, s.CardID, s.CollectionID, s.TransferID, s.IsValidated, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// GetByID obtiene una liquidación por ID.
func (r *SettlementRepo) GetByID(ctx context.Context, id string) (*entity.Settlement, error) {
	return r.get(ctx, `SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id)
}

// GetForUpdate obtiene la liquidación y bloquea la fila (SELECT FOR UPDATE).
func (r *SettlementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Settlement, error) {
	return r.get(ctx, `SELECT `+settlementColumns+` FROM settlements WHERE id = $1 FOR UPDATE`, id)
}

func (r *SettlementRepo) get(ctx context.Context, query, id string) (*entity.Settlement, error) {
	var s entity.Settlement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Number, &s.AgentID, &s.CardID, &s.CollectionID, &s.TransferID, &s.IsValidated, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settlement: %w", err)
	}
	return &s, nil
}

// Update persiste número y validación; las referencias son inmutables.
func (r *SettlementRepo) Update(ctx context.Context, s *entity.Settlement) error {
	_, err := r.q.Exec(ctx, `
		UPDATE settlements SET number = $2, is_validated = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.Number, s.IsValidated, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update settlement: %w", err)
	}
	return nil
}

// Delete elimina una liquidación por ID.
func (r *SettlementRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM settlements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete settlement: %w", err)
	}
	return nil
}

// ListByCard lista las liquidaciones de una tarjeta en orden de creación.
func (r *SettlementRepo) ListByCard(ctx context.Context, cardID string) ([]*entity.Settlement, error) {
	return r.list(ctx, `
		SELECT `+settlementColumns+` FROM settlements
		WHERE card_id = $1 ORDER BY created_at, id`, cardID)
}

// ListByTransfer lista las liquidaciones creadas por una transferencia.
func (r *SettlementRepo) ListByTransfer(ctx context.Context, transferID string) ([]*entity.Settlement, error) {
	return r.list(ctx, `
		SELECT `+settlementColumns+` FROM settlements
		WHERE transfer_id = $1 ORDER BY created_at, id`, transferID)
}

func (r *SettlementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Settlement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Settlement
	for rows.Next() {
		var s entity.Settlement
		if err := rows.Scan(&s.ID, &s.Number, &s.AgentID, &s.CardID, &s.CollectionID, &s.TransferID, &s.IsValidated, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// ValidatedUnits suma number de las liquidaciones validadas de la tarjeta.
func (r *SettlementRepo) ValidatedUnits(ctx context.Context, cardID string) (int, error) {
	var units int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(number), 0) FROM settlements
		WHERE card_id = $1 AND is_validated`, cardID,
	).Scan(&units)
	if err != nil {
		return 0, fmt.Errorf("sum settlements: %w", err)
	}
	return units, nil
}

// ExistsByCollection indica si la colecta tiene liquidaciones (validadas o no).
func (r *SettlementRepo) ExistsByCollection(ctx context.Context, collectionID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM settlements WHERE collection_id = $1)`, collectionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists settlement: %w", err)
	}
	return exists, nil
}
