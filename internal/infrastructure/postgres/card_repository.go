package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

var _ repository.CardRepository = (*CardRepo)(nil)

const cardColumns = `id, customer_id, type_id, types_number, repaid_at, satisfied_at, transferred_at, created_at, updated_at`

// CardRepo implementación de CardRepository (usable con pool o tx).
type CardRepo struct {
	q Querier
}

// NewCardRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCardRepository(q Querier) *CardRepo {
	return &CardRepo{q: q}
}

// Create persiste una tarjeta nueva.
func (r *CardRepo) Create(ctx context.Context, c *entity.Card) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.CustomerID, c.TypeID, c.TypesNumber, c.RepaidAt, c.SatisfiedAt, c.TransferredAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// GetByID obtiene una tarjeta por ID.
func (r *CardRepo) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	return r.get(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
}

// GetForUpdate obtiene la tarjeta y bloquea la fila (SELECT FOR UPDATE).
func (r *CardRepo) GetForUpdate(ctx context.Context, id string) (*entity.Card, error) {
	return r.get(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
}

func (r *CardRepo) get(ctx context.Context, query, id string) (*entity.Card, error) {
	var c entity.Card
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CustomerID, &c.TypeID, &c.TypesNumber, &c.RepaidAt, &c.SatisfiedAt, &c.TransferredAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &c, nil
}

// Update persiste los sellos de ciclo de vida.
func (r *CardRepo) Update(ctx context.Context, c *entity.Card) error {
	_, err := r.q.Exec(ctx, `
		UPDATE cards SET repaid_at = $2, satisfied_at = $3, transferred_at = $4, updated_at = $5
		WHERE id = $1`,
		c.ID, c.RepaidAt, c.SatisfiedAt, c.TransferredAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return nil
}
