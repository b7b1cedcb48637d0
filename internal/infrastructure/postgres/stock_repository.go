package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, seq, transaction_id, product_id, card_id, agent_id, movement_type,
	initial_quantity, input_quantity, output_quantity, stock_quantity, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// seq (BIGSERIAL) fija el orden del historial de cada producto.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Create inserta la fila y asigna ID (si falta) y Seq.
func (r *StockRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO stocks (id, transaction_id, product_id, card_id, agent_id, movement_type,
			initial_quantity, input_quantity, output_quantity, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq`,
		m.ID, m.TransactionID, m.ProductID, m.CardID, m.AgentID, m.MovementType,
		m.InitialQuantity, m.InputQuantity, m.OutputQuantity, m.StockQuantity, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.Seq)
	if err != nil {
		if isCheckViolation(err, "stocks_stock_quantity_check") {
			return domain.ErrInsufficientStockQuantity
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

// GetByID obtiene una fila por ID.
func (r *StockRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.one(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id = $1`, id)
}

// Latest devuelve la última fila del producto (nil si nunca tuvo stock).
func (r *StockRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	return r.one(ctx, `
		SELECT `+stockColumns+` FROM stocks
		WHERE product_id = $1 ORDER BY seq DESC LIMIT 1`, productID)
}

// LatestForUpdate toma un advisory lock de transacción por producto antes de leer la última fila:
// la fila puede no existir todavía, así que FOR UPDATE no alcanza.
func (r *StockRepo) LatestForUpdate(ctx context.Context, productID string) (*entity.StockMovement, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, productID); err != nil {
		return nil, fmt.Errorf("lock stock: %w", err)
	}
	return r.Latest(ctx, productID)
}

// Update enmienda cantidades y saldo de una fila.
func (r *StockRepo) Update(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stocks SET input_quantity = $2, output_quantity = $3, stock_quantity = $4, updated_at = $5
		WHERE id = $1`,
		m.ID, m.InputQuantity, m.OutputQuantity, m.StockQuantity, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// Delete elimina una fila por ID.
func (r *StockRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	return nil
}

// ListByProduct historial del producto en orden cronológico. limit <= 0 = sin límite.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	return r.list(ctx, `
		SELECT `+stockColumns+` FROM stocks
		WHERE product_id = $1 ORDER BY seq LIMIT $2 OFFSET $3`, productID, lim, offset)
}

// ListByTransaction filas escritas por una misma operación.
func (r *StockRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `
		SELECT `+stockColumns+` FROM stocks
		WHERE transaction_id = $1 ORDER BY seq`, transactionID)
}

// LatestByCard fila más reciente de la tarjeta con alguno de los tipos dados (todos si no se indican).
func (r *StockRepo) LatestByCard(ctx context.Context, cardID string, movementTypes ...string) (*entity.StockMovement, error) {
	if len(movementTypes) == 0 {
		return r.one(ctx, `
			SELECT `+stockColumns+` FROM stocks
			WHERE card_id = $1 ORDER BY seq DESC LIMIT 1`, cardID)
	}
	return r.one(ctx, `
		SELECT `+stockColumns+` FROM stocks
		WHERE card_id = $1 AND movement_type = ANY($2) ORDER BY seq DESC LIMIT 1`, cardID, movementTypes)
}

// CountByCardBetween cuenta filas de la tarjeta de un tipo creadas en [from, to).
func (r *StockRepo) CountByCardBetween(ctx context.Context, cardID, movementType string, from, to time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM stocks
		WHERE card_id = $1 AND movement_type = $2 AND created_at >= $3 AND created_at < $4`,
		cardID, movementType, from, to,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stock: %w", err)
	}
	return n, nil
}

func (r *StockRepo) one(ctx context.Context, query string, args ...any) (*entity.StockMovement, error) {
	m, err := scanStock(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return m, nil
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.Seq, &m.TransactionID, &m.ProductID, &m.CardID, &m.AgentID, &m.MovementType,
		&m.InitialQuantity, &m.InputQuantity, &m.OutputQuantity, &m.StockQuantity, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
