package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

type stockRepo struct{ d *dataset }

func (r *stockRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.d.seq++
	m.Seq = r.d.seq
	r.d.stocks[m.ID] = *m
	return nil
}

func (r *stockRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	m, ok := r.d.stocks[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// sorted devuelve las filas que cumplen keep ordenadas por Seq ascendente.
func (r *stockRepo) sorted(keep func(entity.StockMovement) bool) []*entity.StockMovement {
	var out []*entity.StockMovement
	for _, m := range r.d.stocks {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (r *stockRepo) Latest(_ context.Context, productID string) (*entity.StockMovement, error) {
	rows := r.sorted(func(m entity.StockMovement) bool { return m.ProductID == productID })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

// LatestForUpdate: el mutex del Store ya serializa la transacción completa.
func (r *stockRepo) LatestForUpdate(ctx context.Context, productID string) (*entity.StockMovement, error) {
	return r.Latest(ctx, productID)
}

func (r *stockRepo) Update(_ context.Context, m *entity.StockMovement) error {
	if _, ok := r.d.stocks[m.ID]; !ok {
		return domain.ErrStockNotFound
	}
	r.d.stocks[m.ID] = *m
	return nil
}

func (r *stockRepo) Delete(_ context.Context, id string) error {
	delete(r.d.stocks, id)
	return nil
}

func (r *stockRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	rows := r.sorted(func(m entity.StockMovement) bool { return m.ProductID == productID })
	if offset > len(rows) {
		return []*entity.StockMovement{}, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *stockRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return r.sorted(func(m entity.StockMovement) bool { return m.TransactionID == transactionID }), nil
}

func (r *stockRepo) LatestByCard(_ context.Context, cardID string, movementTypes ...string) (*entity.StockMovement, error) {
	rows := r.sorted(func(m entity.StockMovement) bool {
		if m.CardID == nil || *m.CardID != cardID {
			return false
		}
		if len(movementTypes) == 0 {
			return true
		}
		for _, t := range movementTypes {
			if m.MovementType == t {
				return true
			}
		}
		return false
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func (r *stockRepo) CountByCardBetween(_ context.Context, cardID, movementType string, from, to time.Time) (int, error) {
	n := 0
	for _, m := range r.d.stocks {
		if m.CardID == nil || *m.CardID != cardID || m.MovementType != movementType {
			continue
		}
		if !m.CreatedAt.Before(from) && m.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}
