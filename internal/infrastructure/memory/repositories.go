package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
)

// Los repos devuelven copias: mutar el resultado no altera el dataset hasta Update.

type agentRepo struct{ d *dataset }

func (r *agentRepo) GetByID(_ context.Context, id string) (*entity.Agent, error) {
	a, ok := r.d.agents[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type collectorRepo struct{ d *dataset }

func (r *collectorRepo) GetByID(_ context.Context, id string) (*entity.Collector, error) {
	c, ok := r.d.collectors[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type customerRepo struct{ d *dataset }

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := r.d.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type productRepo struct{ d *dataset }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.d.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type typeRepo struct{ d *dataset }

func cloneType(t entity.CardType) entity.CardType {
	t.ProductsIDs = append([]string(nil), t.ProductsIDs...)
	t.ProductsNumbers = append([]int64(nil), t.ProductsNumbers...)
	return t
}

func (r *typeRepo) GetByID(_ context.Context, id string) (*entity.CardType, error) {
	t, ok := r.d.types[id]
	if !ok {
		return nil, nil
	}
	t = cloneType(t)
	return &t, nil
}

// ── Tarjetas ─────────────────────────────────────────────────────────────────

type cardRepo struct{ d *dataset }

func (r *cardRepo) Create(_ context.Context, c *entity.Card) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.d.cards[c.ID] = *c
	return nil
}

func (r *cardRepo) GetByID(_ context.Context, id string) (*entity.Card, error) {
	c, ok := r.d.cards[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *cardRepo) GetForUpdate(ctx context.Context, id string) (*entity.Card, error) {
	return r.GetByID(ctx, id)
}

func (r *cardRepo) Update(_ context.Context, c *entity.Card) error {
	if _, ok := r.d.cards[c.ID]; !ok {
		return domain.ErrCardNotFound
	}
	r.d.cards[c.ID] = *c
	return nil
}

// ── Colectas ─────────────────────────────────────────────────────────────────

type collectionRepo struct{ d *dataset }

func (r *collectionRepo) Create(ctx context.Context, c *entity.Collection) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	// Equivalente al índice único (collector_id, collected_at) de PostgreSQL.
	dup, _ := r.ExistsForCollectorOnDay(ctx, c.CollectorID, c.CollectedAt, c.ID)
	if dup {
		return domain.ErrDuplicateCollection
	}
	r.d.collections[c.ID] = *c
	return nil
}

func (r *collectionRepo) GetByID(_ context.Context, id string) (*entity.Collection, error) {
	c, ok := r.d.collections[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *collectionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Collection, error) {
	return r.GetByID(ctx, id)
}

func (r *collectionRepo) Update(ctx context.Context, c *entity.Collection) error {
	if _, ok := r.d.collections[c.ID]; !ok {
		return domain.ErrCollectionNotFound
	}
	dup, _ := r.ExistsForCollectorOnDay(ctx, c.CollectorID, c.CollectedAt, c.ID)
	if dup {
		return domain.ErrDuplicateCollection
	}
	r.d.collections[c.ID] = *c
	return nil
}

func (r *collectionRepo) Delete(_ context.Context, id string) error {
	delete(r.d.collections, id)
	return nil
}

func (r *collectionRepo) ExistsForCollectorOnDay(_ context.Context, collectorID string, day time.Time, excludeID string) (bool, error) {
	for _, c := range r.d.collections {
		if c.ID == excludeID || c.CollectorID != collectorID {
			continue
		}
		if ledger.SameDay(c.CollectedAt, day) {
			return true, nil
		}
	}
	return false, nil
}

// ── Liquidaciones ────────────────────────────────────────────────────────────

type settlementRepo struct{ d *dataset }

func (r *settlementRepo) Create(_ context.Context, s *entity.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	r.d.settlements[s.ID] = *s
	return nil
}

func (r *settlementRepo) GetByID(_ context.Context, id string) (*entity.Settlement, error) {
	s, ok := r.d.settlements[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *settlementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Settlement, error) {
	return r.GetByID(ctx, id)
}

func (r *settlementRepo) Update(_ context.Context, s *entity.Settlement) error {
	if _, ok := r.d.settlements[s.ID]; !ok {
		return domain.ErrSettlementNotFound
	}
	r.d.settlements[s.ID] = *s
	return nil
}

func (r *settlementRepo) Delete(_ context.Context, id string) error {
	delete(r.d.settlements, id)
	return nil
}

func (r *settlementRepo) filter(keep func(entity.Settlement) bool) []*entity.Settlement {
	var out []*entity.Settlement
	for _, s := range r.d.settlements {
		if keep(s) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *settlementRepo) ListByCard(_ context.Context, cardID string) ([]*entity.Settlement, error) {
	return r.filter(func(s entity.Settlement) bool { return s.CardID == cardID }), nil
}

func (r *settlementRepo) ListByTransfer(_ context.Context, transferID string) ([]*entity.Settlement, error) {
	return r.filter(func(s entity.Settlement) bool {
		return s.TransferID != nil && *s.TransferID == transferID
	}), nil
}

func (r *settlementRepo) ValidatedUnits(_ context.Context, cardID string) (int, error) {
	units := 0
	for _, s := range r.d.settlements {
		if s.CardID == cardID && s.IsValidated {
			units += s.Number
		}
	}
	return units, nil
}

func (r *settlementRepo) ExistsByCollection(_ context.Context, collectionID string) (bool, error) {
	for _, s := range r.d.settlements {
		if s.CollectionID != nil && *s.CollectionID == collectionID {
			return true, nil
		}
	}
	return false, nil
}

// ── Transferencias ───────────────────────────────────────────────────────────

type transferRepo struct{ d *dataset }

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	r.d.transfers[t.ID] = *t
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	t, ok := r.d.transfers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) Update(_ context.Context, t *entity.Transfer) error {
	if _, ok := r.d.transfers[t.ID]; !ok {
		return domain.ErrTransferNotFound
	}
	r.d.transfers[t.ID] = *t
	return nil
}

func (r *transferRepo) Delete(_ context.Context, id string) error {
	delete(r.d.transfers, id)
	return nil
}
