// Package memory implementa los puertos del libro mayor en memoria (desarrollo y tests).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// dataset es el estado completo del almacén. Se guardan valores (no punteros) para que
// clone() produzca una instantánea independiente.
type dataset struct {
	agents      map[string]entity.Agent
	collectors  map[string]entity.Collector
	customers   map[string]entity.Customer
	products    map[string]entity.Product
	types       map[string]entity.CardType
	cards       map[string]entity.Card
	collections map[string]entity.Collection
	settlements map[string]entity.Settlement
	transfers   map[string]entity.Transfer
	stocks      map[string]entity.StockMovement
	seq         int64
}

func newDataset() *dataset {
	return &dataset{
		agents:      make(map[string]entity.Agent),
		collectors:  make(map[string]entity.Collector),
		customers:   make(map[string]entity.Customer),
		products:    make(map[string]entity.Product),
		types:       make(map[string]entity.CardType),
		cards:       make(map[string]entity.Card),
		collections: make(map[string]entity.Collection),
		settlements: make(map[string]entity.Settlement),
		transfers:   make(map[string]entity.Transfer),
		stocks:      make(map[string]entity.StockMovement),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *dataset) clone() *dataset {
	return &dataset{
		agents:      cloneMap(d.agents),
		collectors:  cloneMap(d.collectors),
		customers:   cloneMap(d.customers),
		products:    cloneMap(d.products),
		types:       cloneMap(d.types),
		cards:       cloneMap(d.cards),
		collections: cloneMap(d.collections),
		settlements: cloneMap(d.settlements),
		transfers:   cloneMap(d.transfers),
		stocks:      cloneMap(d.stocks),
		seq:         d.seq,
	}
}

func (d *dataset) repositories() repository.Repositories {
	return repository.Repositories{
		Agents:      &agentRepo{d: d},
		Collectors:  &collectorRepo{d: d},
		Customers:   &customerRepo{d: d},
		Products:    &productRepo{d: d},
		Types:       &typeRepo{d: d},
		Cards:       &cardRepo{d: d},
		Collections: &collectionRepo{d: d},
		Settlements: &settlementRepo{d: d},
		Stocks:      &stockRepo{d: d},
		Transfers:   &transferRepo{d: d},
	}
}

// Store serializa las transacciones con un mutex. Cada Run trabaja sobre una copia del
// dataset que solo reemplaza al original si fn no devuelve error (rollback = descartar la copia).
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Run implementa ports.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(work.repositories()); err != nil {
		return err
	}
	s.data = work
	return nil
}
