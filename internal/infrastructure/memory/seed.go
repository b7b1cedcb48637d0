package memory

import (
	"time"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// Los datos de referencia se administran fuera del libro mayor; estos helpers los cargan
// directamente (modo memory del servidor y tests).

func (s *Store) AddAgent(a entity.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.agents[a.ID] = a
}

func (s *Store) AddCollector(c entity.Collector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.collectors[c.ID] = c
}

func (s *Store) AddCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.ID] = c
}

func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

func (s *Store) AddType(t entity.CardType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.types[t.ID] = cloneType(t)
}

// AddCard inserta una tarjeta ya existente (p. ej. migrada).
func (s *Store) AddCard(c entity.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
		c.UpdatedAt = c.CreatedAt
	}
	s.data.cards[c.ID] = c
}

// AddSettlement inserta una liquidación histórica sin tocar saldos de colecta.
func (s *Store) AddSettlement(st entity.Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
		st.UpdatedAt = st.CreatedAt
	}
	s.data.settlements[st.ID] = st
}
