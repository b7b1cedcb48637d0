package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

// Datos de referencia: solo lectura desde el libro mayor. cmd/seed genera los INSERT.

var (
	_ repository.AgentRepository     = (*AgentRepo)(nil)
	_ repository.CollectorRepository = (*CollectorRepo)(nil)
	_ repository.CustomerRepository  = (*CustomerRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.CardTypeRepository  = (*CardTypeRepo)(nil)
)

// AgentRepo lectura de agentes.
type AgentRepo struct{ q Querier }

// NewAgentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAgentRepository(q Querier) *AgentRepo { return &AgentRepo{q: q} }

// GetByID obtiene un agente por ID.
func (r *AgentRepo) GetByID(ctx context.Context, id string) (*entity.Agent, error) {
	var a entity.Agent
	err := r.q.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM agents WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return &a, nil
}

// CollectorRepo lectura de colectores.
type CollectorRepo struct{ q Querier }

// NewCollectorRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCollectorRepository(q Querier) *CollectorRepo { return &CollectorRepo{q: q} }

// GetByID obtiene un colector por ID.
func (r *CollectorRepo) GetByID(ctx context.Context, id string) (*entity.Collector, error) {
	var c entity.Collector
	err := r.q.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM collectors WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collector: %w", err)
	}
	return &c, nil
}

// CustomerRepo lectura de clientes.
type CustomerRepo struct{ q Querier }

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo { return &CustomerRepo{q: q} }

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx, `
		SELECT id, name, phone, created_at, updated_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// ProductRepo lectura de productos.
type ProductRepo struct{ q Querier }

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo { return &ProductRepo{q: q} }

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// CardTypeRepo lectura de tipos con su lista de materiales.
type CardTypeRepo struct{ q Querier }

// NewCardTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCardTypeRepository(q Querier) *CardTypeRepo { return &CardTypeRepo{q: q} }

// GetByID obtiene un tipo por ID.
func (r *CardTypeRepo) GetByID(ctx context.Context, id string) (*entity.CardType, error) {
	var t entity.CardType
	err := r.q.QueryRow(ctx, `
		SELECT id, name, stake, products_ids, products_numbers FROM types WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Stake, &t.ProductsIDs, &t.ProductsNumbers)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get type: %w", err)
	}
	return &t, nil
}
