package repository

import (
	"context"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// Los datos de referencia (agentes, colectores, clientes, productos, tipos) se administran fuera del
// libro mayor; aquí solo se consultan. GetByID devuelve (nil, nil) si no existe.

// CustomerRepository puerto de lectura de clientes.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}

// AgentRepository puerto de lectura de agentes.
type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Agent, error)
}

// CollectorRepository puerto de lectura de colectores.
type CollectorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Collector, error)
}
