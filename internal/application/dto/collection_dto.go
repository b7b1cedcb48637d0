package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operaciones de ajuste de colecta.
const (
	AdjustIncrease = "increase"
	AdjustDecrease = "decrease"
)

// CreateCollectionRequest entrada para registrar el depósito diario de un colector.
// CollectedAt acepta "2006-01-02" o RFC3339; el agente sale del token.
type CreateCollectionRequest struct {
	CollectorID string          `json:"collector_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	CollectedAt string          `json:"collected_at" validate:"required"`
}

// AdjustCollectionRequest suma o resta Amount a amount y rest.
type AdjustCollectionRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Operation string          `json:"operation" validate:"required,oneof=increase decrease"`
}

// UpdateCollectionRequest campos modificables de una colecta (nil = sin cambio).
// AgentID se acepta solo para rechazarlo si difiere del autor.
type UpdateCollectionRequest struct {
	CollectorID *string          `json:"collector_id" validate:"omitempty,min=1"`
	AgentID     *string          `json:"agent_id"`
	Amount      *decimal.Decimal `json:"amount"`
	CollectedAt *string          `json:"collected_at"`
}

// CollectionResponse salida de una colecta.
type CollectionResponse struct {
	ID          string          `json:"id"`
	CollectorID string          `json:"collector_id"`
	AgentID     string          `json:"agent_id"`
	Amount      decimal.Decimal `json:"amount"`
	Rest        decimal.Decimal `json:"rest"`
	CollectedAt string          `json:"collected_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *CollectionResponse) AggregateID() string { return r.ID }
