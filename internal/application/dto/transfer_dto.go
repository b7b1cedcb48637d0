package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransferRequest propone transferir el valor residual de una tarjeta a otra.
type CreateTransferRequest struct {
	IssuingCardID   string `json:"issuing_card_id" validate:"required"`
	ReceivingCardID string `json:"receiving_card_id" validate:"required"`
}

// UpdateTransferRequest despachador: Validate o Reject (no ambos). Los ids de tarjeta se
// aceptan solo para rechazar cambios.
type UpdateTransferRequest struct {
	IssuingCardID   *string `json:"issuing_card_id"`
	ReceivingCardID *string `json:"receiving_card_id"`
	Validate        bool    `json:"validate"`
	Reject          bool    `json:"reject"`
}

// TransferResponse salida de una transferencia con la valoración vigente.
type TransferResponse struct {
	ID              string          `json:"id"`
	IssuingCardID   string          `json:"issuing_card_id"`
	ReceivingCardID string          `json:"receiving_card_id"`
	AgentID         string          `json:"agent_id"`
	State           string          `json:"state"`
	Value           decimal.Decimal `json:"value"`
	Units           int             `json:"units"`
	ValidatedAt     *time.Time      `json:"validated_at"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (r *TransferResponse) AggregateID() string { return r.ID }
