package dto

import "time"

// CreateSettlementRequest entrada para liquidar unidades de una colecta contra una tarjeta.
// IsValidated omitido equivale a true; false se rechaza.
type CreateSettlementRequest struct {
	CardID       string `json:"card_id" validate:"required"`
	CollectionID string `json:"collection_id" validate:"required"`
	Number       int    `json:"number" validate:"required,min=1,max=372"`
	IsValidated  *bool  `json:"is_validated"`
}

// UpdateSettlementRequest campos de una liquidación (nil = sin cambio).
// CardID, CollectionID y AgentID se aceptan solo para rechazar cambios.
type UpdateSettlementRequest struct {
	CardID       *string `json:"card_id"`
	CollectionID *string `json:"collection_id"`
	AgentID      *string `json:"agent_id"`
	Number       *int    `json:"number" validate:"omitempty,min=1,max=372"`
	IsValidated  *bool   `json:"is_validated"`
}

// SettlementResponse salida de una liquidación.
type SettlementResponse struct {
	ID           string    `json:"id"`
	Number       int       `json:"number"`
	AgentID      string    `json:"agent_id"`
	CardID       string    `json:"card_id"`
	CollectionID *string   `json:"collection_id"`
	TransferID   *string   `json:"transfer_id"`
	IsValidated  bool      `json:"is_validated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *SettlementResponse) AggregateID() string { return r.CardID }

// SettlementListResponse liquidaciones de una tarjeta con el total validado.
type SettlementListResponse struct {
	CardID string               `json:"card_id"`
	Units  int                  `json:"units"`
	Items  []SettlementResponse `json:"items"`
}
