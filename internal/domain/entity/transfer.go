package entity

import "time"

// Estados de una transferencia.
const (
	TransferStatePending   = "pending"
	TransferStateValidated = "validated"
	TransferStateRejected  = "rejected"
)

// Transfer mueve el valor residual de la tarjeta emisora a la receptora.
// Como máximo uno de ValidatedAt / RejectedAt; una vez fijado, el registro es inmutable.
type Transfer struct {
	ID              string
	IssuingCardID   string
	ReceivingCardID string
	AgentID         string
	ValidatedAt     *time.Time
	RejectedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Processed indica si la transferencia ya fue validada o rechazada.
func (t *Transfer) Processed() bool {
	return t.ValidatedAt != nil || t.RejectedAt != nil
}

// State devuelve pending, validated o rejected.
func (t *Transfer) State() string {
	switch {
	case t.ValidatedAt != nil:
		return TransferStateValidated
	case t.RejectedAt != nil:
		return TransferStateRejected
	}
	return TransferStatePending
}
