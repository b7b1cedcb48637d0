package entity

import "time"

// Estados derivados de una tarjeta.
const (
	CardStateOpen        = "open"
	CardStateSatisfied   = "satisfied"
	CardStateRepaid      = "repaid"
	CardStateTransferred = "transferred"
)

// Card es la tarjeta de ahorro prepagada de un cliente, asociada a un tipo.
// TypesNumber multiplica el monto por unidad del tipo.
type Card struct {
	ID            string
	CustomerID    string
	TypeID        string
	TypesNumber   int
	RepaidAt      *time.Time
	SatisfiedAt   *time.Time
	TransferredAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// State devuelve el estado de ciclo de vida (repaid y transferred son terminales).
func (c *Card) State() string {
	switch {
	case c.RepaidAt != nil:
		return CardStateRepaid
	case c.TransferredAt != nil:
		return CardStateTransferred
	case c.SatisfiedAt != nil:
		return CardStateSatisfied
	}
	return CardStateOpen
}
