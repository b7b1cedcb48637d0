package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection es el depósito diario de un colector. Rest es el saldo aún no liquidado (0 <= Rest <= Amount).
type Collection struct {
	ID          string
	CollectorID string
	AgentID     string
	Amount      decimal.Decimal
	Rest        decimal.Decimal
	CollectedAt time.Time // fecha (día calendario)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Consumed devuelve el monto ya asignado a liquidaciones.
func (c *Collection) Consumed() decimal.Decimal {
	return c.Amount.Sub(c.Rest)
}
