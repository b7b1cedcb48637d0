package dto

import "time"

// Modos de satisfacción.
const (
	SatisfactionNormal      = "normal"
	SatisfactionConstrained = "constrained"
)

// CreateCardRequest entrada para abrir una tarjeta a un cliente.
type CreateCardRequest struct {
	CustomerID  string `json:"customer_id" validate:"required"`
	TypeID      string `json:"type_id" validate:"required"`
	TypesNumber int    `json:"types_number" validate:"required,min=1"`
}

// SatisfyCardRequest entrega de bienes. En modo constrained, ProductsIDs/ProductsNumbers
// reemplazan la lista de materiales del tipo. SatisfiedAt omitido = ahora.
type SatisfyCardRequest struct {
	Mode            string     `json:"mode" validate:"omitempty,oneof=normal constrained"`
	ProductsIDs     []string   `json:"products_ids"`
	ProductsNumbers []int64    `json:"products_numbers"`
	SatisfiedAt     *time.Time `json:"satisfied_at"`
}

// CardResponse salida de una tarjeta con su estado y unidades validadas.
type CardResponse struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	TypeID        string     `json:"type_id"`
	TypesNumber   int        `json:"types_number"`
	State         string     `json:"state"`
	Units         int        `json:"units"`
	Remaining     int        `json:"remaining"`
	RepaidAt      *time.Time `json:"repaid_at"`
	SatisfiedAt   *time.Time `json:"satisfied_at"`
	TransferredAt *time.Time `json:"transferred_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (r *CardResponse) AggregateID() string { return r.ID }
