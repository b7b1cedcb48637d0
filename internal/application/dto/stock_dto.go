package dto

import "time"

// StockMovementRequest entrada o salida manual de un producto.
type StockMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// AmendStockRequest nueva cantidad para la última fila manual de un producto.
type AmendStockRequest struct {
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

// AvailabilityRequest productos y cantidades requeridas (arreglos paralelos).
type AvailabilityRequest struct {
	ProductsIDs     []string `json:"products_ids" validate:"required,min=1"`
	ProductsNumbers []int64  `json:"products_numbers" validate:"required,min=1"`
}

// ProductAvailability detalle por producto.
type ProductAvailability struct {
	ProductID string `json:"product_id"`
	InStock   bool   `json:"in_stock"`
	Balance   int64  `json:"balance"`
	Required  int64  `json:"required"`
	Available bool   `json:"available"`
}

// AvailabilityResponse Available es true solo si todos los productos pasan.
type AvailabilityResponse struct {
	Available bool                  `json:"available"`
	Products  []ProductAvailability `json:"products"`
}

// StockMovementResponse una fila del historial de stock.
type StockMovementResponse struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transaction_id"`
	ProductID       string    `json:"product_id"`
	CardID          *string   `json:"card_id"`
	AgentID         string    `json:"agent_id"`
	MovementType    string    `json:"movement_type"`
	InitialQuantity int64     `json:"initial_quantity"`
	InputQuantity   *int64    `json:"input_quantity"`
	OutputQuantity  *int64    `json:"output_quantity"`
	StockQuantity   int64     `json:"stock_quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (r *StockMovementResponse) AggregateID() string { return r.ProductID }

// ProductStockResponse saldo corriente de un producto.
type ProductStockResponse struct {
	ProductID      string     `json:"product_id"`
	InStock        bool       `json:"in_stock"`
	Quantity       int64      `json:"quantity"`
	LastMovementAt *time.Time `json:"last_movement_at"`
}

// StockHistoryResponse historial paginado de un producto (orden cronológico).
type StockHistoryResponse struct {
	ProductID string                  `json:"product_id"`
	Items     []StockMovementResponse `json:"items"`
	Page      PageResponse            `json:"page"`
}

// SatisfactionResponse resultado de una satisfacción o retrocesión.
type SatisfactionResponse struct {
	Card          CardResponse            `json:"card"`
	TransactionID string                  `json:"transaction_id"`
	Movements     []StockMovementResponse `json:"movements"`
}

func (r *SatisfactionResponse) AggregateID() string { return r.Card.ID }
