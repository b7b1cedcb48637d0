package entity

import "time"

// Product representa un artículo entregado en las satisfacciones de tarjetas.
// El saldo no vive aquí: se deriva del último StockMovement del producto.
type Product struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
