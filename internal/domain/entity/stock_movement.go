package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementManualInput       = "manual-input"
	MovementManualOutput      = "manual-output"
	MovementNormalOutput      = "normal-output"
	MovementConstrainedOutput = "constrained-output"
	MovementRetrocessionInput = "retrocession-input"
)

// StockMovement es una fila del historial append-only de un producto.
// StockQuantity = InitialQuantity + InputQuantity | - OutputQuantity; InitialQuantity es el saldo de la fila anterior.
// TransactionID agrupa las filas escritas por una misma operación (p. ej. una satisfacción).
type StockMovement struct {
	ID              string
	Seq             int64
	TransactionID   string
	ProductID       string
	CardID          *string
	AgentID         string
	MovementType    string
	InitialQuantity int64
	InputQuantity   *int64
	OutputQuantity  *int64
	StockQuantity   int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsManual indica si el movimiento fue registrado manualmente (único caso enmendable).
func (m *StockMovement) IsManual() bool {
	return m.MovementType == MovementManualInput || m.MovementType == MovementManualOutput
}

// Quantity devuelve la cantidad movida (siempre positiva).
func (m *StockMovement) Quantity() int64 {
	if m.InputQuantity != nil {
		return *m.InputQuantity
	}
	if m.OutputQuantity != nil {
		return *m.OutputQuantity
	}
	return 0
}
