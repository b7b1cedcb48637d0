package entity

import "time"

// Agent es el usuario interno que registra operaciones (autor de colectas, liquidaciones y movimientos).
type Agent struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Collector es el recolector de campo que deposita el efectivo diario.
type Collector struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Customer es el titular de una o varias tarjetas de ahorro. Phone va en E.164 o vacío.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
