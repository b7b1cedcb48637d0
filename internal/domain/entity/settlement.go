package entity

import "time"

// Settlement asigna Number unidades a una tarjeta. Proviene de una colecta o de una transferencia
// (exactamente uno de CollectionID / TransferID).
type Settlement struct {
	ID           string
	Number       int
	AgentID      string
	CardID       string
	CollectionID *string
	TransferID   *string
	IsValidated  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FromTransfer indica si la liquidación fue creada por la validación de una transferencia.
func (s *Settlement) FromTransfer() bool {
	return s.CollectionID == nil
}
