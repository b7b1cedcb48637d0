package ledger

import (
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// EnsureOpen exige que la tarjeta admita liquidaciones, satisfacción, reembolso o transferencia.
func EnsureOpen(card *entity.Card) error {
	switch {
	case card.RepaidAt != nil:
		return domain.ErrCardRepaid
	case card.SatisfiedAt != nil:
		return domain.ErrCardSatisfied
	case card.TransferredAt != nil:
		return domain.ErrCardTransferred
	}
	return nil
}

// EnsureSatisfiable exige tarjeta abierta con exactamente el tope de unidades validadas.
func (r Rules) EnsureSatisfiable(card *entity.Card, units int) error {
	if err := EnsureOpen(card); err != nil {
		return err
	}
	if !r.IsFullySettled(units) {
		return domain.ErrCardNotFullySettled
	}
	return nil
}

// EnsureRetrocedable exige una tarjeta satisfecha que no haya salido del ciclo.
func EnsureRetrocedable(card *entity.Card) error {
	switch {
	case card.RepaidAt != nil:
		return domain.ErrCardRepaid
	case card.TransferredAt != nil:
		return domain.ErrCardTransferred
	case card.SatisfiedAt == nil:
		return domain.ErrCardNotSatisfied
	}
	return nil
}
