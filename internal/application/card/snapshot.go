package card

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

// Snapshot reúne tarjeta, tipo y unidades validadas leídos una sola vez dentro de la transacción.
// Se pasa explícitamente entre pasos de una misma operación.
type Snapshot struct {
	Card  *entity.Card
	Type  *entity.CardType
	Units int
}

// Load carga la tarjeta (bloqueándola si forUpdate), su tipo y sus unidades validadas.
func Load(ctx context.Context, repos repository.Repositories, id string, forUpdate bool) (*Snapshot, error) {
	var (
		c   *entity.Card
		err error
	)
	if forUpdate {
		c, err = repos.Cards.GetForUpdate(ctx, id)
	} else {
		c, err = repos.Cards.GetByID(ctx, id)
	}
	if err != nil {
		return nil, domain.Storage("obtener tarjeta", err)
	}
	if c == nil {
		return nil, domain.ErrCardNotFound
	}
	t, err := repos.Types.GetByID(ctx, c.TypeID)
	if err != nil {
		return nil, domain.Storage("obtener tipo", err)
	}
	if t == nil {
		return nil, domain.ErrTypeNotFound
	}
	units, err := repos.Settlements.ValidatedUnits(ctx, c.ID)
	if err != nil {
		return nil, domain.Storage("sumar unidades", err)
	}
	return &Snapshot{Card: c, Type: t, Units: units}, nil
}

// Value valor liquidado V = units × typesNumber × stake.
func (s *Snapshot) Value() decimal.Decimal {
	return ledger.CardValue(s.Units, s.Card.TypesNumber, s.Type.Stake)
}

// ToResponse construye la salida HTTP de la tarjeta.
func ToResponse(s *Snapshot, rules ledger.Rules) *dto.CardResponse {
	c := s.Card
	return &dto.CardResponse{
		ID:            c.ID,
		CustomerID:    c.CustomerID,
		TypeID:        c.TypeID,
		TypesNumber:   c.TypesNumber,
		State:         c.State(),
		Units:         s.Units,
		Remaining:     rules.Remaining(s.Units),
		RepaidAt:      c.RepaidAt,
		SatisfiedAt:   c.SatisfiedAt,
		TransferredAt: c.TransferredAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
