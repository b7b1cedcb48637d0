package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Ahorro-api/internal/application/card"
	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/observe"
	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// UseCase motor de liquidaciones: asigna saldo de colectas a unidades de una tarjeta
// sin superar el tope. units = Σ number de las liquidaciones validadas.
type UseCase struct {
	tx       ports.TxRunner
	rules    ledger.Rules
	notifier ports.Notifier
	log      *logger.Logger
	now      func() time.Time
}

// Option configura el caso de uso.
type Option func(*UseCase)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, rules ledger.Rules, notifier ports.Notifier, log *logger.Logger, opts ...Option) *UseCase {
	uc := &UseCase{tx: tx, rules: rules, notifier: notifier, log: log, now: time.Now}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Create liquida number unidades contra la tarjeta consumiendo number × typesNumber × stake
// del saldo de la colecta. Siempre se crea validada.
func (uc *UseCase) Create(ctx context.Context, agentID string, in dto.CreateSettlementRequest) (out *dto.SettlementResponse, err error) {
	ctx, op := observe.Start(ctx, "settlement.create",
		attribute.String("card_id", in.CardID), attribute.String("collection_id", in.CollectionID))
	defer func() { op.End(err) }()

	if in.IsValidated != nil && !*in.IsValidated {
		return nil, domain.ErrUnvalidatedSettlementCreation
	}
	if in.Number < 1 {
		return nil, domain.ErrInvalidNumber
	}
	now := uc.now()
	var s *entity.Settlement
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		agent, err := repos.Agents.GetByID(ctx, agentID)
		if err != nil {
			return domain.Storage("obtener agente", err)
		}
		if agent == nil {
			return domain.ErrAgentNotFound
		}
		snap, err := card.Load(ctx, repos, in.CardID, true)
		if err != nil {
			return err
		}
		if err := ledger.EnsureOpen(snap.Card); err != nil {
			return err
		}
		if uc.rules.ExceedsCap(snap.Units, in.Number) {
			return domain.ErrRiskOfOverSettlement
		}
		col, err := lockCollection(ctx, repos, in.CollectionID)
		if err != nil {
			return err
		}
		if err := consume(ctx, repos, col, amountOf(snap, in.Number), now); err != nil {
			return err
		}
		collectionID := col.ID
		s = &entity.Settlement{
			ID:           uuid.New().String(),
			Number:       in.Number,
			AgentID:      agentID,
			CardID:       snap.Card.ID,
			CollectionID: &collectionID,
			IsValidated:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return domain.Storage("crear liquidación", repos.Settlements.Create(ctx, s))
	})
	if err != nil {
		return nil, domain.Storage("settlement.create", err)
	}
	metrics.SettledUnitsTotal.Add(float64(s.Number))
	out = toResponse(s)
	uc.log.Info().Str("settlement_id", s.ID).Str("card_id", s.CardID).Str("collection_id", in.CollectionID).Int("number", s.Number).Msg("liquidación creada")
	uc.notifier.Notify(ctx, ports.EventSettlementCreated, out)
	return out, nil
}

// Update aplica las transiciones de validación/número con contabilidad por delta:
// validada→invalidada devuelve el monto a la colecta; validada con nuevo número re-verifica tope y
// saldo descontando la contribución previa; invalidada→validada se trata como asignación nueva;
// invalidada sin validar solo actualiza el registro.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateSettlementRequest) (out *dto.SettlementResponse, err error) {
	ctx, op := observe.Start(ctx, "settlement.update", attribute.String("settlement_id", id))
	defer func() { op.End(err) }()

	if in.Number != nil && *in.Number < 1 {
		return nil, domain.ErrInvalidNumber
	}
	now := uc.now()
	var (
		s          *entity.Settlement
		addedUnits int
	)
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		s, err = lockSettlement(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := ensureReferencesUnchanged(s, in); err != nil {
			return err
		}

		newNumber := s.Number
		if in.Number != nil {
			newNumber = *in.Number
		}
		newValidated := s.IsValidated
		if in.IsValidated != nil {
			newValidated = *in.IsValidated
		}
		changed := newNumber != s.Number || newValidated != s.IsValidated
		if changed && s.FromTransfer() {
			return domain.ErrSettlementFromTransfer
		}

		switch {
		case s.IsValidated && !newValidated:
			if newNumber != s.Number {
				return domain.ErrNumberChangeOnInvalidation
			}
			snap, col, err := uc.lockForBalance(ctx, repos, s)
			if err != nil {
				return err
			}
			if err := restore(ctx, repos, col, amountOf(snap, s.Number), now); err != nil {
				return err
			}
			addedUnits = -s.Number

		case s.IsValidated && newNumber != s.Number:
			snap, col, err := uc.lockForBalance(ctx, repos, s)
			if err != nil {
				return err
			}
			if uc.rules.ExceedsCap(snap.Units-s.Number, newNumber) {
				return domain.ErrRiskOfOverSettlement
			}
			// rest + monto previo - monto nuevo
			rest := col.Rest.Add(amountOf(snap, s.Number))
			if err := consumeFrom(ctx, repos, col, rest, amountOf(snap, newNumber), now); err != nil {
				return err
			}
			addedUnits = newNumber - s.Number

		case !s.IsValidated && newValidated:
			snap, col, err := uc.lockForBalance(ctx, repos, s)
			if err != nil {
				return err
			}
			if uc.rules.ExceedsCap(snap.Units, newNumber) {
				return domain.ErrRiskOfOverSettlement
			}
			if err := consume(ctx, repos, col, amountOf(snap, newNumber), now); err != nil {
				return err
			}
			addedUnits = newNumber
		}

		s.Number = newNumber
		s.IsValidated = newValidated
		s.UpdatedAt = now
		return domain.Storage("actualizar liquidación", repos.Settlements.Update(ctx, s))
	})
	if err != nil {
		return nil, domain.Storage("settlement.update", err)
	}
	if addedUnits > 0 {
		metrics.SettledUnitsTotal.Add(float64(addedUnits))
	}
	out = toResponse(s)
	uc.log.Info().Str("settlement_id", id).Int("number", s.Number).Bool("is_validated", s.IsValidated).Int("delta_units", addedUnits).Msg("liquidación actualizada")
	uc.notifier.Notify(ctx, ports.EventSettlementUpdated, out)
	return out, nil
}

// Remove elimina una liquidación de colecta devolviendo su monto si estaba validada.
// Las originadas por transferencia solo se eliminan junto con la transferencia.
func (uc *UseCase) Remove(ctx context.Context, id string) (err error) {
	ctx, op := observe.Start(ctx, "settlement.remove", attribute.String("settlement_id", id))
	defer func() { op.End(err) }()

	now := uc.now()
	var s *entity.Settlement
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		s, err = lockSettlement(ctx, repos, id)
		if err != nil {
			return err
		}
		if s.FromTransfer() {
			return domain.ErrSettlementNotDeletable
		}
		if s.IsValidated {
			snap, col, err := uc.lockForBalance(ctx, repos, s)
			if err != nil {
				return err
			}
			if err := restore(ctx, repos, col, amountOf(snap, s.Number), now); err != nil {
				return err
			}
		}
		return domain.Storage("eliminar liquidación", repos.Settlements.Delete(ctx, s.ID))
	})
	if err != nil {
		return domain.Storage("settlement.remove", err)
	}
	out := toResponse(s)
	uc.log.Info().Str("settlement_id", id).Str("card_id", s.CardID).Msg("liquidación eliminada")
	uc.notifier.Notify(ctx, ports.EventSettlementDeleted, out)
	return nil
}

// Get devuelve una liquidación.
func (uc *UseCase) Get(ctx context.Context, id string) (out *dto.SettlementResponse, err error) {
	ctx, op := observe.Start(ctx, "settlement.get", attribute.String("settlement_id", id))
	defer func() { op.End(err) }()

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		s, err := repos.Settlements.GetByID(ctx, id)
		if err != nil {
			return domain.Storage("obtener liquidación", err)
		}
		if s == nil {
			return domain.ErrSettlementNotFound
		}
		out = toResponse(s)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("settlement.get", err)
	}
	return out, nil
}

// ListByCard lista las liquidaciones de una tarjeta con sus unidades validadas.
func (uc *UseCase) ListByCard(ctx context.Context, cardID string) (out *dto.SettlementListResponse, err error) {
	ctx, op := observe.Start(ctx, "settlement.list_by_card", attribute.String("card_id", cardID))
	defer func() { op.End(err) }()

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Cards.GetByID(ctx, cardID)
		if err != nil {
			return domain.Storage("obtener tarjeta", err)
		}
		if c == nil {
			return domain.ErrCardNotFound
		}
		list, err := repos.Settlements.ListByCard(ctx, cardID)
		if err != nil {
			return domain.Storage("listar liquidaciones", err)
		}
		out = &dto.SettlementListResponse{CardID: cardID, Items: make([]dto.SettlementResponse, 0, len(list))}
		for _, s := range list {
			if s.IsValidated {
				out.Units += s.Number
			}
			out.Items = append(out.Items, *toResponse(s))
		}
		return nil
	})
	if err != nil {
		return nil, domain.Storage("settlement.list_by_card", err)
	}
	return out, nil
}

// Units devuelve las unidades validadas de la tarjeta.
func (uc *UseCase) Units(ctx context.Context, cardID string) (units int, err error) {
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		snap, err := card.Load(ctx, repos, cardID, false)
		if err != nil {
			return err
		}
		units = snap.Units
		return nil
	})
	return units, domain.Storage("settlement.units", err)
}

// lockForBalance bloquea tarjeta y colecta (en ese orden) para una transición que mueve unidades.
// La tarjeta debe admitir liquidaciones.
func (uc *UseCase) lockForBalance(ctx context.Context, repos repository.Repositories, s *entity.Settlement) (*card.Snapshot, *entity.Collection, error) {
	snap, err := card.Load(ctx, repos, s.CardID, true)
	if err != nil {
		return nil, nil, err
	}
	if err := ledger.EnsureOpen(snap.Card); err != nil {
		return nil, nil, err
	}
	col, err := lockCollection(ctx, repos, *s.CollectionID)
	if err != nil {
		return nil, nil, err
	}
	return snap, col, nil
}

func ensureReferencesUnchanged(s *entity.Settlement, in dto.UpdateSettlementRequest) error {
	if in.CardID != nil && *in.CardID != s.CardID {
		return domain.ErrSettlementCardImmutable
	}
	if in.CollectionID != nil && (s.CollectionID == nil || *in.CollectionID != *s.CollectionID) {
		return domain.ErrSettlementCollectionImmutable
	}
	if in.AgentID != nil && *in.AgentID != s.AgentID {
		return domain.ErrSettlementAgentImmutable
	}
	return nil
}

func amountOf(snap *card.Snapshot, number int) decimal.Decimal {
	return ledger.SettlementAmount(number, snap.Card.TypesNumber, snap.Type.Stake)
}

// consume descuenta amount de rest o falla con InsufficientCollectionAmount.
func consume(ctx context.Context, repos repository.Repositories, col *entity.Collection, amount decimal.Decimal, now time.Time) error {
	return consumeFrom(ctx, repos, col, col.Rest, amount, now)
}

func consumeFrom(ctx context.Context, repos repository.Repositories, col *entity.Collection, rest, amount decimal.Decimal, now time.Time) error {
	newRest := rest.Sub(amount)
	if newRest.IsNegative() {
		return domain.ErrInsufficientCollectionAmount
	}
	col.Rest = newRest
	col.UpdatedAt = now
	return domain.Storage("actualizar colecta", repos.Collections.Update(ctx, col))
}

// restore devuelve amount a rest.
func restore(ctx context.Context, repos repository.Repositories, col *entity.Collection, amount decimal.Decimal, now time.Time) error {
	col.Rest = col.Rest.Add(amount)
	col.UpdatedAt = now
	return domain.Storage("actualizar colecta", repos.Collections.Update(ctx, col))
}

func lockCollection(ctx context.Context, repos repository.Repositories, id string) (*entity.Collection, error) {
	col, err := repos.Collections.GetForUpdate(ctx, id)
	if err != nil {
		return nil, domain.Storage("bloquear colecta", err)
	}
	if col == nil {
		return nil, domain.ErrCollectionNotFound
	}
	return col, nil
}

func lockSettlement(ctx context.Context, repos repository.Repositories, id string) (*entity.Settlement, error) {
	s, err := repos.Settlements.GetForUpdate(ctx, id)
	if err != nil {
		return nil, domain.Storage("bloquear liquidación", err)
	}
	if s == nil {
		return nil, domain.ErrSettlementNotFound
	}
	return s, nil
}

func toResponse(s *entity.Settlement) *dto.SettlementResponse {
	return &dto.SettlementResponse{
		ID:           s.ID,
		Number:       s.Number,
		AgentID:      s.AgentID,
		CardID:       s.CardID,
		CollectionID: s.CollectionID,
		TransferID:   s.TransferID,
		IsValidated:  s.IsValidated,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
