package card

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/observe"
	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// UseCase ciclo de vida de la tarjeta: alta, consulta y reembolso.
// Satisfacción y retrocesión viven en el libro de stock; la transferencia en su motor.
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

// Create abre una tarjeta para un cliente existente con un tipo existente.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateCardRequest) (out *dto.CardResponse, err error) {
	ctx, op := observe.Start(ctx, "card.create")
	defer func() { op.End(err) }()

	if in.TypesNumber < 1 {
		return nil, domain.ErrInvalidNumber
	}
	now := uc.now()
	var snap *Snapshot
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		customer, err := repos.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return domain.Storage("obtener cliente", err)
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}
		t, err := repos.Types.GetByID(ctx, in.TypeID)
		if err != nil {
			return domain.Storage("obtener tipo", err)
		}
		if t == nil {
			return domain.ErrTypeNotFound
		}
		c := &entity.Card{
			ID:          uuid.New().String(),
			CustomerID:  in.CustomerID,
			TypeID:      in.TypeID,
			TypesNumber: in.TypesNumber,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Cards.Create(ctx, c); err != nil {
			return domain.Storage("crear tarjeta", err)
		}
		snap = &Snapshot{Card: c, Type: t}
		return nil
	})
	if err != nil {
		return nil, domain.Storage("card.create", err)
	}
	out = ToResponse(snap, uc.rules)
	uc.log.Info().Str("card_id", out.ID).Str("customer_id", out.CustomerID).Msg("tarjeta creada")
	uc.notifier.Notify(ctx, ports.EventCardCreated, out)
	return out, nil
}

// Get devuelve la tarjeta con sus unidades validadas y estado.
func (uc *UseCase) Get(ctx context.Context, id string) (out *dto.CardResponse, err error) {
	ctx, op := observe.Start(ctx, "card.get", attribute.String("card_id", id))
	defer func() { op.End(err) }()

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		snap, err := Load(ctx, repos, id, false)
		if err != nil {
			return err
		}
		out = ToResponse(snap, uc.rules)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("card.get", err)
	}
	return out, nil
}

// Repay marca la tarjeta como reembolsada (terminal). Requiere que no esté reembolsada,
// satisfecha ni transferida.
func (uc *UseCase) Repay(ctx context.Context, id, agentID string) (out *dto.CardResponse, err error) {
	ctx, op := observe.Start(ctx, "card.repay", attribute.String("card_id", id))
	defer func() { op.End(err) }()

	now := uc.now()
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		agent, err := repos.Agents.GetByID(ctx, agentID)
		if err != nil {
			return domain.Storage("obtener agente", err)
		}
		if agent == nil {
			return domain.ErrAgentNotFound
		}
		snap, err := Load(ctx, repos, id, true)
		if err != nil {
			return err
		}
		if err := ledger.EnsureOpen(snap.Card); err != nil {
			return err
		}
		snap.Card.RepaidAt = &now
		snap.Card.UpdatedAt = now
		if err := repos.Cards.Update(ctx, snap.Card); err != nil {
			return domain.Storage("actualizar tarjeta", err)
		}
		out = ToResponse(snap, uc.rules)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("card.repay", err)
	}
	uc.log.Info().Str("card_id", id).Str("agent_id", agentID).Int("units", out.Units).Msg("tarjeta reembolsada")
	uc.notifier.Notify(ctx, ports.EventCardRepaid, out)
	return out, nil
}
