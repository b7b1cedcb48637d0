package collection

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

const dateLayout = "2006-01-02"

// UseCase libro de colectas: depósito diario de cada colector y su saldo sin liquidar (rest).
type UseCase struct {
	tx       ports.TxRunner
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
func NewUseCase(tx ports.TxRunner, notifier ports.Notifier, log *logger.Logger, opts ...Option) *UseCase {
	uc := &UseCase{tx: tx, notifier: notifier, log: log, now: time.Now}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Create registra la colecta del día con rest = amount. Una por colector y día calendario.
func (uc *UseCase) Create(ctx context.Context, agentID string, in dto.CreateCollectionRequest) (out *dto.CollectionResponse, err error) {
	ctx, op := observe.Start(ctx, "collection.create", attribute.String("collector_id", in.CollectorID))
	defer func() { op.End(err) }()

	if err := ledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	now := uc.now()
	day, err := ledger.ParseCollectionDate(in.CollectedAt, now)
	if err != nil {
		return nil, err
	}

	var c *entity.Collection
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureCollector(ctx, repos, in.CollectorID); err != nil {
			return err
		}
		agent, err := repos.Agents.GetByID(ctx, agentID)
		if err != nil {
			return domain.Storage("obtener agente", err)
		}
		if agent == nil {
			return domain.ErrAgentNotFound
		}
		dup, err := repos.Collections.ExistsForCollectorOnDay(ctx, in.CollectorID, day, "")
		if err != nil {
			return domain.Storage("verificar colecta del día", err)
		}
		if dup {
			return domain.ErrDuplicateCollection
		}
		c = &entity.Collection{
			ID:          uuid.New().String(),
			CollectorID: in.CollectorID,
			AgentID:     agentID,
			Amount:      in.Amount,
			Rest:        in.Amount,
			CollectedAt: day,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return domain.Storage("crear colecta", repos.Collections.Create(ctx, c))
	})
	if err != nil {
		return nil, domain.Storage("collection.create", err)
	}
	out = toResponse(c)
	uc.log.Info().Str("collection_id", c.ID).Str("collector_id", c.CollectorID).Str("amount", c.Amount.String()).Msg("colecta registrada")
	uc.notifier.Notify(ctx, ports.EventCollectionCreated, out)
	return out, nil
}

// Get devuelve una colecta.
func (uc *UseCase) Get(ctx context.Context, id string) (out *dto.CollectionResponse, err error) {
	ctx, op := observe.Start(ctx, "collection.get", attribute.String("collection_id", id))
	defer func() { op.End(err) }()

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Collections.GetByID(ctx, id)
		if err != nil {
			return domain.Storage("obtener colecta", err)
		}
		if c == nil {
			return domain.ErrCollectionNotFound
		}
		out = toResponse(c)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("collection.get", err)
	}
	return out, nil
}

// Adjust suma (increase) o resta (decrease) delta a amount y rest.
// La resta falla con InsufficientAmount si rest quedaría negativo.
func (uc *UseCase) Adjust(ctx context.Context, id string, in dto.AdjustCollectionRequest) (out *dto.CollectionResponse, err error) {
	ctx, op := observe.Start(ctx, "collection.adjust", attribute.String("collection_id", id))
	defer func() { op.End(err) }()

	delta := in.Amount
	if err := ledger.ValidateAmount(delta); err != nil {
		return nil, err
	}
	if in.Operation != dto.AdjustIncrease && in.Operation != dto.AdjustDecrease {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := lockCollection(ctx, repos, id)
		if err != nil {
			return err
		}
		if in.Operation == dto.AdjustIncrease {
			amount := c.Amount.Add(delta)
			if err := ledger.ValidateAmount(amount); err != nil {
				return err
			}
			c.Amount = amount
			c.Rest = c.Rest.Add(delta)
		} else {
			rest := c.Rest.Sub(delta)
			if rest.IsNegative() {
				return domain.ErrInsufficientAmount
			}
			c.Amount = c.Amount.Sub(delta)
			c.Rest = rest
		}
		c.UpdatedAt = now
		if err := repos.Collections.Update(ctx, c); err != nil {
			return domain.Storage("actualizar colecta", err)
		}
		out = toResponse(c)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("collection.adjust", err)
	}
	uc.log.Info().Str("collection_id", id).Str("operation", in.Operation).Str("delta", delta.String()).Str("rest", out.Rest.String()).Msg("colecta ajustada")
	uc.notifier.Notify(ctx, ports.EventCollectionAdjusted, out)
	return out, nil
}

// Update modifica colector, fecha o monto. El agente nunca cambia; con liquidaciones asociadas
// colector, fecha y monto quedan fijos. Un cambio de monto conserva lo ya consumido (amount - rest).
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateCollectionRequest) (out *dto.CollectionResponse, err error) {
	ctx, op := observe.Start(ctx, "collection.update", attribute.String("collection_id", id))
	defer func() { op.End(err) }()

	now := uc.now()
	var day *time.Time
	if in.CollectedAt != nil {
		d, err := ledger.ParseCollectionDate(*in.CollectedAt, now)
		if err != nil {
			return nil, err
		}
		day = &d
	}

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := lockCollection(ctx, repos, id)
		if err != nil {
			return err
		}
		if in.AgentID != nil && *in.AgentID != c.AgentID {
			return domain.ErrAgentImmutable
		}
		linked, err := repos.Settlements.ExistsByCollection(ctx, c.ID)
		if err != nil {
			return domain.Storage("verificar liquidaciones", err)
		}

		moved := false
		if in.CollectorID != nil && *in.CollectorID != c.CollectorID {
			if linked {
				return domain.ErrCollectorImmutable
			}
			if err := ensureCollector(ctx, repos, *in.CollectorID); err != nil {
				return err
			}
			c.CollectorID = *in.CollectorID
			moved = true
		}
		if day != nil && !ledger.SameDay(c.CollectedAt, *day) {
			if linked {
				return domain.ErrCollectionDateImmutable
			}
			c.CollectedAt = *day
			moved = true
		}
		if in.Amount != nil && !in.Amount.Equal(c.Amount) {
			if linked {
				return domain.ErrAmountImmutable
			}
			if err := ledger.ValidateAmount(*in.Amount); err != nil {
				return err
			}
			rest := in.Amount.Sub(c.Consumed())
			if rest.IsNegative() {
				return domain.ErrInsufficientAmount
			}
			c.Amount = *in.Amount
			c.Rest = rest
		}
		if moved {
			dup, err := repos.Collections.ExistsForCollectorOnDay(ctx, c.CollectorID, c.CollectedAt, c.ID)
			if err != nil {
				return domain.Storage("verificar colecta del día", err)
			}
			if dup {
				return domain.ErrDuplicateCollection
			}
		}
		c.UpdatedAt = now
		if err := repos.Collections.Update(ctx, c); err != nil {
			return domain.Storage("actualizar colecta", err)
		}
		out = toResponse(c)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("collection.update", err)
	}
	uc.log.Info().Str("collection_id", id).Msg("colecta actualizada")
	uc.notifier.Notify(ctx, ports.EventCollectionUpdated, out)
	return out, nil
}

// Remove elimina una colecta que ninguna liquidación referencia.
func (uc *UseCase) Remove(ctx context.Context, id string) (err error) {
	ctx, op := observe.Start(ctx, "collection.remove", attribute.String("collection_id", id))
	defer func() { op.End(err) }()

	var out *dto.CollectionResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := lockCollection(ctx, repos, id)
		if err != nil {
			return err
		}
		linked, err := repos.Settlements.ExistsByCollection(ctx, c.ID)
		if err != nil {
			return domain.Storage("verificar liquidaciones", err)
		}
		if linked {
			return domain.ErrCollectionHasSettlements
		}
		out = toResponse(c)
		return domain.Storage("eliminar colecta", repos.Collections.Delete(ctx, c.ID))
	})
	if err != nil {
		return domain.Storage("collection.remove", err)
	}
	uc.log.Info().Str("collection_id", id).Msg("colecta eliminada")
	uc.notifier.Notify(ctx, ports.EventCollectionDeleted, out)
	return nil
}

func ensureCollector(ctx context.Context, repos repository.Repositories, id string) error {
	collector, err := repos.Collectors.GetByID(ctx, id)
	if err != nil {
		return domain.Storage("obtener colector", err)
	}
	if collector == nil {
		return domain.ErrCollectorNotFound
	}
	return nil
}

func lockCollection(ctx context.Context, repos repository.Repositories, id string) (*entity.Collection, error) {
	c, err := repos.Collections.GetForUpdate(ctx, id)
	if err != nil {
		return nil, domain.Storage("bloquear colecta", err)
	}
	if c == nil {
		return nil, domain.ErrCollectionNotFound
	}
	return c, nil
}

func toResponse(c *entity.Collection) *dto.CollectionResponse {
	return &dto.CollectionResponse{
		ID:          c.ID,
		CollectorID: c.CollectorID,
		AgentID:     c.AgentID,
		Amount:      c.Amount,
		Rest:        c.Rest,
		CollectedAt: c.CollectedAt.Format(dateLayout),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

