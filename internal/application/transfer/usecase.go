package transfer

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

// UseCase motor de transferencias: mueve el valor residual de una tarjeta emisora a una receptora
// como una liquidación validada sin colecta.
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

// valuation valor transferible y unidades equivalentes en la tarjeta receptora.
type valuation struct {
	value decimal.Decimal
	units int
}

func (uc *UseCase) value(issuing, receiving *card.Snapshot) valuation {
	v := uc.rules.TransferValue(issuing.Value())
	return valuation{
		value: v,
		units: ledger.TransferUnits(v, receiving.Card.TypesNumber, receiving.Type.Stake),
	}
}

// Create registra una transferencia pendiente entre dos tarjetas abiertas.
func (uc *UseCase) Create(ctx context.Context, agentID string, in dto.CreateTransferRequest) (out *dto.TransferResponse, err error) {
	ctx, op := observe.Start(ctx, "transfer.create",
		attribute.String("issuing_card_id", in.IssuingCardID), attribute.String("receiving_card_id", in.ReceivingCardID))
	defer func() { op.End(err) }()

	if in.IssuingCardID == in.ReceivingCardID {
		return nil, domain.ErrSameCardTransfer
	}
	now := uc.now()
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureAgent(ctx, repos, agentID); err != nil {
			return err
		}
		issuing, receiving, err := lockCards(ctx, repos, in.IssuingCardID, in.ReceivingCardID)
		if err != nil {
			return err
		}
		if err := ensureOpen(issuing, receiving); err != nil {
			return err
		}
		val := uc.value(issuing, receiving)
		if val.units < 1 {
			return domain.ErrInsufficientSettlements
		}
		if uc.rules.IsFullySettled(receiving.Units) {
			return domain.ErrReceivingCardComplete
		}
		t := &entity.Transfer{
			ID:              uuid.New().String(),
			IssuingCardID:   in.IssuingCardID,
			ReceivingCardID: in.ReceivingCardID,
			AgentID:         agentID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := repos.Transfers.Create(ctx, t); err != nil {
			return domain.Storage("crear transferencia", err)
		}
		out = toResponse(t, val)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("transfer.create", err)
	}
	uc.log.Info().Str("transfer_id", out.ID).Str("issuing_card_id", out.IssuingCardID).Str("receiving_card_id", out.ReceivingCardID).Str("value", out.Value.String()).Int("units", out.Units).Msg("transferencia creada")
	uc.notifier.Notify(ctx, ports.EventTransferCreated, out)
	return out, nil
}

// Validate recalcula la valoración, la limita al tope de la receptora, marca la emisora como
// transferida y crea la liquidación validada de la receptora.
func (uc *UseCase) Validate(ctx context.Context, id, agentID string) (out *dto.TransferResponse, err error) {
	ctx, op := observe.Start(ctx, "transfer.validate", attribute.String("transfer_id", id))
	defer func() { op.End(err) }()

	now := uc.now()
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		t, err := lockPending(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := ensureAgent(ctx, repos, agentID); err != nil {
			return err
		}
		issuing, receiving, err := lockCards(ctx, repos, t.IssuingCardID, t.ReceivingCardID)
		if err != nil {
			return err
		}
		if err := ensureOpen(issuing, receiving); err != nil {
			return err
		}
		val := uc.value(issuing, receiving)
		if val.units < 1 {
			return domain.ErrInsufficientSettlements
		}
		remaining := uc.rules.Remaining(receiving.Units)
		if remaining < 1 {
			return domain.ErrReceivingCardComplete
		}
		if val.units > remaining {
			val.units = remaining
		}

		issuing.Card.TransferredAt = &now
		issuing.Card.UpdatedAt = now
		if err := repos.Cards.Update(ctx, issuing.Card); err != nil {
			return domain.Storage("actualizar tarjeta emisora", err)
		}
		transferID := t.ID
		s := &entity.Settlement{
			ID:          uuid.New().String(),
			Number:      val.units,
			AgentID:     agentID,
			CardID:      receiving.Card.ID,
			TransferID:  &transferID,
			IsValidated: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Settlements.Create(ctx, s); err != nil {
			return domain.Storage("crear liquidación de transferencia", err)
		}
		t.ValidatedAt = &now
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return domain.Storage("actualizar transferencia", err)
		}
		out = toResponse(t, val)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("transfer.validate", err)
	}
	metrics.SettledUnitsTotal.Add(float64(out.Units))
	uc.log.Info().Str("transfer_id", id).Str("receiving_card_id", out.ReceivingCardID).Int("units", out.Units).Msg("transferencia validada")
	uc.notifier.Notify(ctx, ports.EventTransferValidated, out)
	return out, nil
}

// Reject marca la transferencia como rechazada; no tiene otros efectos.
func (uc *UseCase) Reject(ctx context.Context, id, agentID string) (out *dto.TransferResponse, err error) {
	ctx, op := observe.Start(ctx, "transfer.reject", attribute.String("transfer_id", id))
	defer func() { op.End(err) }()

	now := uc.now()
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		t, err := lockPending(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := ensureAgent(ctx, repos, agentID); err != nil {
			return err
		}
		t.RejectedAt = &now
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return domain.Storage("actualizar transferencia", err)
		}
		out, err = uc.describe(ctx, repos, t)
		return err
	})
	if err != nil {
		return nil, domain.Storage("transfer.reject", err)
	}
	uc.log.Info().Str("transfer_id", id).Msg("transferencia rechazada")
	uc.notifier.Notify(ctx, ports.EventTransferRejected, out)
	return out, nil
}

// Update despacha a Validate o Reject. Las tarjetas no pueden cambiar.
func (uc *UseCase) Update(ctx context.Context, id, agentID string, in dto.UpdateTransferRequest) (*dto.TransferResponse, error) {
	if in.Validate && in.Reject {
		return nil, domain.ErrValidationAndRejectionBothProvided
	}
	current, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if (in.IssuingCardID != nil && *in.IssuingCardID != current.IssuingCardID) ||
		(in.ReceivingCardID != nil && *in.ReceivingCardID != current.ReceivingCardID) {
		return nil, domain.ErrTransferCardsImmutable
	}
	switch {
	case in.Validate:
		return uc.Validate(ctx, id, agentID)
	case in.Reject:
		return uc.Reject(ctx, id, agentID)
	}
	if current.State != entity.TransferStatePending {
		return nil, domain.ErrTransferAlreadyProcessed
	}
	return current, nil
}

// Remove elimina la transferencia. Si estaba validada, libera la emisora y borra la liquidación
// creada en la receptora (que debe seguir abierta).
func (uc *UseCase) Remove(ctx context.Context, id string) (err error) {
	ctx, op := observe.Start(ctx, "transfer.remove", attribute.String("transfer_id", id))
	defer func() { op.End(err) }()

	now := uc.now()
	var out *dto.TransferResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		t, err := lockTransfer(ctx, repos, id)
		if err != nil {
			return err
		}
		out = toResponse(t, valuation{})
		if t.ValidatedAt != nil {
			issuing, receiving, err := lockCards(ctx, repos, t.IssuingCardID, t.ReceivingCardID)
			if err != nil {
				return err
			}
			if err := ledger.EnsureOpen(receiving.Card); err != nil {
				return err
			}
			issuing.Card.TransferredAt = nil
			issuing.Card.UpdatedAt = now
			if err := repos.Cards.Update(ctx, issuing.Card); err != nil {
				return domain.Storage("actualizar tarjeta emisora", err)
			}
			tagged, err := repos.Settlements.ListByTransfer(ctx, t.ID)
			if err != nil {
				return domain.Storage("listar liquidaciones de transferencia", err)
			}
			for _, s := range tagged {
				out.Units += s.Number
				if err := repos.Settlements.Delete(ctx, s.ID); err != nil {
					return domain.Storage("eliminar liquidación de transferencia", err)
				}
			}
		}
		return domain.Storage("eliminar transferencia", repos.Transfers.Delete(ctx, t.ID))
	})
	if err != nil {
		return domain.Storage("transfer.remove", err)
	}
	uc.log.Info().Str("transfer_id", id).Str("state", out.State).Int("units_reverted", out.Units).Msg("transferencia eliminada")
	uc.notifier.Notify(ctx, ports.EventTransferDeleted, out)
	return nil
}

// Get devuelve la transferencia. Si está validada, Units son las unidades efectivamente
// liquidadas; si no, la valoración vigente.
func (uc *UseCase) Get(ctx context.Context, id string) (out *dto.TransferResponse, err error) {
	ctx, op := observe.Start(ctx, "transfer.get", attribute.String("transfer_id", id))
	defer func() { op.End(err) }()

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		t, err := repos.Transfers.GetByID(ctx, id)
		if err != nil {
			return domain.Storage("obtener transferencia", err)
		}
		if t == nil {
			return domain.ErrTransferNotFound
		}
		out, err = uc.describe(ctx, repos, t)
		return err
	})
	if err != nil {
		return nil, domain.Storage("transfer.get", err)
	}
	return out, nil
}

func (uc *UseCase) describe(ctx context.Context, repos repository.Repositories, t *entity.Transfer) (*dto.TransferResponse, error) {
	issuing, err := card.Load(ctx, repos, t.IssuingCardID, false)
	if err != nil {
		return nil, err
	}
	receiving, err := card.Load(ctx, repos, t.ReceivingCardID, false)
	if err != nil {
		return nil, err
	}
	val := uc.value(issuing, receiving)
	if t.ValidatedAt != nil {
		tagged, err := repos.Settlements.ListByTransfer(ctx, t.ID)
		if err != nil {
			return nil, domain.Storage("listar liquidaciones de transferencia", err)
		}
		val.units = 0
		for _, s := range tagged {
			val.units += s.Number
		}
	}
	return toResponse(t, val), nil
}

// lockCards bloquea ambas tarjetas en orden de id y las devuelve como (emisora, receptora).
func lockCards(ctx context.Context, repos repository.Repositories, issuingID, receivingID string) (*card.Snapshot, *card.Snapshot, error) {
	first, second := issuingID, receivingID
	if second < first {
		first, second = second, first
	}
	a, err := card.Load(ctx, repos, first, true)
	if err != nil {
		return nil, nil, err
	}
	b, err := card.Load(ctx, repos, second, true)
	if err != nil {
		return nil, nil, err
	}
	if a.Card.ID == issuingID {
		return a, b, nil
	}
	return b, a, nil
}

func ensureOpen(issuing, receiving *card.Snapshot) error {
	if err := ledger.EnsureOpen(issuing.Card); err != nil {
		return err
	}
	return ledger.EnsureOpen(receiving.Card)
}

func lockTransfer(ctx context.Context, repos repository.Repositories, id string) (*entity.Transfer, error) {
	t, err := repos.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, domain.Storage("bloquear transferencia", err)
	}
	if t == nil {
		return nil, domain.ErrTransferNotFound
	}
	return t, nil
}

func lockPending(ctx context.Context, repos repository.Repositories, id string) (*entity.Transfer, error) {
	t, err := lockTransfer(ctx, repos, id)
	if err != nil {
		return nil, err
	}
	if t.Processed() {
		return nil, domain.ErrTransferAlreadyProcessed
	}
	return t, nil
}

func ensureAgent(ctx context.Context, repos repository.Repositories, id string) error {
	a, err := repos.Agents.GetByID(ctx, id)
	if err != nil {
		return domain.Storage("obtener agente", err)
	}
	if a == nil {
		return domain.ErrAgentNotFound
	}
	return nil
}

func toResponse(t *entity.Transfer, val valuation) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:              t.ID,
		IssuingCardID:   t.IssuingCardID,
		ReceivingCardID: t.ReceivingCardID,
		AgentID:         t.AgentID,
		State:           t.State(),
		Value:           val.value,
		Units:           val.units,
		ValidatedAt:     t.ValidatedAt,
		RejectedAt:      t.RejectedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
