package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Ahorro-api/internal/application/card"
	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/observe"
	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

// Satisfy despacha según in.Mode (vacío = normal).
func (uc *UseCase) Satisfy(ctx context.Context, cardID, agentID string, in dto.SatisfyCardRequest) (*dto.SatisfactionResponse, error) {
	if in.Mode == dto.SatisfactionConstrained {
		return uc.SatisfyConstrained(ctx, cardID, agentID, in.ProductsIDs, in.ProductsNumbers, in.SatisfiedAt)
	}
	return uc.SatisfyNormal(ctx, cardID, agentID, in.SatisfiedAt)
}

// SatisfyNormal entrega la lista de materiales del tipo × typesNumber a una tarjeta con el tope completo.
func (uc *UseCase) SatisfyNormal(ctx context.Context, cardID, agentID string, satisfiedAt *time.Time) (out *dto.SatisfactionResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.satisfy_normal", attribute.String("card_id", cardID))
	defer func() { op.End(err) }()

	out, err = uc.satisfy(ctx, cardID, agentID, satisfiedAt, entity.MovementNormalOutput,
		func(snap *card.Snapshot) ([]string, []int64, error) {
			return ledger.BillOfMaterials(snap.Type, snap.Card.TypesNumber)
		})
	return out, err
}

// SatisfyConstrained entrega una lista explícita de productos en lugar de la del tipo.
func (uc *UseCase) SatisfyConstrained(ctx context.Context, cardID, agentID string, productIDs []string, quantities []int64, satisfiedAt *time.Time) (out *dto.SatisfactionResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.satisfy_constrained", attribute.String("card_id", cardID))
	defer func() { op.End(err) }()

	if err := ledger.ValidateBillOfMaterials(productIDs, quantities); err != nil {
		return nil, err
	}
	out, err = uc.satisfy(ctx, cardID, agentID, satisfiedAt, entity.MovementConstrainedOutput,
		func(*card.Snapshot) ([]string, []int64, error) {
			return productIDs, quantities, nil
		})
	return out, err
}

func (uc *UseCase) satisfy(
	ctx context.Context,
	cardID, agentID string,
	satisfiedAt *time.Time,
	movementType string,
	materials func(*card.Snapshot) ([]string, []int64, error),
) (*dto.SatisfactionResponse, error) {
	now := uc.now()
	at := now
	if satisfiedAt != nil {
		if err := ledger.EnsureNotFuture(*satisfiedAt, now); err != nil {
			return nil, err
		}
		at = *satisfiedAt
	}
	transactionID := uuid.New().String()
	var (
		snap *card.Snapshot
		rows []*entity.StockMovement
	)
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureAgent(ctx, repos, agentID); err != nil {
			return err
		}
		var err error
		snap, err = card.Load(ctx, repos, cardID, true)
		if err != nil {
			return err
		}
		if err := uc.rules.EnsureSatisfiable(snap.Card, snap.Units); err != nil {
			return err
		}
		ids, qty, err := materials(snap)
		if err != nil {
			return err
		}
		if err := ledger.ValidateBillOfMaterials(ids, qty); err != nil {
			return err
		}
		latest, err := lockProducts(ctx, repos, ids)
		if err != nil {
			return err
		}
		if !availability(latest, ids, qty).Available {
			return domain.ErrProductsNotAvailable
		}
		cid := snap.Card.ID
		for i, id := range ids {
			row, err := appendOutput(ctx, repos, latest[id], movement{
				transactionID: transactionID,
				productID:     id,
				cardID:        &cid,
				agentID:       agentID,
				movementType:  movementType,
				quantity:      qty[i],
				at:            now,
			})
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		snap.Card.SatisfiedAt = &at
		snap.Card.UpdatedAt = now
		return domain.Storage("actualizar tarjeta", repos.Cards.Update(ctx, snap.Card))
	})
	if err != nil {
		return nil, domain.Storage("stock.satisfy", err)
	}
	out := uc.satisfactionResponse(snap, transactionID, rows)
	uc.log.Info().Str("card_id", cardID).Str("movement_type", movementType).Str("transaction_id", transactionID).Int("products", len(rows)).Msg("tarjeta satisfecha")
	uc.notifier.Notify(ctx, ports.EventCardSatisfied, out)
	return out, nil
}

// Retrocede revierte la última satisfacción de la tarjeta: normal desde la lista de materiales del tipo,
// constrained desde las filas exactas de esa salida. Una retrocesión por tarjeta por hora.
func (uc *UseCase) Retrocede(ctx context.Context, cardID, agentID string) (out *dto.SatisfactionResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.retrocede", attribute.String("card_id", cardID))
	defer func() { op.End(err) }()

	now := uc.now()
	transactionID := uuid.New().String()
	var (
		snap *card.Snapshot
		rows []*entity.StockMovement
	)
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureAgent(ctx, repos, agentID); err != nil {
			return err
		}
		var err error
		snap, err = card.Load(ctx, repos, cardID, true)
		if err != nil {
			return err
		}
		if err := ledger.EnsureRetrocedable(snap.Card); err != nil {
			return err
		}
		from, to := ledger.HourBucket(now)
		n, err := repos.Stocks.CountByCardBetween(ctx, cardID, entity.MovementRetrocessionInput, from, to)
		if err != nil {
			return domain.Storage("contar retrocesiones", err)
		}
		if n > 0 {
			return domain.ErrMultipleRetrocessionPerHour
		}
		ids, qty, err := satisfiedMaterials(ctx, repos, snap)
		if err != nil {
			return err
		}
		latest, err := lockProducts(ctx, repos, ids)
		if err != nil {
			return err
		}
		cid := snap.Card.ID
		for i, id := range ids {
			row, err := appendInput(ctx, repos, latest[id], movement{
				transactionID: transactionID,
				productID:     id,
				cardID:        &cid,
				agentID:       agentID,
				movementType:  entity.MovementRetrocessionInput,
				quantity:      qty[i],
				at:            now,
			})
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		snap.Card.SatisfiedAt = nil
		snap.Card.UpdatedAt = now
		return domain.Storage("actualizar tarjeta", repos.Cards.Update(ctx, snap.Card))
	})
	if err != nil {
		return nil, domain.Storage("stock.retrocede", err)
	}
	out = uc.satisfactionResponse(snap, transactionID, rows)
	uc.log.Info().Str("card_id", cardID).Str("transaction_id", transactionID).Int("products", len(rows)).Msg("satisfacción retrocedida")
	uc.notifier.Notify(ctx, ports.EventCardRetroceded, out)
	return out, nil
}

// satisfiedMaterials reconstruye lo entregado en la última satisfacción de la tarjeta.
func satisfiedMaterials(ctx context.Context, repos repository.Repositories, snap *card.Snapshot) ([]string, []int64, error) {
	last, err := repos.Stocks.LatestByCard(ctx, snap.Card.ID, entity.MovementNormalOutput, entity.MovementConstrainedOutput)
	if err != nil {
		return nil, nil, domain.Storage("obtener satisfacción", err)
	}
	if last == nil {
		return nil, nil, domain.ErrCardNotSatisfied
	}
	if last.MovementType == entity.MovementNormalOutput {
		return ledger.BillOfMaterials(snap.Type, snap.Card.TypesNumber)
	}
	group, err := repos.Stocks.ListByTransaction(ctx, last.TransactionID)
	if err != nil {
		return nil, nil, domain.Storage("listar satisfacción", err)
	}
	var (
		ids []string
		qty []int64
	)
	for _, row := range group {
		if row.MovementType != entity.MovementConstrainedOutput {
			continue
		}
		ids = append(ids, row.ProductID)
		qty = append(qty, row.Quantity())
	}
	if len(ids) == 0 {
		return nil, nil, domain.ErrCardNotSatisfied
	}
	return ids, qty, nil
}

func (uc *UseCase) satisfactionResponse(snap *card.Snapshot, transactionID string, rows []*entity.StockMovement) *dto.SatisfactionResponse {
	out := &dto.SatisfactionResponse{
		Card:          *card.ToResponse(snap, uc.rules),
		TransactionID: transactionID,
		Movements:     make([]dto.StockMovementResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Movements = append(out.Movements, *toResponse(r))
	}
	return out
}
