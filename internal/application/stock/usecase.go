package stock

import (
	"context"
	"sort"
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
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// UseCase libro de stock: saldo corrido por producto derivado de su última fila.
// Las salidas y entradas de satisfacción/retrocesión están en satisfaction.go.
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

// CheckAvailability verifica que cada producto tenga stock y que balance - requerido > 0.
func (uc *UseCase) CheckAvailability(ctx context.Context, in dto.AvailabilityRequest) (out *dto.AvailabilityResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.check_availability", attribute.Int("products", len(in.ProductsIDs)))
	defer func() { op.End(err) }()

	if err := ledger.ValidateBillOfMaterials(in.ProductsIDs, in.ProductsNumbers); err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		latest := make(map[string]*entity.StockMovement, len(in.ProductsIDs))
		for _, id := range in.ProductsIDs {
			if err := ensureProduct(ctx, repos, id); err != nil {
				return err
			}
			row, err := repos.Stocks.Latest(ctx, id)
			if err != nil {
				return domain.Storage("obtener saldo", err)
			}
			latest[id] = row
		}
		out = availability(latest, in.ProductsIDs, in.ProductsNumbers)
		return nil
	})
	if err != nil {
		return nil, domain.Storage("stock.check_availability", err)
	}
	return out, nil
}

// ManualInput agrega cantidad al saldo del producto (si no hay filas el saldo inicial es 0).
func (uc *UseCase) ManualInput(ctx context.Context, agentID string, in dto.StockMovementRequest) (out *dto.StockMovementResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.manual_input", attribute.String("product_id", in.ProductID))
	defer func() { op.End(err) }()

	if in.Quantity < 1 {
		return nil, domain.ErrInvalidNumber
	}
	now := uc.now()
	var row *entity.StockMovement
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureAgent(ctx, repos, agentID); err != nil {
			return err
		}
		latest, err := lockProducts(ctx, repos, []string{in.ProductID})
		if err != nil {
			return err
		}
		row, err = appendInput(ctx, repos, latest[in.ProductID], movement{
			transactionID: uuid.New().String(),
			productID:     in.ProductID,
			agentID:       agentID,
			movementType:  entity.MovementManualInput,
			quantity:      in.Quantity,
			at:            now,
		})
		return err
	})
	if err != nil {
		return nil, domain.Storage("stock.manual_input", err)
	}
	out = toResponse(row)
	uc.log.Info().Str("product_id", row.ProductID).Int64("quantity", in.Quantity).Int64("stock_quantity", row.StockQuantity).Msg("entrada manual de stock")
	uc.notifier.Notify(ctx, ports.EventStockInput, out)
	return out, nil
}

// ManualOutput descuenta cantidad del saldo; falla si el producto no tiene stock o quedaría negativo.
func (uc *UseCase) ManualOutput(ctx context.Context, agentID string, in dto.StockMovementRequest) (out *dto.StockMovementResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.manual_output", attribute.String("product_id", in.ProductID))
	defer func() { op.End(err) }()

	if in.Quantity < 1 {
		return nil, domain.ErrInvalidNumber
	}
	now := uc.now()
	var row *entity.StockMovement
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureAgent(ctx, repos, agentID); err != nil {
			return err
		}
		latest, err := lockProducts(ctx, repos, []string{in.ProductID})
		if err != nil {
			return err
		}
		prev := latest[in.ProductID]
		if prev == nil {
			return domain.ErrProductNotInStock
		}
		if prev.StockQuantity-in.Quantity < 0 {
			return domain.ErrInsufficientStockQuantity
		}
		row, err = appendOutput(ctx, repos, prev, movement{
			transactionID: uuid.New().String(),
			productID:     in.ProductID,
			agentID:       agentID,
			movementType:  entity.MovementManualOutput,
			quantity:      in.Quantity,
			at:            now,
		})
		return err
	})
	if err != nil {
		return nil, domain.Storage("stock.manual_output", err)
	}
	out = toResponse(row)
	uc.log.Info().Str("product_id", row.ProductID).Int64("quantity", in.Quantity).Int64("stock_quantity", row.StockQuantity).Msg("salida manual de stock")
	uc.notifier.Notify(ctx, ports.EventStockOutput, out)
	return out, nil
}

// Amend corrige la cantidad de la última fila manual de su producto, recalculando el saldo
// desde su initial_quantity.
func (uc *UseCase) Amend(ctx context.Context, id string, in dto.AmendStockRequest) (out *dto.StockMovementResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.amend", attribute.String("stock_id", id))
	defer func() { op.End(err) }()

	if in.Quantity < 1 {
		return nil, domain.ErrInvalidNumber
	}
	now := uc.now()
	var row *entity.StockMovement
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		row, err = lockLatestRow(ctx, repos, id)
		if err != nil {
			return err
		}
		if !row.IsManual() {
			return domain.ErrImmutableStock
		}
		qty := in.Quantity
		if row.MovementType == entity.MovementManualInput {
			stock, err := ledger.AddQuantity(row.InitialQuantity, qty)
			if err != nil {
				return err
			}
			row.InputQuantity = &qty
			row.StockQuantity = stock
		} else {
			if row.InitialQuantity-qty < 0 {
				return domain.ErrInsufficientStockQuantity
			}
			row.OutputQuantity = &qty
			row.StockQuantity = row.InitialQuantity - qty
		}
		row.UpdatedAt = now
		return domain.Storage("enmendar stock", repos.Stocks.Update(ctx, row))
	})
	if err != nil {
		return nil, domain.Storage("stock.amend", err)
	}
	out = toResponse(row)
	uc.log.Info().Str("stock_id", id).Str("product_id", row.ProductID).Int64("quantity", in.Quantity).Msg("movimiento de stock enmendado")
	uc.notifier.Notify(ctx, ports.EventStockAmended, out)
	return out, nil
}

// Remove elimina la última fila del producto si es una entrada manual.
func (uc *UseCase) Remove(ctx context.Context, id string) (err error) {
	ctx, op := observe.Start(ctx, "stock.remove", attribute.String("stock_id", id))
	defer func() { op.End(err) }()

	var row *entity.StockMovement
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		row, err = lockLatestRow(ctx, repos, id)
		if err != nil {
			return err
		}
		if row.MovementType != entity.MovementManualInput {
			return domain.ErrImmutableStock
		}
		return domain.Storage("eliminar stock", repos.Stocks.Delete(ctx, row.ID))
	})
	if err != nil {
		return domain.Storage("stock.remove", err)
	}
	out := toResponse(row)
	uc.log.Info().Str("stock_id", id).Str("product_id", row.ProductID).Msg("movimiento de stock eliminado")
	uc.notifier.Notify(ctx, ports.EventStockDeleted, out)
	return nil
}

// Balance saldo corriente del producto.
func (uc *UseCase) Balance(ctx context.Context, productID string) (out *dto.ProductStockResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.balance", attribute.String("product_id", productID))
	defer func() { op.End(err) }()

	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureProduct(ctx, repos, productID); err != nil {
			return err
		}
		latest, err := repos.Stocks.Latest(ctx, productID)
		if err != nil {
			return domain.Storage("obtener saldo", err)
		}
		out = &dto.ProductStockResponse{ProductID: productID}
		if latest != nil {
			at := latest.CreatedAt
			out.InStock = true
			out.Quantity = latest.StockQuantity
			out.LastMovementAt = &at
		}
		return nil
	})
	if err != nil {
		return nil, domain.Storage("stock.balance", err)
	}
	return out, nil
}

// History historial del producto en orden cronológico.
func (uc *UseCase) History(ctx context.Context, productID string, page dto.PageRequest) (out *dto.StockHistoryResponse, err error) {
	ctx, op := observe.Start(ctx, "stock.history", attribute.String("product_id", productID))
	defer func() { op.End(err) }()

	page.DefaultPage()
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := ensureProduct(ctx, repos, productID); err != nil {
			return err
		}
		// Una fila extra basta para saber si hay más páginas.
		rows, err := repos.Stocks.ListByProduct(ctx, productID, page.Limit+1, page.Offset)
		if err != nil {
			return domain.Storage("listar stock", err)
		}
		more := len(rows) > page.Limit
		if more {
			rows = rows[:page.Limit]
		}
		out = &dto.StockHistoryResponse{
			ProductID: productID,
			Items:     make([]dto.StockMovementResponse, 0, len(rows)),
			Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, HasMore: more},
		}
		for _, r := range rows {
			out.Items = append(out.Items, *toResponse(r))
		}
		return nil
	})
	if err != nil {
		return nil, domain.Storage("stock.history", err)
	}
	return out, nil
}

// movement datos de una fila a escribir.
type movement struct {
	transactionID string
	productID     string
	cardID        *string
	agentID       string
	movementType  string
	quantity      int64
	at            time.Time
}

func appendInput(ctx context.Context, repos repository.Repositories, prev *entity.StockMovement, m movement) (*entity.StockMovement, error) {
	initial := balanceOf(prev)
	qty := m.quantity
	stock, err := ledger.AddQuantity(initial, qty)
	if err != nil {
		return nil, err
	}
	row := newRow(m, initial)
	row.InputQuantity = &qty
	row.StockQuantity = stock
	if err := repos.Stocks.Create(ctx, row); err != nil {
		return nil, domain.Storage("crear stock", err)
	}
	metrics.StockMovementsTotal.WithLabelValues(m.movementType).Inc()
	return row, nil
}

func appendOutput(ctx context.Context, repos repository.Repositories, prev *entity.StockMovement, m movement) (*entity.StockMovement, error) {
	initial := balanceOf(prev)
	qty := m.quantity
	row := newRow(m, initial)
	row.OutputQuantity = &qty
	row.StockQuantity = initial - qty
	if err := repos.Stocks.Create(ctx, row); err != nil {
		return nil, domain.Storage("crear stock", err)
	}
	metrics.StockMovementsTotal.WithLabelValues(m.movementType).Inc()
	return row, nil
}

func newRow(m movement, initial int64) *entity.StockMovement {
	return &entity.StockMovement{
		TransactionID:   m.transactionID,
		ProductID:       m.productID,
		CardID:          m.cardID,
		AgentID:         m.agentID,
		MovementType:    m.movementType,
		InitialQuantity: initial,
		CreatedAt:       m.at,
		UpdatedAt:       m.at,
	}
}

func balanceOf(row *entity.StockMovement) int64 {
	if row == nil {
		return 0
	}
	return row.StockQuantity
}

// availability evalúa cada producto contra su última fila (nil = sin stock).
func availability(latest map[string]*entity.StockMovement, ids []string, required []int64) *dto.AvailabilityResponse {
	out := &dto.AvailabilityResponse{Available: true, Products: make([]dto.ProductAvailability, 0, len(ids))}
	for i, id := range ids {
		p := dto.ProductAvailability{ProductID: id, Required: required[i]}
		if row := latest[id]; row != nil {
			p.InStock = true
			p.Balance = row.StockQuantity
			p.Available = ledger.Available(row.StockQuantity, required[i])
		}
		if !p.Available {
			out.Available = false
		}
		out.Products = append(out.Products, p)
	}
	return out
}

// lockProducts serializa los productos en orden de id y devuelve su última fila.
func lockProducts(ctx context.Context, repos repository.Repositories, ids []string) (map[string]*entity.StockMovement, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	latest := make(map[string]*entity.StockMovement, len(sorted))
	for _, id := range sorted {
		if err := ensureProduct(ctx, repos, id); err != nil {
			return nil, err
		}
		row, err := repos.Stocks.LatestForUpdate(ctx, id)
		if err != nil {
			return nil, domain.Storage("bloquear stock", err)
		}
		latest[id] = row
	}
	return latest, nil
}

// lockLatestRow bloquea el producto de la fila y exige que sea su última fila.
func lockLatestRow(ctx context.Context, repos repository.Repositories, id string) (*entity.StockMovement, error) {
	row, err := repos.Stocks.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("obtener stock", err)
	}
	if row == nil {
		return nil, domain.ErrStockNotFound
	}
	latest, err := repos.Stocks.LatestForUpdate(ctx, row.ProductID)
	if err != nil {
		return nil, domain.Storage("bloquear stock", err)
	}
	if latest == nil || latest.ID != row.ID {
		return nil, domain.ErrImmutableStock
	}
	return latest, nil
}

func ensureProduct(ctx context.Context, repos repository.Repositories, id string) error {
	p, err := repos.Products.GetByID(ctx, id)
	if err != nil {
		return domain.Storage("obtener producto", err)
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	return nil
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

func toResponse(m *entity.StockMovement) *dto.StockMovementResponse {
	return &dto.StockMovementResponse{
		ID:              m.ID,
		TransactionID:   m.TransactionID,
		ProductID:       m.ProductID,
		CardID:          m.CardID,
		AgentID:         m.AgentID,
		MovementType:    m.MovementType,
		InitialQuantity: m.InitialQuantity,
		InputQuantity:   m.InputQuantity,
		OutputQuantity:  m.OutputQuantity,
		StockQuantity:   m.StockQuantity,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
