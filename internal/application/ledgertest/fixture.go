// Package ledgertest arma un libro mayor en memoria con datos de referencia para tests.
package ledgertest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/events"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/memory"
)

// Identificadores de referencia sembrados por New.
const (
	AgentID     = "agent-1"
	CollectorID = "collector-1"
	CustomerID  = "customer-1"
)

// Clock reloj manual y seguro entre goroutines.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock crea un reloj detenido en t.
func NewClock(t time.Time) *Clock { return &Clock{now: t} }

// Now devuelve la hora actual del reloj.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance adelanta el reloj.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Fixture almacén en memoria, registro de eventos, reglas por defecto y reloj.
type Fixture struct {
	T      *testing.T
	Ctx    context.Context
	Store  *memory.Store
	Events *events.Recorder
	Rules  ledger.Rules
	Clock  *Clock
}

// New crea el fixture con un agente, un colector y un cliente.
// El reloj arranca el 2024-03-15 a las 10:15 UTC.
func New(t *testing.T) *Fixture {
	t.Helper()
	f := &Fixture{
		T:      t,
		Ctx:    context.Background(),
		Store:  memory.NewStore(),
		Events: events.NewRecorder(),
		Rules:  ledger.DefaultRules(),
		Clock:  NewClock(time.Date(2024, 3, 15, 10, 15, 0, 0, time.UTC)),
	}
	f.Store.AddAgent(entity.Agent{ID: AgentID, Name: "Agente"})
	f.Store.AddCollector(entity.Collector{ID: CollectorID, Name: "Colector"})
	f.Store.AddCustomer(entity.Customer{ID: CustomerID, Name: "Cliente"})
	return f
}

// Product siembra un producto.
func (f *Fixture) Product(id string) {
	f.Store.AddProduct(entity.Product{ID: id, Name: id})
}

// Type siembra un tipo con su lista de materiales; los productos se siembran también.
func (f *Fixture) Type(id string, stake int64, productIDs []string, numbers []int64) {
	for _, p := range productIDs {
		f.Product(p)
	}
	f.Store.AddType(entity.CardType{
		ID:              id,
		Name:            id,
		Stake:           decimal.NewFromInt(stake),
		ProductsIDs:     productIDs,
		ProductsNumbers: numbers,
	})
}

// Card siembra una tarjeta abierta.
func (f *Fixture) Card(id, typeID string, typesNumber int) {
	now := f.Clock.Now()
	f.Store.AddCard(entity.Card{
		ID:          id,
		CustomerID:  CustomerID,
		TypeID:      typeID,
		TypesNumber: typesNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Units siembra una liquidación validada histórica de n unidades (sin colecta con saldo).
func (f *Fixture) Units(cardID string, n int) {
	collectionID := "historic-" + uuid.New().String()
	now := f.Clock.Now()
	f.Store.AddSettlement(entity.Settlement{
		ID:           uuid.New().String(),
		Number:       n,
		AgentID:      AgentID,
		CardID:       cardID,
		CollectionID: &collectionID,
		IsValidated:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Stock fija el saldo inicial de un producto con una entrada manual.
func (f *Fixture) Stock(productID string, qty int64) {
	f.T.Helper()
	now := f.Clock.Now()
	err := f.Store.Run(f.Ctx, func(repos repository.Repositories) error {
		latest, err := repos.Stocks.Latest(f.Ctx, productID)
		if err != nil {
			return err
		}
		var initial int64
		if latest != nil {
			initial = latest.StockQuantity
		}
		in := qty
		return repos.Stocks.Create(f.Ctx, &entity.StockMovement{
			TransactionID:   uuid.New().String(),
			ProductID:       productID,
			AgentID:         AgentID,
			MovementType:    entity.MovementManualInput,
			InitialQuantity: initial,
			InputQuantity:   &in,
			StockQuantity:   initial + qty,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	})
	require.NoError(f.T, err)
}

// Read ejecuta fn en una transacción de solo lectura.
func (f *Fixture) Read(fn func(repos repository.Repositories)) {
	f.T.Helper()
	require.NoError(f.T, f.Store.Run(f.Ctx, func(repos repository.Repositories) error {
		fn(repos)
		return nil
	}))
}

// Balance saldo corriente del producto (0 si nunca tuvo stock).
func (f *Fixture) Balance(productID string) int64 {
	var qty int64
	f.Read(func(repos repository.Repositories) {
		latest, err := repos.Stocks.Latest(f.Ctx, productID)
		require.NoError(f.T, err)
		if latest != nil {
			qty = latest.StockQuantity
		}
	})
	return qty
}

// CardByID lee la tarjeta.
func (f *Fixture) CardByID(id string) *entity.Card {
	var c *entity.Card
	f.Read(func(repos repository.Repositories) {
		var err error
		c, err = repos.Cards.GetByID(f.Ctx, id)
		require.NoError(f.T, err)
	})
	require.NotNil(f.T, c)
	return c
}

// UnitsOf unidades validadas de la tarjeta.
func (f *Fixture) UnitsOf(cardID string) int {
	var units int
	f.Read(func(repos repository.Repositories) {
		var err error
		units, err = repos.Settlements.ValidatedUnits(f.Ctx, cardID)
		require.NoError(f.T, err)
	})
	return units
}

// CollectionByID lee la colecta.
func (f *Fixture) CollectionByID(id string) *entity.Collection {
	var c *entity.Collection
	f.Read(func(repos repository.Repositories) {
		var err error
		c, err = repos.Collections.GetByID(f.Ctx, id)
		require.NoError(f.T, err)
	})
	return c
}

// History todas las filas de stock del producto en orden.
func (f *Fixture) History(productID string) []*entity.StockMovement {
	var rows []*entity.StockMovement
	f.Read(func(repos repository.Repositories) {
		var err error
		rows, err = repos.Stocks.ListByProduct(f.Ctx, productID, 0, 0)
		require.NoError(f.T, err)
	})
	return rows
}

// AssertStockChain verifica row[i].stockQuantity == row[i-1].stockQuantity ± cantidad(row[i]).
func (f *Fixture) AssertStockChain(productID string) {
	f.T.Helper()
	var prev int64
	for i, row := range f.History(productID) {
		require.Equal(f.T, prev, row.InitialQuantity, "fila %d: initial_quantity debe ser el saldo previo", i)
		switch {
		case row.InputQuantity != nil:
			require.Equal(f.T, prev+*row.InputQuantity, row.StockQuantity, "fila %d", i)
		case row.OutputQuantity != nil:
			require.Equal(f.T, prev-*row.OutputQuantity, row.StockQuantity, "fila %d", i)
		default:
			f.T.Fatalf("fila %d sin cantidad", i)
		}
		prev = row.StockQuantity
	}
}
