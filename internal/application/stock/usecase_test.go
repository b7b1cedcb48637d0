package stock_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/ledgertest"
	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/application/stock"
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

func newUseCase(f *ledgertest.Fixture) *stock.UseCase {
	return stock.NewUseCase(f.Store, f.Rules, f.Events, logger.Nop(), stock.WithClock(f.Clock.Now))
}

func input(productID string, qty int64) dto.StockMovementRequest {
	return dto.StockMovementRequest{ProductID: productID, Quantity: qty}
}

// Escenario C: producto sin filas de stock.
func TestScenarioC_ProductNeverStocked(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	av, err := uc.CheckAvailability(f.Ctx, dto.AvailabilityRequest{ProductsIDs: []string{"p1"}, ProductsNumbers: []int64{1}})
	require.NoError(t, err)
	assert.False(t, av.Available)
	assert.False(t, av.Products[0].InStock)

	_, err = uc.ManualOutput(f.Ctx, ledgertest.AgentID, input("p1", 1))
	assert.ErrorIs(t, err, domain.ErrProductNotInStock)
}

func TestCheckAvailability_Strict(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	f.Product("p2")
	f.Stock("p1", 5)
	f.Stock("p2", 10)
	uc := newUseCase(f)

	av, err := uc.CheckAvailability(f.Ctx, dto.AvailabilityRequest{ProductsIDs: []string{"p1", "p2"}, ProductsNumbers: []int64{4, 3}})
	require.NoError(t, err)
	assert.True(t, av.Available)

	// 5 - 5 = 0 no es disponible
	av, err = uc.CheckAvailability(f.Ctx, dto.AvailabilityRequest{ProductsIDs: []string{"p1", "p2"}, ProductsNumbers: []int64{5, 3}})
	require.NoError(t, err)
	assert.False(t, av.Available)
	assert.False(t, av.Products[0].Available)
	assert.True(t, av.Products[1].Available)
	assert.Equal(t, int64(5), av.Products[0].Balance)
}

func TestCheckAvailability_Validation(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	_, err := uc.CheckAvailability(f.Ctx, dto.AvailabilityRequest{ProductsIDs: []string{"p1"}, ProductsNumbers: []int64{1, 2}})
	assert.ErrorIs(t, err, domain.ErrArrayLengthMismatch)
	_, err = uc.CheckAvailability(f.Ctx, dto.AvailabilityRequest{ProductsIDs: []string{"ghost"}, ProductsNumbers: []int64{1}})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestManualInputOutput(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	in, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", 10))
	require.NoError(t, err)
	assert.Equal(t, int64(0), in.InitialQuantity)
	assert.Equal(t, int64(10), in.StockQuantity)
	assert.Equal(t, entity.MovementManualInput, in.MovementType)

	out, err := uc.ManualOutput(f.Ctx, ledgertest.AgentID, input("p1", 4))
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.InitialQuantity)
	assert.Equal(t, int64(6), out.StockQuantity)

	_, err = uc.ManualOutput(f.Ctx, ledgertest.AgentID, input("p1", 7))
	assert.ErrorIs(t, err, domain.ErrInsufficientStockQuantity)

	_, err = uc.ManualOutput(f.Ctx, ledgertest.AgentID, input("p1", 6))
	assert.NoError(t, err, "dejar el saldo en 0 está permitido")

	assert.Equal(t, int64(0), f.Balance("p1"))
	f.AssertStockChain("p1")
	assert.Equal(t, []string{ports.EventStockInput, ports.EventStockOutput, ports.EventStockOutput}, f.Events.Names())
}

func TestManualInput_Errors(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	_, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ManualInput(f.Ctx, ledgertest.AgentID, input("ghost", 1))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = uc.ManualInput(f.Ctx, "ghost", input("p1", 1))
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

// El saldo nunca da la vuelta: una entrada que desborda int64 se rechaza sin escribir filas.
func TestManualInput_OverflowRejected(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	for _, qty := range []int64{10, 5} {
		_, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", qty))
		require.NoError(t, err)
	}

	_, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", math.MaxInt64))
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)
	assert.Equal(t, int64(15), f.Balance("p1"))
	require.Len(t, f.History("p1"), 2)

	// la última fila parte de 10: enmendarla a MaxInt64 también desborda
	last := f.History("p1")[1]
	_, err = uc.Amend(f.Ctx, last.ID, dto.AmendStockRequest{Quantity: math.MaxInt64})
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)
	assert.Equal(t, int64(15), f.Balance("p1"))
	f.AssertStockChain("p1")
}

// fullCard siembra un tipo con dos productos, stock suficiente y una tarjeta con el tope completo.
func fullCard(f *ledgertest.Fixture, typesNumber int) {
	f.Type("t1", 100, []string{"p1", "p2"}, []int64{2, 1})
	f.Stock("p1", 50)
	f.Stock("p2", 50)
	f.Card("c1", "t1", typesNumber)
	f.Units("c1", 372)
}

// Escenario D: satisfacción normal, retrocesión y segunda retrocesión en la misma hora.
func TestScenarioD_SatisfyAndRetrocede(t *testing.T) {
	f := ledgertest.New(t)
	fullCard(f, 3)
	uc := newUseCase(f)

	sat, err := uc.SatisfyNormal(f.Ctx, "c1", ledgertest.AgentID, nil)
	require.NoError(t, err)
	require.Len(t, sat.Movements, 2)
	assert.Equal(t, entity.CardStateSatisfied, sat.Card.State)
	for _, m := range sat.Movements {
		assert.Equal(t, entity.MovementNormalOutput, m.MovementType)
		assert.Equal(t, sat.TransactionID, m.TransactionID)
		require.NotNil(t, m.CardID)
		assert.Equal(t, "c1", *m.CardID)
	}
	assert.Equal(t, int64(44), f.Balance("p1"), "2 × 3")
	assert.Equal(t, int64(47), f.Balance("p2"), "1 × 3")
	assert.NotNil(t, f.CardByID("c1").SatisfiedAt)

	f.Clock.Advance(10 * time.Minute)
	ret, err := uc.Retrocede(f.Ctx, "c1", ledgertest.AgentID)
	require.NoError(t, err)
	assert.Equal(t, entity.CardStateOpen, ret.Card.State)
	assert.Nil(t, f.CardByID("c1").SatisfiedAt)
	assert.Equal(t, int64(50), f.Balance("p1"))
	assert.Equal(t, int64(50), f.Balance("p2"))

	_, err = uc.SatisfyNormal(f.Ctx, "c1", ledgertest.AgentID, nil)
	require.NoError(t, err)
	_, err = uc.Retrocede(f.Ctx, "c1", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrMultipleRetrocessionPerHour)

	f.Clock.Advance(time.Hour)
	_, err = uc.Retrocede(f.Ctx, "c1", ledgertest.AgentID)
	assert.NoError(t, err)

	f.AssertStockChain("p1")
	f.AssertStockChain("p2")
	assert.Contains(t, f.Events.Names(), ports.EventCardSatisfied)
	assert.Contains(t, f.Events.Names(), ports.EventCardRetroceded)
}

func TestSatisfyNormal_Guards(t *testing.T) {
	f := ledgertest.New(t)
	f.Type("t1", 100, []string{"p1"}, []int64{1})
	f.Stock("p1", 1)
	f.Card("partial", "t1", 1)
	f.Units("partial", 371)
	f.Card("full", "t1", 1)
	f.Units("full", 372)
	uc := newUseCase(f)

	_, err := uc.SatisfyNormal(f.Ctx, "partial", ledgertest.AgentID, nil)
	assert.ErrorIs(t, err, domain.ErrCardNotFullySettled)

	// saldo 1, requerido 1: la disponibilidad estricta lo rechaza
	_, err = uc.SatisfyNormal(f.Ctx, "full", ledgertest.AgentID, nil)
	assert.ErrorIs(t, err, domain.ErrProductsNotAvailable)
	assert.Nil(t, f.CardByID("full").SatisfiedAt)
	assert.Len(t, f.History("p1"), 1, "el fallo no deja filas")

	future := f.Clock.Now().Add(time.Hour)
	_, err = uc.SatisfyNormal(f.Ctx, "full", ledgertest.AgentID, &future)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestSatisfyNormal_BillOfMaterialsOverflow(t *testing.T) {
	f := ledgertest.New(t)
	f.Type("huge", 100, []string{"p1"}, []int64{math.MaxInt64 / 2})
	f.Stock("p1", 50)
	f.Card("c1", "huge", 3)
	f.Units("c1", 372)
	uc := newUseCase(f)

	_, err := uc.SatisfyNormal(f.Ctx, "c1", ledgertest.AgentID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)
	assert.Equal(t, int64(50), f.Balance("p1"))
	assert.Nil(t, f.CardByID("c1").SatisfiedAt)
}

func TestSatisfy_AlreadySatisfied(t *testing.T) {
	f := ledgertest.New(t)
	fullCard(f, 1)
	uc := newUseCase(f)

	past := f.Clock.Now().Add(-24 * time.Hour)
	sat, err := uc.SatisfyNormal(f.Ctx, "c1", ledgertest.AgentID, &past)
	require.NoError(t, err)
	require.NotNil(t, sat.Card.SatisfiedAt)
	assert.Equal(t, past, *sat.Card.SatisfiedAt)

	_, err = uc.SatisfyNormal(f.Ctx, "c1", ledgertest.AgentID, nil)
	assert.ErrorIs(t, err, domain.ErrCardSatisfied)
}

func TestSatisfyConstrained_RetrocedesExactRows(t *testing.T) {
	f := ledgertest.New(t)
	fullCard(f, 1)
	f.Product("p3")
	f.Stock("p3", 20)
	uc := newUseCase(f)

	sat, err := uc.Satisfy(f.Ctx, "c1", ledgertest.AgentID, dto.SatisfyCardRequest{
		Mode:            dto.SatisfactionConstrained,
		ProductsIDs:     []string{"p3", "p1"},
		ProductsNumbers: []int64{7, 3},
	})
	require.NoError(t, err)
	require.Len(t, sat.Movements, 2)
	assert.Equal(t, entity.MovementConstrainedOutput, sat.Movements[0].MovementType)
	assert.Equal(t, int64(13), f.Balance("p3"))
	assert.Equal(t, int64(47), f.Balance("p1"))
	assert.Equal(t, int64(50), f.Balance("p2"), "p2 no está en la lista explícita")

	ret, err := uc.Retrocede(f.Ctx, "c1", ledgertest.AgentID)
	require.NoError(t, err)
	require.Len(t, ret.Movements, 2)
	for _, m := range ret.Movements {
		assert.Equal(t, entity.MovementRetrocessionInput, m.MovementType)
	}
	assert.Equal(t, int64(20), f.Balance("p3"))
	assert.Equal(t, int64(50), f.Balance("p1"))
	assert.Equal(t, int64(50), f.Balance("p2"))
}

func TestSatisfyConstrained_Validation(t *testing.T) {
	f := ledgertest.New(t)
	fullCard(f, 1)
	uc := newUseCase(f)

	_, err := uc.SatisfyConstrained(f.Ctx, "c1", ledgertest.AgentID, []string{"p1", "p2"}, []int64{1}, nil)
	assert.ErrorIs(t, err, domain.ErrArrayLengthMismatch)
	_, err = uc.SatisfyConstrained(f.Ctx, "c1", ledgertest.AgentID, []string{"p1", "p1"}, []int64{1, 1}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)
	_, err = uc.SatisfyConstrained(f.Ctx, "c1", ledgertest.AgentID, []string{"p1"}, []int64{100}, nil)
	assert.ErrorIs(t, err, domain.ErrProductsNotAvailable)
}

func TestRetrocede_Guards(t *testing.T) {
	f := ledgertest.New(t)
	fullCard(f, 1)
	uc := newUseCase(f)

	_, err := uc.Retrocede(f.Ctx, "c1", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrCardNotSatisfied)

	// satisfecha sin filas de salida (importada): nada que revertir
	now := f.Clock.Now()
	f.Store.AddCard(entity.Card{ID: "legacy", TypeID: "t1", TypesNumber: 1, SatisfiedAt: &now})
	_, err = uc.Retrocede(f.Ctx, "legacy", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrCardNotSatisfied)

	f.Store.AddCard(entity.Card{ID: "repaid", TypeID: "t1", TypesNumber: 1, SatisfiedAt: &now, RepaidAt: &now})
	_, err = uc.Retrocede(f.Ctx, "repaid", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrCardRepaid)
}

func TestAmend(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	_, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", 10))
	require.NoError(t, err)
	out, err := uc.ManualOutput(f.Ctx, ledgertest.AgentID, input("p1", 4))
	require.NoError(t, err)

	amended, err := uc.Amend(f.Ctx, out.ID, dto.AmendStockRequest{Quantity: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(1), amended.StockQuantity)
	assert.Equal(t, int64(1), f.Balance("p1"))
	f.AssertStockChain("p1")

	_, err = uc.Amend(f.Ctx, out.ID, dto.AmendStockRequest{Quantity: 11})
	assert.ErrorIs(t, err, domain.ErrInsufficientStockQuantity)
}

func TestAmend_OnlyLatestManualRow(t *testing.T) {
	f := ledgertest.New(t)
	fullCard(f, 1)
	uc := newUseCase(f)

	first := f.History("p1")[0]
	_, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", 1))
	require.NoError(t, err)
	_, err = uc.Amend(f.Ctx, first.ID, dto.AmendStockRequest{Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrImmutableStock, "no es la última fila")

	sat, err := uc.SatisfyNormal(f.Ctx, "c1", ledgertest.AgentID, nil)
	require.NoError(t, err)
	_, err = uc.Amend(f.Ctx, sat.Movements[0].ID, dto.AmendStockRequest{Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrImmutableStock, "no es manual")

	_, err = uc.Amend(f.Ctx, "ghost", dto.AmendStockRequest{Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrStockNotFound)
}

func TestRemove(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	in, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", 10))
	require.NoError(t, err)
	out, err := uc.ManualOutput(f.Ctx, ledgertest.AgentID, input("p1", 4))
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Remove(f.Ctx, out.ID), domain.ErrImmutableStock, "solo entradas manuales")
	assert.ErrorIs(t, uc.Remove(f.Ctx, in.ID), domain.ErrImmutableStock, "solo la última fila")

	in2, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", 5))
	require.NoError(t, err)
	require.NoError(t, uc.Remove(f.Ctx, in2.ID))
	assert.Equal(t, int64(6), f.Balance("p1"))
	f.AssertStockChain("p1")
}

func TestBalanceAndHistory(t *testing.T) {
	f := ledgertest.New(t)
	f.Product("p1")
	uc := newUseCase(f)

	bal, err := uc.Balance(f.Ctx, "p1")
	require.NoError(t, err)
	assert.False(t, bal.InStock)
	assert.Nil(t, bal.LastMovementAt)

	for i := 0; i < 3; i++ {
		_, err := uc.ManualInput(f.Ctx, ledgertest.AgentID, input("p1", 2))
		require.NoError(t, err)
	}
	bal, err = uc.Balance(f.Ctx, "p1")
	require.NoError(t, err)
	assert.True(t, bal.InStock)
	assert.Equal(t, int64(6), bal.Quantity)

	hist, err := uc.History(f.Ctx, "p1", dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, hist.Items, 2)
	assert.Equal(t, int64(4), hist.Items[0].StockQuantity)
	assert.Equal(t, int64(6), hist.Items[1].StockQuantity)
	assert.False(t, hist.Page.HasMore)

	hist, err = uc.History(f.Ctx, "p1", dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, hist.Items, 2)
	assert.True(t, hist.Page.HasMore)

	_, err = uc.Balance(f.Ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
