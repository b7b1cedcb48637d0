package collection_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/application/collection"
	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/ledgertest"
	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

func newUseCase(f *ledgertest.Fixture) *collection.UseCase {
	return collection.NewUseCase(f.Store, f.Events, logger.Nop(), collection.WithClock(f.Clock.Now))
}

func create(t *testing.T, uc *collection.UseCase, f *ledgertest.Fixture, amount int64, day string) *dto.CollectionResponse {
	t.Helper()
	out, err := uc.Create(f.Ctx, ledgertest.AgentID, dto.CreateCollectionRequest{
		CollectorID: ledgertest.CollectorID,
		Amount:      decimal.NewFromInt(amount),
		CollectedAt: day,
	})
	require.NoError(t, err)
	return out
}

func TestCreate_RestEqualsAmount(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)

	out := create(t, uc, f, 100000, "2024-03-15")

	assert.True(t, out.Rest.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, "2024-03-15", out.CollectedAt)
	assert.Equal(t, ledgertest.AgentID, out.AgentID)
	assert.Equal(t, []string{ports.EventCollectionCreated}, f.Events.Names())
}

func TestCreate_Errors(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)

	cases := []struct {
		name    string
		agentID string
		in      dto.CreateCollectionRequest
		want    error
	}{
		{"colector inexistente", ledgertest.AgentID, dto.CreateCollectionRequest{CollectorID: "nope", Amount: decimal.NewFromInt(1), CollectedAt: "2024-03-15"}, domain.ErrCollectorNotFound},
		{"agente inexistente", "nope", dto.CreateCollectionRequest{CollectorID: ledgertest.CollectorID, Amount: decimal.NewFromInt(1), CollectedAt: "2024-03-15"}, domain.ErrAgentNotFound},
		{"fecha futura", ledgertest.AgentID, dto.CreateCollectionRequest{CollectorID: ledgertest.CollectorID, Amount: decimal.NewFromInt(1), CollectedAt: "2024-03-16"}, domain.ErrInvalidDate},
		{"fecha ilegible", ledgertest.AgentID, dto.CreateCollectionRequest{CollectorID: ledgertest.CollectorID, Amount: decimal.NewFromInt(1), CollectedAt: "ayer"}, domain.ErrInvalidDate},
		{"monto cero", ledgertest.AgentID, dto.CreateCollectionRequest{CollectorID: ledgertest.CollectorID, Amount: decimal.Zero, CollectedAt: "2024-03-15"}, domain.ErrInvalidInput},
		{"más de 4 decimales", ledgertest.AgentID, dto.CreateCollectionRequest{CollectorID: ledgertest.CollectorID, Amount: decimal.RequireFromString("100.00005"), CollectedAt: "2024-03-15"}, domain.ErrInvalidNumber},
		{"monto fuera de rango", ledgertest.AgentID, dto.CreateCollectionRequest{CollectorID: ledgertest.CollectorID, Amount: decimal.New(1, 16), CollectedAt: "2024-03-15"}, domain.ErrInvalidNumber},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(f.Ctx, tc.agentID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreate_DuplicateSameDay(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)
	create(t, uc, f, 500, "2024-03-14")

	_, err := uc.Create(f.Ctx, ledgertest.AgentID, dto.CreateCollectionRequest{
		CollectorID: ledgertest.CollectorID,
		Amount:      decimal.NewFromInt(700),
		CollectedAt: "2024-03-14T18:00:00Z",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCollection)

	// otro día sí se permite
	create(t, uc, f, 700, "2024-03-13")
}

func TestAdjust(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)
	c := create(t, uc, f, 1000, "2024-03-15")

	out, err := uc.Adjust(f.Ctx, c.ID, dto.AdjustCollectionRequest{Amount: decimal.NewFromInt(200), Operation: dto.AdjustIncrease})
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(1200)))
	assert.True(t, out.Rest.Equal(decimal.NewFromInt(1200)))

	out, err = uc.Adjust(f.Ctx, c.ID, dto.AdjustCollectionRequest{Amount: decimal.NewFromInt(1200), Operation: dto.AdjustDecrease})
	require.NoError(t, err)
	assert.True(t, out.Rest.IsZero())

	_, err = uc.Adjust(f.Ctx, c.ID, dto.AdjustCollectionRequest{Amount: decimal.NewFromInt(1), Operation: dto.AdjustDecrease})
	assert.ErrorIs(t, err, domain.ErrInsufficientAmount)

	_, err = uc.Adjust(f.Ctx, "nope", dto.AdjustCollectionRequest{Amount: decimal.NewFromInt(1), Operation: dto.AdjustIncrease})
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

// Los montos se guardan tal cual en NUMERIC(20, 4): nada con más escala o fuera de rango entra.
func TestAmounts_FitMoneyColumns(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)

	out, err := uc.Create(f.Ctx, ledgertest.AgentID, dto.CreateCollectionRequest{
		CollectorID: ledgertest.CollectorID,
		Amount:      decimal.RequireFromString("100.0050"),
		CollectedAt: "2024-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "100.005", out.Amount.String())

	_, err = uc.Adjust(f.Ctx, out.ID, dto.AdjustCollectionRequest{Amount: decimal.RequireFromString("0.12345"), Operation: dto.AdjustIncrease})
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	near := decimal.New(1, 16).Sub(decimal.NewFromInt(50))
	_, err = uc.Adjust(f.Ctx, out.ID, dto.AdjustCollectionRequest{Amount: near, Operation: dto.AdjustIncrease})
	assert.ErrorIs(t, err, domain.ErrInvalidNumber, "amount resultante fuera de rango")

	bad := decimal.RequireFromString("99.99999")
	_, err = uc.Update(f.Ctx, out.ID, dto.UpdateCollectionRequest{Amount: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	c := f.CollectionByID(out.ID)
	assert.Equal(t, "100.005", c.Amount.String())
	assert.Equal(t, "100.005", c.Rest.String())
}

func TestUpdate_WithoutSettlements(t *testing.T) {
	f := ledgertest.New(t)
	f.Store.AddCollector(entity.Collector{ID: "collector-2"})
	uc := newUseCase(f)
	c := create(t, uc, f, 1000, "2024-03-15")

	newAmount := decimal.NewFromInt(1500)
	newDay := "2024-03-10"
	other := "collector-2"
	out, err := uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{Amount: &newAmount, CollectedAt: &newDay, CollectorID: &other})
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(newAmount))
	assert.True(t, out.Rest.Equal(newAmount))
	assert.Equal(t, "2024-03-10", out.CollectedAt)
	assert.Equal(t, "collector-2", out.CollectorID)
}

func TestUpdate_AgentImmutable(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)
	c := create(t, uc, f, 1000, "2024-03-15")

	other := "agent-2"
	_, err := uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{AgentID: &other})
	assert.ErrorIs(t, err, domain.ErrAgentImmutable)

	same := ledgertest.AgentID
	_, err = uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{AgentID: &same})
	assert.NoError(t, err)
}

func TestUpdate_DateKeepsOnePerDay(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)
	create(t, uc, f, 1000, "2024-03-14")
	c := create(t, uc, f, 1000, "2024-03-15")

	day := "2024-03-14"
	_, err := uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{CollectedAt: &day})
	assert.ErrorIs(t, err, domain.ErrDuplicateCollection)
}

// GIVEN una colecta referenciada por una liquidación
// WHEN se intenta cambiar colector, fecha, monto o eliminarla
// THEN cada cambio falla con su error de inmutabilidad
func TestUpdate_ImmutableWhenSettled(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)
	c := create(t, uc, f, 1000, "2024-03-15")
	f.Store.AddSettlement(entity.Settlement{ID: "s1", CardID: "card-1", CollectionID: &c.ID, Number: 1, IsValidated: true})

	collector := ledgertest.CollectorID + "-x"
	day := "2024-03-01"
	amount := decimal.NewFromInt(5)

	_, err := uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{CollectorID: &collector})
	assert.ErrorIs(t, err, domain.ErrCollectorImmutable)
	_, err = uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{CollectedAt: &day})
	assert.ErrorIs(t, err, domain.ErrCollectionDateImmutable)
	_, err = uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{Amount: &amount})
	assert.ErrorIs(t, err, domain.ErrAmountImmutable)
	assert.ErrorIs(t, uc.Remove(f.Ctx, c.ID), domain.ErrCollectionHasSettlements)
}

func TestUpdate_AmountMovesRest(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)
	c := create(t, uc, f, 1000, "2024-03-15")

	amount := decimal.NewFromInt(400)
	out, err := uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(amount))
	assert.True(t, out.Rest.Equal(amount))

	zero := decimal.Zero
	_, err = uc.Update(f.Ctx, c.ID, dto.UpdateCollectionRequest{Amount: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemove(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)
	c := create(t, uc, f, 1000, "2024-03-15")

	require.NoError(t, uc.Remove(f.Ctx, c.ID))
	_, err := uc.Get(f.Ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
	assert.Contains(t, f.Events.Names(), ports.EventCollectionDeleted)
}

func TestGet_UsesInjectedClockForFutureCheck(t *testing.T) {
	f := ledgertest.New(t)
	uc := newUseCase(f)

	_, err := uc.Create(f.Ctx, ledgertest.AgentID, dto.CreateCollectionRequest{
		CollectorID: ledgertest.CollectorID, Amount: decimal.NewFromInt(1), CollectedAt: "2024-03-16",
	})
	require.ErrorIs(t, err, domain.ErrInvalidDate)

	f.Clock.Advance(24 * time.Hour)
	create(t, uc, f, 1, "2024-03-16")
}
