package card_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/application/card"
	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/ledgertest"
	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

func newUseCase(f *ledgertest.Fixture) *card.UseCase {
	return card.NewUseCase(f.Store, f.Rules, f.Events, logger.Nop(), card.WithClock(f.Clock.Now))
}

func TestCreate(t *testing.T) {
	f := ledgertest.New(t)
	f.Type("t1", 100, []string{"p1"}, []int64{1})
	uc := newUseCase(f)

	out, err := uc.Create(f.Ctx, dto.CreateCardRequest{CustomerID: ledgertest.CustomerID, TypeID: "t1", TypesNumber: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, entity.CardStateOpen, out.State)
	assert.Equal(t, 0, out.Units)
	assert.Equal(t, 372, out.Remaining)
	assert.Equal(t, 2, out.TypesNumber)
	assert.Equal(t, []string{ports.EventCardCreated}, f.Events.Names())
}

func TestCreate_Errors(t *testing.T) {
	f := ledgertest.New(t)
	f.Type("t1", 100, []string{"p1"}, []int64{1})
	uc := newUseCase(f)

	_, err := uc.Create(f.Ctx, dto.CreateCardRequest{CustomerID: "nope", TypeID: "t1", TypesNumber: 1})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	_, err = uc.Create(f.Ctx, dto.CreateCardRequest{CustomerID: ledgertest.CustomerID, TypeID: "nope", TypesNumber: 1})
	assert.ErrorIs(t, err, domain.ErrTypeNotFound)
	_, err = uc.Create(f.Ctx, dto.CreateCardRequest{CustomerID: ledgertest.CustomerID, TypeID: "t1", TypesNumber: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.Events.Names())
}

func TestGet_ReportsUnits(t *testing.T) {
	f := ledgertest.New(t)
	f.Type("t1", 100, []string{"p1"}, []int64{1})
	f.Card("c1", "t1", 1)
	f.Units("c1", 300)
	uc := newUseCase(f)

	out, err := uc.Get(f.Ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 300, out.Units)
	assert.Equal(t, 72, out.Remaining)

	_, err = uc.Get(f.Ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestRepay(t *testing.T) {
	f := ledgertest.New(t)
	f.Type("t1", 100, []string{"p1"}, []int64{1})
	f.Card("c1", "t1", 1)
	uc := newUseCase(f)

	out, err := uc.Repay(f.Ctx, "c1", ledgertest.AgentID)
	require.NoError(t, err)
	assert.Equal(t, entity.CardStateRepaid, out.State)
	require.NotNil(t, out.RepaidAt)
	assert.Equal(t, f.Clock.Now(), *out.RepaidAt)
	assert.NotNil(t, f.CardByID("c1").RepaidAt)

	_, err = uc.Repay(f.Ctx, "c1", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrCardRepaid)
}

func TestRepay_Guards(t *testing.T) {
	f := ledgertest.New(t)
	f.Type("t1", 100, []string{"p1"}, []int64{1})
	now := f.Clock.Now()
	f.Store.AddCard(entity.Card{ID: "satisfied", TypeID: "t1", TypesNumber: 1, SatisfiedAt: &now})
	f.Store.AddCard(entity.Card{ID: "transferred", TypeID: "t1", TypesNumber: 1, TransferredAt: &now})
	f.Card("open", "t1", 1)
	uc := newUseCase(f)

	_, err := uc.Repay(f.Ctx, "satisfied", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrCardSatisfied)
	_, err = uc.Repay(f.Ctx, "transferred", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrCardTransferred)
	_, err = uc.Repay(f.Ctx, "open", "ghost")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	_, err = uc.Repay(f.Ctx, "nope", ledgertest.AgentID)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
	assert.Nil(t, f.CardByID("open").RepaidAt)
}
