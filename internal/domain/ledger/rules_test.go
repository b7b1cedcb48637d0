package ledger_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
)

func TestSettlementAmount(t *testing.T) {
	got := ledger.SettlementAmount(10, 2, decimal.NewFromInt(100))
	assert.True(t, got.Equal(decimal.NewFromInt(2000)), "10 × 2 × 100 = 2000, got %s", got)
}

func TestRules_ExceedsCap(t *testing.T) {
	r := ledger.DefaultRules()

	assert.False(t, r.ExceedsCap(370, 2), "370 + 2 = 372 es el tope exacto")
	assert.True(t, r.ExceedsCap(370, 3))
	assert.True(t, r.ExceedsCap(10, math.MaxInt-5), "no debe desbordar")
	assert.True(t, r.ExceedsCap(400, 0))
	assert.Equal(t, 2, r.Remaining(370))
	assert.Equal(t, 0, r.Remaining(400))
	assert.True(t, r.IsFullySettled(372))
	assert.False(t, r.IsFullySettled(371))
}

// Escenario de transferencia: emisora 300 unidades, tn=1, stake=100; receptora tn=1, stake=100.
func TestRules_TransferValuation(t *testing.T) {
	r := ledger.DefaultRules()
	stake := decimal.NewFromInt(100)

	v := ledger.CardValue(300, 1, stake)
	require.True(t, v.Equal(decimal.NewFromInt(30000)))

	value := r.TransferValue(v)
	assert.True(t, value.Equal(decimal.NewFromInt(19700)), "round(2/3 × 30000 − 300) = 19700, got %s", value)
	assert.Equal(t, 197, ledger.TransferUnits(value, 1, stake))
}

func TestRules_TransferValue_RoundsHalfAwayFromZero(t *testing.T) {
	r := ledger.DefaultRules()

	// 2/3 × 1000 − 300 = 366.67 → 367
	assert.True(t, r.TransferValue(decimal.NewFromInt(1000)).Equal(decimal.NewFromInt(367)))
	// 1.5 unidades → 2
	assert.Equal(t, 2, ledger.TransferUnits(decimal.NewFromInt(150), 1, decimal.NewFromInt(100)))
	// valor negativo → unidades negativas (la capa de aplicación rechaza < 1)
	assert.Less(t, ledger.TransferUnits(r.TransferValue(decimal.NewFromInt(300)), 1, decimal.NewFromInt(100)), 1)
}

func TestTransferUnits_ZeroStake(t *testing.T) {
	assert.Equal(t, 0, ledger.TransferUnits(decimal.NewFromInt(1000), 1, decimal.Zero))
}

func TestAvailable_Strict(t *testing.T) {
	assert.True(t, ledger.Available(10, 9))
	assert.False(t, ledger.Available(10, 10), "agotar exactamente el stock no está disponible")
	assert.False(t, ledger.Available(10, 11))
}

func TestEnsureOpen(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, ledger.EnsureOpen(&entity.Card{}))
	assert.ErrorIs(t, ledger.EnsureOpen(&entity.Card{RepaidAt: &now}), domain.ErrCardRepaid)
	assert.ErrorIs(t, ledger.EnsureOpen(&entity.Card{SatisfiedAt: &now}), domain.ErrCardSatisfied)
	assert.ErrorIs(t, ledger.EnsureOpen(&entity.Card{TransferredAt: &now}), domain.ErrCardTransferred)
	assert.ErrorIs(t, ledger.EnsureOpen(&entity.Card{RepaidAt: &now}), domain.ErrConflict)
}

func TestRules_EnsureSatisfiable(t *testing.T) {
	r := ledger.DefaultRules()

	assert.NoError(t, r.EnsureSatisfiable(&entity.Card{}, 372))
	assert.ErrorIs(t, r.EnsureSatisfiable(&entity.Card{}, 371), domain.ErrCardNotFullySettled)
}

func TestEnsureRetrocedable(t *testing.T) {
	now := time.Now()

	assert.ErrorIs(t, ledger.EnsureRetrocedable(&entity.Card{}), domain.ErrCardNotSatisfied)
	assert.ErrorIs(t, ledger.EnsureRetrocedable(&entity.Card{SatisfiedAt: &now, RepaidAt: &now}), domain.ErrCardRepaid)
	assert.NoError(t, ledger.EnsureRetrocedable(&entity.Card{SatisfiedAt: &now}))
}

func TestValidateBillOfMaterials(t *testing.T) {
	assert.NoError(t, ledger.ValidateBillOfMaterials([]string{"a", "b"}, []int64{1, 2}))
	assert.ErrorIs(t, ledger.ValidateBillOfMaterials([]string{"a", "b"}, []int64{1}), domain.ErrArrayLengthMismatch)
	assert.ErrorIs(t, ledger.ValidateBillOfMaterials([]string{"a", "a"}, []int64{1, 2}), domain.ErrDuplicateProduct)
	assert.ErrorIs(t, ledger.ValidateBillOfMaterials([]string{"a"}, []int64{0}), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateBillOfMaterials(nil, nil), domain.ErrInvalidNumber)
}

func TestParseCollectionDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	day, err := ledger.ParseCollectionDate("2024-03-10", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), day)

	day, err = ledger.ParseCollectionDate("2024-03-09T22:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), day)

	_, err = ledger.ParseCollectionDate("2024-03-11", now)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = ledger.ParseCollectionDate("10/03/2024", now)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestHourBucket(t *testing.T) {
	at := time.Date(2024, 3, 10, 15, 42, 7, 0, time.UTC)
	from, to := ledger.HourBucket(at)

	assert.Equal(t, time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC), to)
}

func TestHourBucket_HalfHourOffset(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	at := time.Date(2024, 3, 10, 15, 12, 0, 0, ist)
	from, to := ledger.HourBucket(at)

	assert.True(t, from.Equal(time.Date(2024, 3, 10, 15, 0, 0, 0, ist)), "got %s", from)
	assert.True(t, to.Equal(time.Date(2024, 3, 10, 16, 0, 0, 0, ist)), "got %s", to)
}

func TestAddQuantity_Overflow(t *testing.T) {
	got, err := ledger.AddQuantity(10, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got)

	_, err = ledger.AddQuantity(10, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)
	_, err = ledger.AddQuantity(0, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)
}

func TestBillOfMaterials_Scales(t *testing.T) {
	typ := &entity.CardType{ProductsIDs: []string{"p1", "p2"}, ProductsNumbers: []int64{2, 1}}

	ids, qty, err := ledger.BillOfMaterials(typ, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
	assert.Equal(t, []int64{6, 3}, qty)

	typ.ProductsNumbers = []int64{math.MaxInt64 / 2, 1}
	_, _, err = ledger.BillOfMaterials(typ, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	typ.ProductsNumbers = []int64{1}
	_, _, err = ledger.BillOfMaterials(typ, 1)
	assert.ErrorIs(t, err, domain.ErrArrayLengthMismatch)
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ledger.ValidateAmount(decimal.RequireFromString("0.0001")))
	assert.NoError(t, ledger.ValidateAmount(decimal.RequireFromString("9999999999999999.9999")))
	assert.ErrorIs(t, ledger.ValidateAmount(decimal.Zero), domain.ErrInvalidNumber)
	assert.ErrorIs(t, ledger.ValidateAmount(decimal.RequireFromString("100.00001")), domain.ErrInvalidNumber)
	assert.ErrorIs(t, ledger.ValidateAmount(ledger.MaxMoney), domain.ErrInvalidNumber)
}
