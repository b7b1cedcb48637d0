package ledger

import (
	"github.com/shopspring/decimal"
)

// Valores por defecto de las reglas del libro mayor.
const (
	DefaultSettlementCap       = 372
	DefaultCardFee             = 300
	DefaultTransferNumerator   = 2
	DefaultTransferDenominator = 3
)

// Rules agrupa las constantes de negocio: tope de unidades por tarjeta, costo de tarjeta
// descontado en transferencias y fracción transferible del valor liquidado.
type Rules struct {
	SettlementCap       int
	CardFee             decimal.Decimal
	TransferNumerator   int64
	TransferDenominator int64
}

// DefaultRules devuelve las reglas estándar (372 unidades, costo 300, fracción 2/3).
func DefaultRules() Rules {
	return Rules{
		SettlementCap:       DefaultSettlementCap,
		CardFee:             decimal.NewFromInt(DefaultCardFee),
		TransferNumerator:   DefaultTransferNumerator,
		TransferDenominator: DefaultTransferDenominator,
	}
}

// SettlementAmount monto consumido de la colecta: number × typesNumber × stake.
func SettlementAmount(number, typesNumber int, stake decimal.Decimal) decimal.Decimal {
	return stake.Mul(decimal.NewFromInt(int64(number))).Mul(decimal.NewFromInt(int64(typesNumber)))
}

// ExceedsCap indica si sumar number unidades a units supera el tope.
// Compara contra el remanente para no desbordar con number grandes.
func (r Rules) ExceedsCap(units, number int) bool {
	return number > r.SettlementCap-units
}

// Remaining unidades que aún admite la tarjeta.
func (r Rules) Remaining(units int) int {
	if units >= r.SettlementCap {
		return 0
	}
	return r.SettlementCap - units
}

// IsFullySettled indica si la tarjeta alcanzó exactamente el tope.
func (r Rules) IsFullySettled(units int) bool {
	return units == r.SettlementCap
}

// CardValue valor liquidado de una tarjeta: V = units × typesNumber × stake.
func CardValue(units, typesNumber int, stake decimal.Decimal) decimal.Decimal {
	return SettlementAmount(units, typesNumber, stake)
}

// TransferValue = round(numerador/denominador × V − costo de tarjeta).
func (r Rules) TransferValue(v decimal.Decimal) decimal.Decimal {
	if r.TransferDenominator == 0 {
		return decimal.Zero
	}
	return v.Mul(decimal.NewFromInt(r.TransferNumerator)).
		Div(decimal.NewFromInt(r.TransferDenominator)).
		Sub(r.CardFee).
		Round(0)
}

// TransferUnits = round(transferValue / (typesNumber × stake)) de la tarjeta receptora.
func TransferUnits(transferValue decimal.Decimal, typesNumber int, stake decimal.Decimal) int {
	unitValue := SettlementAmount(1, typesNumber, stake)
	if !unitValue.IsPositive() {
		return 0
	}
	return int(transferValue.Div(unitValue).Round(0).IntPart())
}

// Available comparación estricta: el saldo debe quedar por encima de cero tras la salida.
// Agotar exactamente el stock se considera no disponible.
func Available(balance, required int64) bool {
	return balance-required > 0
}
