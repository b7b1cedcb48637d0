package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ahorro-api/internal/domain"
)

// MoneyScale decimales que admite un monto (columnas NUMERIC(20, 4)).
const MoneyScale = 4

// MaxMoney cota exclusiva de un monto: 16 dígitos enteros.
var MaxMoney = decimal.New(1, 16)

// ValidateAmount exige un monto positivo, con a lo sumo MoneyScale decimales y por debajo de MaxMoney.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() || d.GreaterThanOrEqual(MaxMoney) {
		return domain.ErrInvalidNumber
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return domain.ErrInvalidNumber
	}
	return nil
}
