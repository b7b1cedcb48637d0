package entity

import "github.com/shopspring/decimal"

// CardType es el producto de ahorro ("tipo"): monto por unidad de liquidación y lista de materiales.
// ProductsIDs y ProductsNumbers son arreglos paralelos sin productos repetidos; las cantidades
// escaladas por typesNumber se obtienen con ledger.BillOfMaterials.
type CardType struct {
	ID              string
	Name            string
	Stake           decimal.Decimal
	ProductsIDs     []string
	ProductsNumbers []int64
}
