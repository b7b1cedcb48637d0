package ledger

import (
	"math"

	"github.com/jhoicas/Ahorro-api/internal/domain"
	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
)

// ValidateBillOfMaterials valida una lista explícita de productos y cantidades.
func ValidateBillOfMaterials(productIDs []string, quantities []int64) error {
	if len(productIDs) != len(quantities) {
		return domain.ErrArrayLengthMismatch
	}
	if len(productIDs) == 0 {
		return domain.ErrInvalidNumber
	}
	seen := make(map[string]struct{}, len(productIDs))
	for i, id := range productIDs {
		if id == "" || quantities[i] <= 0 {
			return domain.ErrInvalidNumber
		}
		if _, ok := seen[id]; ok {
			return domain.ErrDuplicateProduct
		}
		seen[id] = struct{}{}
	}
	return nil
}

// BillOfMaterials cantidades por producto del tipo para typesNumber unidades.
// Un producto cuya cantidad no cabe en int64 devuelve ErrInvalidNumber.
func BillOfMaterials(t *entity.CardType, typesNumber int) ([]string, []int64, error) {
	if len(t.ProductsIDs) != len(t.ProductsNumbers) {
		return nil, nil, domain.ErrArrayLengthMismatch
	}
	ids := make([]string, len(t.ProductsIDs))
	qty := make([]int64, len(t.ProductsIDs))
	copy(ids, t.ProductsIDs)
	for i, n := range t.ProductsNumbers {
		q, err := ScaleQuantity(n, typesNumber)
		if err != nil {
			return nil, nil, err
		}
		qty[i] = q
	}
	return ids, qty, nil
}

// ScaleQuantity n × factor con control de desborde.
func ScaleQuantity(n int64, factor int) (int64, error) {
	f := int64(factor)
	if n < 0 || f < 0 {
		return 0, domain.ErrInvalidNumber
	}
	if f != 0 && n > math.MaxInt64/f {
		return 0, domain.ErrInvalidNumber
	}
	return n * f, nil
}

// AddQuantity saldo + qty con control de desborde (el saldo de stock nunca da la vuelta).
func AddQuantity(balance, qty int64) (int64, error) {
	if qty < 0 || balance > math.MaxInt64-qty {
		return 0, domain.ErrInvalidNumber
	}
	return balance + qty, nil
}
