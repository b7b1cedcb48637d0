package ports

import (
	"context"

	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con todos los repositorios atados a ella.
// Si fn devuelve error se hace Rollback; si no, Commit. Ningún efecto parcial queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}
