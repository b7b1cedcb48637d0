package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que los repos traducen a errores de dominio.
const (
	sqlStateForeignKey = "23503"
	sqlStateUnique     = "23505"
	sqlStateCheck      = "23514"
)

// pgCode devuelve el SQLSTATE de err y la constraint involucrada ("" si no es un error de Postgres).
func pgCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == sqlStateUnique
}

// isForeignKeyViolation indica que la fila sigue referenciada (o referencia una inexistente).
func isForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == sqlStateForeignKey
}

// isCheckViolation indica que se violó la constraint CHECK nombrada.
func isCheckViolation(err error, constraint string) bool {
	code, name := pgCode(err)
	return code == sqlStateCheck && name == constraint
}

// isNoRows indica que QueryRow no encontró fila; los repos lo traducen a (nil, nil).
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
