package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	infraredis "github.com/jhoicas/Ahorro-api/internal/infrastructure/redis"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera que identifica un POST reintentable.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// IdempotencyStore guarda respuestas por clave (implementado por infraredis.Client).
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Load(ctx context.Context, key string) (*infraredis.StoredResponse, error)
	Save(ctx context.Context, key string, resp infraredis.StoredResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Idempotency repite la respuesta guardada de un POST con la misma Idempotency-Key.
// La clave se aísla por agente y ruta. Si el almacén falla la petición sigue sin protección.
func Idempotency(store IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || c.Method() != fiber.MethodPost {
			return c.Next()
		}
		ctx := c.UserContext()
		full := GetAgentID(c) + ":" + c.Path() + ":" + key

		stored, err := store.Load(ctx, full)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotencia: lectura fallida")
			return c.Next()
		}
		if stored != nil {
			c.Set(HeaderReplayed, "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		ok, err := store.Reserve(ctx, full, ttl)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotencia: reserva fallida")
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "la petición con esa clave sigue en curso"})
		}

		if err := c.Next(); err != nil {
			release(ctx, store, full, log)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			release(ctx, store, full, log)
			return nil
		}
		resp := infraredis.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, full, resp, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotencia: guardado fallido")
		}
		return nil
	}
}

func release(ctx context.Context, store IdempotencyStore, key string, log *logger.Logger) {
	if err := store.Release(ctx, key); err != nil {
		log.Warn().Err(err).Msg("idempotencia: liberación fallida")
	}
}
