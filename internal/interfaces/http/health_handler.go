package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// Pinger verifica la conexión al almacenamiento (pgxpool.Pool lo implementa).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler estado del servicio (público).
type HealthHandler struct {
	service string
	db      Pinger
	log     *logger.Logger
}

// NewHealthHandler construye el handler; db puede ser nil (almacén en memoria).
func NewHealthHandler(service string, db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{service: service, db: db, log: log}
}

// Check godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("health: base de datos no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": h.service})
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "service": h.service})
}
