package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/internal/application/card"
	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/stock"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// CardHandler maneja el ciclo de vida de las tarjetas: apertura, reembolso,
// satisfacción y retrocesión (protegido).
type CardHandler struct {
	cards  *card.UseCase
	stocks *stock.UseCase
	log    *logger.Logger
}

// NewCardHandler construye el handler.
func NewCardHandler(cards *card.UseCase, stocks *stock.UseCase, log *logger.Logger) *CardHandler {
	return &CardHandler{cards: cards, stocks: stocks, log: log}
}

// Create godoc
// @Summary      Abrir tarjeta
// @Tags         cards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCardRequest  true  "customer_id, type_id, types_number"
// @Success      201   {object}  dto.CardResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cards [post]
func (h *CardHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCardRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.cards.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener tarjeta con estado y unidades
// @Tags         cards
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la tarjeta"
// @Success      200  {object}  dto.CardResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cards/{id} [get]
func (h *CardHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.cards.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Repay marca la tarjeta como reembolsada.
func (h *CardHandler) Repay(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	out, err := h.cards.Repay(c.UserContext(), c.Params("id"), agentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Satisfy godoc
// @Summary      Satisfacer tarjeta
// @Description  Entrega los productos del tipo (normal) o una lista explícita (constrained).
// @Description  Requiere tarjeta completa y stock estrictamente mayor a lo requerido.
// @Tags         cards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "clave de reintento"
// @Param        id    path  string                  true  "ID de la tarjeta"
// @Param        body  body  dto.SatisfyCardRequest  true  "mode, products_ids, products_numbers, satisfied_at"
// @Success      200   {object}  dto.SatisfactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cards/{id}/satisfy [post]
func (h *CardHandler) Satisfy(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	var in dto.SatisfyCardRequest
	if len(c.Body()) > 0 {
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.stocks.Satisfy(c.UserContext(), c.Params("id"), agentID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Retrocede godoc
// @Summary      Retroceder satisfacción
// @Description  Devuelve al stock lo entregado; una vez por tarjeta y hora.
// @Tags         cards
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la tarjeta"
// @Success      200  {object}  dto.SatisfactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cards/{id}/retrocede [post]
func (h *CardHandler) Retrocede(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	out, err := h.stocks.Retrocede(c.UserContext(), c.Params("id"), agentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
