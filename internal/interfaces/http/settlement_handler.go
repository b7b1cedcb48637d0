package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/settlement"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// SettlementHandler maneja las liquidaciones de colectas contra tarjetas (protegido).
type SettlementHandler struct {
	uc  *settlement.UseCase
	log *logger.Logger
}

// NewSettlementHandler construye el handler.
func NewSettlementHandler(uc *settlement.UseCase, log *logger.Logger) *SettlementHandler {
	return &SettlementHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Liquidar unidades
// @Description  Descuenta stake × types_number × number del saldo de la colecta.
// @Tags         settlements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "clave de reintento"
// @Param        body  body  dto.CreateSettlementRequest  true  "card_id, collection_id, number"
// @Success      201   {object}  dto.SettlementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/settlements [post]
func (h *SettlementHandler) Create(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSettlementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), agentID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID devuelve una liquidación.
func (h *SettlementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Modificar liquidación
// @Description  Cambia number o is_validated; tarjeta, colecta y agente son inmutables.
// @Tags         settlements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la liquidación"
// @Param        body  body  dto.UpdateSettlementRequest  true  "number, is_validated"
// @Success      200   {object}  dto.SettlementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/settlements/{id} [patch]
func (h *SettlementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSettlementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete elimina una liquidación y devuelve su monto a la colecta.
func (h *SettlementHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByCard godoc
// @Summary      Liquidaciones de una tarjeta
// @Tags         cards
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la tarjeta"
// @Success      200  {object}  dto.SettlementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cards/{id}/settlements [get]
func (h *SettlementHandler) ListByCard(c *fiber.Ctx) error {
	out, err := h.uc.ListByCard(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
