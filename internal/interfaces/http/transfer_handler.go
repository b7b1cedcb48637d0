package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/transfer"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// TransferHandler maneja las transferencias de valor entre tarjetas (protegido).
type TransferHandler struct {
	uc  *transfer.UseCase
	log *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Proponer transferencia
// @Description  Queda pendiente hasta que un supervisor la valide o rechace.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "issuing_card_id, receiving_card_id"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), agentID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID devuelve la transferencia con su valoración.
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Validar o rechazar transferencia
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la transferencia"
// @Param        body  body  dto.UpdateTransferRequest  true  "validate | reject"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [patch]
func (h *TransferHandler) Update(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateTransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), agentID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Validate aplica la transferencia pendiente.
func (h *TransferHandler) Validate(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Validate(c.UserContext(), c.Params("id"), agentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reject descarta la transferencia pendiente.
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Reject(c.UserContext(), c.Params("id"), agentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete elimina la transferencia y revierte sus efectos si estaba validada.
func (h *TransferHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
