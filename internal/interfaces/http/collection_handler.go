package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/internal/application/collection"
	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// CollectionHandler maneja las colectas diarias de los colectores (protegido).
type CollectionHandler struct {
	uc  *collection.UseCase
	log *logger.Logger
}

// NewCollectionHandler construye el handler.
func NewCollectionHandler(uc *collection.UseCase, log *logger.Logger) *CollectionHandler {
	return &CollectionHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar colecta
// @Description  Una colecta por colector y día; rest inicia igual a amount.
// @Tags         collections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "clave de reintento"
// @Param        body  body  dto.CreateCollectionRequest  true  "collector_id, amount, collected_at"
// @Success      201   {object}  dto.CollectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/collections [post]
func (h *CollectionHandler) Create(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	var in dto.CreateCollectionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), agentID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener colecta
// @Tags         collections
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la colecta"
// @Success      200  {object}  dto.CollectionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/collections/{id} [get]
func (h *CollectionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Modificar colecta
// @Description  Colector, fecha y monto solo cambian mientras la colecta no tenga liquidaciones.
// @Tags         collections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la colecta"
// @Param        body  body  dto.UpdateCollectionRequest  true  "campos a modificar"
// @Success      200   {object}  dto.CollectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/collections/{id} [patch]
func (h *CollectionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCollectionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajustar monto de colecta
// @Tags         collections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la colecta"
// @Param        body  body  dto.AdjustCollectionRequest  true  "amount, operation (increase|decrease)"
// @Success      200   {object}  dto.CollectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/collections/{id}/adjust [post]
func (h *CollectionHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustCollectionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Adjust(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete elimina una colecta sin liquidaciones.
func (h *CollectionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
