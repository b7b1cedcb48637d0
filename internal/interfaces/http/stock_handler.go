package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
	"github.com/jhoicas/Ahorro-api/internal/application/stock"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// StockHandler maneja los movimientos manuales y las consultas de stock (protegido).
type StockHandler struct {
	uc  *stock.UseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.UseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// Input godoc
// @Summary      Entrada manual de stock
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocks/input [post]
func (h *StockHandler) Input(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	var in dto.StockMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.ManualInput(c.UserContext(), agentID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Output godoc
// @Summary      Salida manual de stock
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stocks/output [post]
func (h *StockHandler) Output(c *fiber.Ctx) error {
	agentID := GetAgentID(c)
	if agentID == "" {
		return unauthorized(c)
	}
	var in dto.StockMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.ManualOutput(c.UserContext(), agentID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Availability consulta si hay stock para una lista de productos.
func (h *StockHandler) Availability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CheckAvailability(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Amend corrige la cantidad de la última fila manual de un producto.
func (h *StockHandler) Amend(c *fiber.Ctx) error {
	var in dto.AmendStockRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Amend(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete elimina la última entrada manual de un producto.
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Balance godoc
// @Summary      Saldo de un producto
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.Balance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "máximo de filas (1-100, por defecto 20)"
// @Param        offset  query  int     false  "filas a saltar"
// @Success      200  {object}  dto.StockHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock/history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	if ok, err := checkStruct(c, &page); !ok {
		return err
	}
	out, err := h.uc.History(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
