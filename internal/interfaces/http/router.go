package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Ahorro-api/internal/application/card"
	"github.com/jhoicas/Ahorro-api/internal/application/collection"
	"github.com/jhoicas/Ahorro-api/internal/application/settlement"
	"github.com/jhoicas/Ahorro-api/internal/application/stock"
	"github.com/jhoicas/Ahorro-api/internal/application/transfer"
	"github.com/jhoicas/Ahorro-api/pkg/jwt"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CollectionUC   *collection.UseCase
	SettlementUC   *settlement.UseCase
	CardUC         *card.UseCase
	StockUC        *stock.UseCase
	TransferUC     *transfer.UseCase
	JWTSecret      string
	ServiceName    string
	DB             Pinger           // nil = sin verificación de base de datos
	Idempotency    IdempotencyStore // nil = sin idempotencia
	IdempotencyTTL time.Duration
	Logger         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(Metrics())

	// Público
	health := NewHealthHandler(deps.ServiceName, deps.DB, deps.Logger)
	app.Get("/health", health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	handlers := []fiber.Handler{AuthMiddleware(deps.JWTSecret)}
	if deps.Idempotency != nil {
		handlers = append(handlers, Idempotency(deps.Idempotency, deps.IdempotencyTTL, deps.Logger))
	}
	protected := api.Group("/", handlers...)
	supervisors := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor)

	// Collections
	collections := protected.Group("/collections")
	collectionHandler := NewCollectionHandler(deps.CollectionUC, deps.Logger)
	collections.Post("/", collectionHandler.Create)
	collections.Get("/:id", collectionHandler.GetByID)
	collections.Patch("/:id", collectionHandler.Update)
	collections.Post("/:id/adjust", collectionHandler.Adjust)
	collections.Delete("/:id", supervisors, collectionHandler.Delete)

	// Settlements
	settlements := protected.Group("/settlements")
	settlementHandler := NewSettlementHandler(deps.SettlementUC, deps.Logger)
	settlements.Post("/", settlementHandler.Create)
	settlements.Get("/:id", settlementHandler.GetByID)
	settlements.Patch("/:id", settlementHandler.Update)
	settlements.Delete("/:id", supervisors, settlementHandler.Delete)

	// Cards
	cards := protected.Group("/cards")
	cardHandler := NewCardHandler(deps.CardUC, deps.StockUC, deps.Logger)
	cards.Post("/", cardHandler.Create)
	cards.Get("/:id", cardHandler.GetByID)
	cards.Get("/:id/settlements", settlementHandler.ListByCard)
	cards.Post("/:id/repay", supervisors, cardHandler.Repay)
	cards.Post("/:id/satisfy", cardHandler.Satisfy)
	cards.Post("/:id/retrocede", supervisors, cardHandler.Retrocede)

	// Stocks
	stocks := protected.Group("/stocks")
	stockHandler := NewStockHandler(deps.StockUC, deps.Logger)
	stocks.Post("/input", stockHandler.Input)
	stocks.Post("/output", stockHandler.Output)
	stocks.Post("/availability", stockHandler.Availability)
	stocks.Patch("/:id", supervisors, stockHandler.Amend)
	stocks.Delete("/:id", supervisors, stockHandler.Delete)

	products := protected.Group("/products")
	products.Get("/:id/stock", stockHandler.Balance)
	products.Get("/:id/stock/history", stockHandler.History)

	// Transfers
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC, deps.Logger)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Patch("/:id", supervisors, transferHandler.Update)
	transfers.Post("/:id/validate", supervisors, transferHandler.Validate)
	transfers.Post("/:id/reject", supervisors, transferHandler.Reject)
	transfers.Delete("/:id", supervisors, transferHandler.Delete)
}
