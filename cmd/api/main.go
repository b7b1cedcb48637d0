package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ahorro-api/docs"
	"github.com/jhoicas/Ahorro-api/internal/application/card"
	"github.com/jhoicas/Ahorro-api/internal/application/collection"
	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/application/settlement"
	"github.com/jhoicas/Ahorro-api/internal/application/stock"
	"github.com/jhoicas/Ahorro-api/internal/application/transfer"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/catalog"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/events"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Ahorro-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Ahorro-api/internal/interfaces/http"
	"github.com/jhoicas/Ahorro-api/pkg/config"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
	"github.com/jhoicas/Ahorro-api/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Observability.LogLevel,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	tp, err := tracing.Init(cfg.App.Name, cfg.Observability.JaegerEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	// Almacenamiento
	var (
		txRunner ports.TxRunner
		dbPinger httpRouter.Pinger
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		if cfg.Store.SeedDir != "" {
			cat, err := catalog.Load(cfg.Store.SeedDir, catalog.Options{
				Charset: cfg.Store.SeedCharset,
				Region:  cfg.Store.SeedRegion,
			})
			if err != nil {
				log.Fatal().Err(err).Str("dir", cfg.Store.SeedDir).Msg("cargar catálogo")
			}
			cat.Apply(store)
			log.Info().
				Int("agents", len(cat.Agents)).
				Int("collectors", len(cat.Collectors)).
				Int("customers", len(cat.Customers)).
				Int("products", len(cat.Products)).
				Int("types", len(cat.Types)).
				Msg("catálogo cargado en memoria")
		}
		txRunner = store
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.Store.RunMigrations {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
		}
		txRunner = postgres.NewTxRunner(pool)
		dbPinger = pool
	}

	// Eventos: Kafka si hay brokers, si no solo log
	var publisher events.Publisher = events.NewLogPublisher(log)
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos hacia Kafka")
	}
	notifier := events.NewNotifier(publisher, log.Component("events"), events.DefaultTimeout)

	// Idempotencia opcional
	var idempotency httpRouter.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rc, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rc.Close()
		idempotency = rc
	}

	rules := ledger.Rules{
		SettlementCap:       cfg.Ledger.SettlementCap,
		CardFee:             decimal.NewFromInt(cfg.Ledger.CardFee),
		TransferNumerator:   cfg.Ledger.TransferNumerator,
		TransferDenominator: cfg.Ledger.TransferDenominator,
	}

	collectionUC := collection.NewUseCase(txRunner, notifier, log.Component("collection"))
	settlementUC := settlement.NewUseCase(txRunner, rules, notifier, log.Component("settlement"))
	cardUC := card.NewUseCase(txRunner, rules, notifier, log.Component("card"))
	stockUC := stock.NewUseCase(txRunner, rules, notifier, log.Component("stock"))
	transferUC := transfer.NewUseCase(txRunner, rules, notifier, log.Component("transfer"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(httpRouter.SwaggerDocs(docs.SwaggerJSON, cfg.App.Name+" API"))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CollectionUC:   collectionUC,
		SettlementUC:   settlementUC,
		CardUC:         cardUC,
		StockUC:        stockUC,
		TransferUC:     transferUC,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
		DB:             dbPinger,
		Idempotency:    idempotency,
		IdempotencyTTL: time.Duration(cfg.Redis.IdempotencyTTL) * time.Second,
		Logger:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Eventos en vuelo antes de cerrar el productor
	notifier.Wait()
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado de trazas")
		}
	}

	log.Info().Msg("aplicación detenida")
}
