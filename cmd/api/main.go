package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/auth"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/deletion"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/estimate"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/ledger"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/reservation"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/stock"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/usecase"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/infrastructure/postgres"
	httpRouter "github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/interfaces/http"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/config"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/logger"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	materialRepo := postgres.NewMaterialRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	levelRepo := postgres.NewStockLevelRepository(pool)
	estimateRepo := postgres.NewEstimateRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	materialUC := usecase.NewMaterialUseCase(materialRepo)
	locationUC := usecase.NewLocationUseCase(locationRepo)
	ledgerUC := ledger.NewMovementLedgerUseCase(txRunner, materialRepo, movementRepo)
	projectionUC := stock.NewProjectionUseCase(materialRepo, movementRepo, levelRepo)
	trackerUC := reservation.NewTrackerUseCase(reservationRepo)
	estimateUC := estimate.NewEngineUseCase(txRunner, estimateRepo, materialRepo)
	resolverUC := deletion.NewResolverUseCase(txRunner)
	orchestratorUC := deletion.NewOrchestratorUseCase(txRunner, resolverUC)

	retryOpts := retry.Options{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BackoffBase: time.Duration(cfg.Retry.BackoffBaseMs) * time.Millisecond,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		MaterialUC:   materialUC,
		LocationUC:   locationUC,
		LedgerUC:     ledgerUC,
		ProjectionUC: projectionUC,
		TrackerUC:    trackerUC,
		EstimateUC:   estimateUC,
		Orchestrator: orchestratorUC,
		JWTSecret:    cfg.JWT.Secret,
		RetryOpts:    retryOpts,
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

	log.Info().Msg("aplicación detenida")
}
