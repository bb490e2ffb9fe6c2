package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
	"github.com/feedlot-pro/feedlot-api/internal/infrastructure/integrations"
	"github.com/feedlot-pro/feedlot-api/internal/infrastructure/metrics"
	"github.com/feedlot-pro/feedlot-api/internal/infrastructure/postgres"
	httpRouter "github.com/feedlot-pro/feedlot-api/internal/interfaces/http"
	"github.com/feedlot-pro/feedlot-api/internal/scheduler"
	"github.com/feedlot-pro/feedlot-api/pkg/config"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	txRunner := postgres.NewTxRunner(pool)
	appMetrics := metrics.New(nil)

	// Integraciones best-effort: con URL vacía el cliente queda deshabilitado
	// y el efecto colateral se omite.
	var financial feedlot.FinancialLedger
	if cfg.Integrations.FinancialURL != "" {
		financial = integrations.NewFinancialClient(cfg.Integrations)
	} else {
		log.Warn().Msg("FINANCIAL_SERVICE_URL vacío; ingresos de venta no se registran")
	}
	var calendar feedlot.CalendarService
	if cfg.Integrations.CalendarURL != "" {
		calendar = integrations.NewCalendarClient(cfg.Integrations)
	} else {
		log.Warn().Msg("CALENDAR_SERVICE_URL vacío; eventos de embarque no se crean")
	}

	ledger := feedlot.NewLotLedger(txRunner, appMetrics, log)
	engine := feedlot.NewSaleDepletionEngine(txRunner, ledger, appMetrics, log)
	lotUC := feedlot.NewLotUseCase(txRunner, ledger, appMetrics, log)
	saleUC := feedlot.NewSaleUseCase(txRunner, engine, ledger, financial, calendar, appMetrics, log)
	allocationUC := feedlot.NewAllocationUseCase(txRunner, appMetrics, log)
	costUC := feedlot.NewCostEventUseCase(txRunner, appMetrics, log)

	sched := scheduler.New(lotUC, cfg.Scheduler, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("iniciar scheduler")
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

	httpRouter.Router(app, httpRouter.RouterDeps{
		LotUC:        lotUC,
		SaleUC:       saleUC,
		AllocationUC: allocationUC,
		CostUC:       costUC,
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

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
