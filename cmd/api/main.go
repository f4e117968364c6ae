package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Impuestos-api/internal/application/taxes"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/tax"
	infrapdf "github.com/jhoicas/Impuestos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Impuestos-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Impuestos-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Impuestos-api/internal/interfaces/http"
	"github.com/jhoicas/Impuestos-api/pkg/config"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
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
		Str("regime", cfg.Tax.DefaultRegime).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	accountRepo := postgres.NewAccountRepository(pool)
	mappingRepo := postgres.NewAccountMappingRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	obligationRepo := postgres.NewTaxObligationRepository(pool)
	paymentRepo := postgres.NewTaxPaymentRepository(pool)
	closureRepo := postgres.NewTaxClosureRepository(pool)
	totalsRepo := postgres.NewPeriodTotalsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Lock de cancelaciones: Redis si está configurado (varias instancias), si no en memoria.
	var locker taxes.SettlementLocker = taxes.NewLocalLocker()
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		locker = infraredis.NewSettlementLock(client, cfg.Redis.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock de cancelaciones en Redis")
	}

	policy := tax.NewPolicy(cfg.Tax.Epsilon)
	regime := entity.Regime(cfg.Tax.DefaultRegime)
	clock := taxes.SystemClock{}

	store := taxes.NewObligationStore(obligationRepo, paymentRepo, journalRepo, policy, clock, log)
	closureUC := taxes.NewClosureUseCase(closureRepo, journalRepo, totalsRepo, store, policy, clock, regime, log)
	entryUC := taxes.NewEntryUseCase(txRunner, closureRepo, journalRepo, accountRepo, mappingRepo,
		totalsRepo, policy, clock, regime, log)
	settlementUC := taxes.NewSettlementUseCase(txRunner, closureRepo, obligationRepo, journalRepo, accountRepo,
		mappingRepo, store, locker, cfg.Tax.LockWait, policy, clock, regime, log)
	mappingUC := taxes.NewMappingUseCase(accountRepo, mappingRepo, clock, log)

	// PDF: constancia de cierre del período
	pdfGenerator := infrapdf.NewClosureCertificateGenerator()
	reportUC := taxes.NewReportUseCase(closureRepo, pdfGenerator, taxes.CompanyInfo{
		Name: cfg.Tax.CompanyName,
		CUIT: cfg.Tax.CompanyCUIT,
	}, clock, regime)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if cfg.App.Env == "development" {
		app.Use(fiberlogger.New())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Impuestos API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		Closures:    closureUC,
		Reports:     reportUC,
		Entries:     entryUC,
		Settlements: settlementUC,
		Obligations: store,
		Mappings:    mappingUC,
		JWTSecret:   cfg.JWT.Secret,
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
