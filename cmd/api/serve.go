package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/application/audit"
	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

// backend puertos de persistencia del driver elegido.
type backend struct {
	txRunner  inventory.TxRunner
	movements repository.StockMovementRepository
	users     repository.UserDirectory
	accounts  repository.CredentialStore
	locations repository.LocationDirectory
	outbox    repository.OutboxRepository
	close     func()
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP y el relay del outbox",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runMigrations, _ := cmd.Flags().GetBool("migrate")
			return serve(runMigrations)
		},
	}
	cmd.Flags().Bool("migrate", false, "Aplicar migraciones antes de arrancar (sólo postgres)")
	return cmd
}

func serve(runMigrations bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas protegidas responderán 401")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	be, err := openBackend(ctx, cfg, log, runMigrations)
	if err != nil {
		return err
	}
	defer be.close()

	users := be.users
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("caché de nombres deshabilitada")
		} else {
			defer client.Close()
			users = cache.NewUserNameCache(client, be.users, cfg.NameCache, log.Zerolog())
		}
	}

	ledger := inventory.NewLedger(be.txRunner, be.movements, log.Component("ledger"), m,
		inventory.WithEventTopic(cfg.Kafka.Topic))
	transfers := inventory.NewTransferCoordinator(ledger)
	records := inventory.NewRecordService(ledger)
	projector := audit.NewProjector(users, be.locations, log.Component("audit"), m)
	authUC := auth.NewAuthUseCase(be.accounts, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	if cfg.Storage == config.StorageMemory {
		if err := seedDemo(ctx, be.txRunner.(*memory.Store), records); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info().Msg("datos de demostración cargados en memoria")
	}

	if cfg.Kafka.Enabled() {
		publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		relay := messaging.NewRelay(be.outbox, publisher, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, log.Zerolog(), m)
		go relay.Run(ctx)
	} else {
		log.Info().Msg("KAFKA_BROKERS vacío: los eventos quedan en el outbox")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:      ledger,
		Transfers:   transfers,
		Records:     records,
		Projector:   projector,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
		Gatherer:    prometheus.DefaultGatherer,
		ServiceName: cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger, runMigrations bool) (*backend, error) {
	if cfg.Storage == config.StorageMemory {
		store := memory.New()
		return &backend{
			txRunner:  store,
			movements: store,
			users:     store,
			accounts:  store,
			locations: store,
			outbox:    store,
			close:     func() {},
		}, nil
	}

	if runMigrations {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	userRepo := postgres.NewUserRepository(pool)
	return &backend{
		txRunner:  postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		movements: postgres.NewStockMovementRepository(pool),
		users:     userRepo,
		accounts:  userRepo,
		locations: postgres.NewLocationDirectory(pool),
		outbox:    postgres.NewOutboxRepository(pool),
		close:     pool.Close,
	}, nil
}
