// Command rentald runs the book-rental service: HTTP API, Postgres
// persistence and the overdue-detection scheduler.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/booklend/rental-service/internal/client"
	"github.com/booklend/rental-service/internal/config"
	"github.com/booklend/rental-service/internal/events"
	"github.com/booklend/rental-service/internal/health"
	"github.com/booklend/rental-service/internal/jobs"
	"github.com/booklend/rental-service/internal/logging"
	"github.com/booklend/rental-service/internal/server"
	"github.com/booklend/rental-service/internal/service"
	"github.com/booklend/rental-service/internal/store/postgresengine"
)

const overdueJobName = "overdue-detection"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("loading configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		os.Stderr.WriteString("building logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("service exited with error", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.ZapLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	rentalRepo := postgresengine.NewRentalRepository(engine)
	rentedItemRepo := postgresengine.NewRentedItemRepository(engine)
	returnedItemRepo := postgresengine.NewReturnedItemRepository(engine)
	overdueItemRepo := postgresengine.NewOverdueItemRepository(engine)

	publisher := events.NopPublisher{}
	books := client.NewHTTPBookCatalog(cfg.Books.BaseURL)
	rentalService := service.NewRentalService(rentalRepo, books, publisher, logger)

	scheduler := jobs.NewScheduler(logger)
	if cfg.Scheduler.Enabled {
		detector := jobs.NewOverdueDetector(
			rentedItemRepo, overdueItemRepo, rentalRepo, publisher, logger, cfg.Scheduler.LateFee)
		if err := scheduler.Register(overdueJobName, cfg.Scheduler.OverdueCron, detector); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	state := health.NewState()

	e := server.New(server.Controllers{
		Rentals:       server.NewRentalController(rentalService),
		RentedItems:   server.NewRentedItemController(rentedItemRepo),
		ReturnedItems: server.NewReturnedItemController(returnedItemRepo),
		OverdueItems:  server.NewOverdueItemController(overdueItemRepo),
		Health:        state,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "address", cfg.Server.Address())
		if err := e.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	state.SetReady()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	state.SetShuttingDown()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}

// buildEngine opens the database connection through the configured adapter
// and wraps it in the query engine.
func buildEngine(ctx context.Context, cfg *config.Config, logger *logging.ZapLogger) (postgresengine.Engine, func(), error) {
	dsn := cfg.Database.DSN()

	switch cfg.Database.Adapter {
	case config.AdapterPGX:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return postgresengine.Engine{}, nil, err
		}
		engine, err := postgresengine.NewEngineFromPGXPool(pool, postgresengine.WithLogger(logger))
		if err != nil {
			pool.Close()
			return postgresengine.Engine{}, nil, err
		}
		return engine, pool.Close, nil

	case config.AdapterSQLX:
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return postgresengine.Engine{}, nil, err
		}
		engine, err := postgresengine.NewEngineFromSQLX(db, postgresengine.WithLogger(logger))
		if err != nil {
			_ = db.Close()
			return postgresengine.Engine{}, nil, err
		}
		return engine, func() { _ = db.Close() }, nil

	default:
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return postgresengine.Engine{}, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return postgresengine.Engine{}, nil, err
		}
		engine, err := postgresengine.NewEngineFromSQLDB(db, postgresengine.WithLogger(logger))
		if err != nil {
			_ = db.Close()
			return postgresengine.Engine{}, nil, err
		}
		return engine, func() { _ = db.Close() }, nil
	}
}
