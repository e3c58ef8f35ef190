package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/auth"
	"github.com/adeas-rakit/banksampah-ledger/internal/balance"
	"github.com/adeas-rakit/banksampah-ledger/internal/catalog"
	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/deposit"
	"github.com/adeas-rakit/banksampah-ledger/internal/ranking"
	"github.com/adeas-rakit/banksampah-ledger/internal/withdraw"
	"github.com/adeas-rakit/banksampah-ledger/pkg/accesslog"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	"github.com/adeas-rakit/banksampah-ledger/pkg/unzip"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nanmu42/gzip"
	sqldblogger "github.com/simukti/sqldb-logger"
)

// Version indicates the current version of the application.
var Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Server run context.
	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	// Load application configurations.
	cfg := config.MustLoad()

	// Create root logger tagged with server version.
	logger := logger.New(cfg).With(serverCtx, "version", Version)

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open the database: %w", err)
	}

	// Log every query to the database.
	db = sqldblogger.OpenDriver(cfg.DSN, db.Driver(), logger)

	// Check connectivity and DSN correctness.
	if err = db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	// Close connection.
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(err)
		}
		_ = logger.Sync()
	}()

	// Create default transaction manager for database/sql package.
	trManager := manager.Must(
		trmsql.NewDefaultFactory(db),
		manager.WithCtxManager(trmcontext.DefaultManager),
	)

	// Init repository and service for auth.
	authRepo, err := auth.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init auth repository: %w", err)
	}
	authService, err := auth.NewService(authRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init auth service: %w", err)
	}

	// Init repository and service for the waste type catalog.
	catalogRepo, err := catalog.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init catalog repository: %w", err)
	}
	catalogService, err := catalog.NewService(catalogRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init catalog service: %w", err)
	}

	// Init repository and service for deposits.
	depositRepo, err := deposit.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init deposit repository: %w", err)
	}
	depositService, err := deposit.NewService(depositRepo, catalogRepo, trManager, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init deposit service: %w", err)
	}

	// Init repository and service for withdrawals.
	withdrawRepo, err := withdraw.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init withdraw repository: %w", err)
	}
	withdrawService, err := withdraw.NewService(withdrawRepo, trManager, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init withdraw service: %w", err)
	}

	// Init repository and service for balances.
	balanceRepo, err := balance.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init balance repository: %w", err)
	}
	balanceService, err := balance.NewService(balanceRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init balance service: %w", err)
	}

	// Init repository and service for rankings.
	rankingRepo, err := ranking.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init ranking repository: %w", err)
	}
	rankingService, err := ranking.NewService(rankingRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init ranking service: %w", err)
	}

	// Create root router.
	router := initRootRouter(logger)

	// Init and group handlers for auth routes.
	auth.HandlerWithOptions(authService, auth.ChiServerOptions{
		BaseURL:          "/api",
		BaseRouter:       router,
		ErrorHandlerFunc: auth.ErrorHandlerFunc,
	})

	// Price list is public.
	catalog.HandlerWithOptions(catalogService, catalog.ChiServerOptions{
		BaseURL:          "/api",
		BaseRouter:       router,
		ErrorHandlerFunc: catalog.ErrorHandlerFunc,
	})

	deposit.HandlerWithOptions(depositService, deposit.ChiServerOptions{
		BaseURL:             "/api",
		BaseRouter:          router,
		OperatorMiddlewares: []deposit.MiddlewareFunc{authService.OperatorMiddleware},
		CustomerMiddlewares: []deposit.MiddlewareFunc{authService.CustomerMiddleware},
		ErrorHandlerFunc:    deposit.ErrorHandlerFunc,
	})

	withdraw.HandlerWithOptions(withdrawService, withdraw.ChiServerOptions{
		BaseURL:             "/api",
		BaseRouter:          router,
		CustomerMiddlewares: []withdraw.MiddlewareFunc{authService.CustomerMiddleware},
		OperatorMiddlewares: []withdraw.MiddlewareFunc{authService.OperatorMiddleware},
		ErrorHandlerFunc:    withdraw.ErrorHandlerFunc,
	})

	balance.HandlerWithOptions(balanceService, balance.ChiServerOptions{
		BaseURL:          "/api",
		BaseRouter:       router,
		Middlewares:      []balance.MiddlewareFunc{authService.CustomerMiddleware},
		ErrorHandlerFunc: balance.ErrorHandlerFunc,
	})

	ranking.HandlerWithOptions(rankingService, ranking.ChiServerOptions{
		BaseURL:          "/api",
		BaseRouter:       router,
		Middlewares:      []ranking.MiddlewareFunc{authService.CustomerMiddleware},
		ErrorHandlerFunc: ranking.ErrorHandlerFunc,
	})

	// Build HTTP server.
	hs := &http.Server{
		Addr:              cfg.HTTPServer.Address,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:       cfg.HTTPServer.IdleTimeout,
		Handler:           router,
	}

	// Graceful shutdown.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT,
			syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

		signal := <-sig

		logger.With(serverCtx, "signal", signal.String()).
			Infof("Shutting down server with %s timeout",
				cfg.HTTPServer.ShutdownTimeout)

		if err = hs.Shutdown(serverCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %s", err)
		}
		serverStopCtx()
	}()

	// Start the HTTP server with graceful shutdown.
	logger.Infof("Server %v is running at %v", Version, cfg.HTTPServer.Address)
	if err = hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run server failed: %w", err)
	}

	// Wait for server context to be stopped or force exit if timeout exceeded.
	select {
	case <-serverCtx.Done():
	case <-time.After(cfg.HTTPServer.ShutdownTimeout):
		return errors.New("graceful shutdown timed out.. forcing exit")
	}

	return nil
}

func initRootRouter(logger logger.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(accesslog.Handler(logger))
	router.Use(middleware.Recoverer)
	router.Use(gzip.DefaultHandler().WrapHandler)
	router.Use(unzip.Middleware(logger))

	return router
}
