package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	accounthttp "supermarket-inventory/internal/accounts/http"
	"supermarket-inventory/internal/accounts/password"
	accountrepo "supermarket-inventory/internal/accounts/repository"
	accountservice "supermarket-inventory/internal/accounts/service"
	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/database"
	"supermarket-inventory/internal/httpserver"
	"supermarket-inventory/internal/products"
	"supermarket-inventory/internal/products/export"
	producthttp "supermarket-inventory/internal/products/http"
	"supermarket-inventory/internal/products/messaging"
	"supermarket-inventory/internal/products/repository"
	"supermarket-inventory/internal/products/service"

	_ "supermarket-inventory/docs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	metricCreatedTotal = "products_created_total"
	metricDeletedTotal = "products_deleted_total"
	metricLoginsTotal  = "account_logins_total"
)

// @title        Supermarket Inventory API
// @version      1.0
// @description  Product catalog with flat-file exports and session login.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadInventory()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	if err := database.Migrate(cfg.Driver, cfg.URL, cfg.MigrationsPath); err != nil {
		logger.Error("run migrations", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Driver, cfg.URL, cfg.Pool)
	if err != nil {
		logger.Error("open database", "driver", cfg.Driver, "error", err)
		return 1
	}
	defer db.Close()

	publisher, closePublisher, err := newPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Error("init publisher", "error", err)
		return 1
	}
	defer closePublisher()

	createdCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricCreatedTotal,
		Help: "Total number of products created",
	})
	deletedCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricDeletedTotal,
		Help: "Total number of products deleted",
	})
	loginsCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricLoginsTotal,
		Help: "Login attempts by outcome",
	}, []string{"outcome"})
	prometheus.MustRegister(createdCounter, deletedCounter, loginsCounter)

	repo := repository.NewSQL(db, cfg.Driver)
	exporter := export.New(cfg.ExportDir, logger, export.NewMetrics(prometheus.DefaultRegisterer))
	svc := service.New(repo, exporter, publisher, logger, createdCounter, deletedCounter)

	if err := svc.SyncExports(ctx); err != nil {
		logger.Warn("initial export failed", "dir", cfg.ExportDir, "error", err)
	}

	router, err := newRouter(cfg, db, svc, repo, logger, loginsCounter)
	if err != nil {
		logger.Error("init router", "error", err)
		return 1
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("inventory service started", "addr", cfg.HTTPAddr, "driver", cfg.Driver, "auth", cfg.AuthEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("inventory service stopped")
	return exitCode
}

// newRouter mounts the catalog routes. With auth enabled it also mounts the
// account routes and puts the catalog behind a login.
func newRouter(cfg config.Inventory, db *sql.DB, catalog producthttp.ProductService, health httpserver.HealthChecker, logger *slog.Logger, logins *prometheus.CounterVec) (*gin.Engine, error) {
	router := httpserver.New(logger, health, nil)

	var guards []gin.HandlerFunc
	if cfg.AuthEnabled {
		svc, err := accountservice.New(accountrepo.NewSQL(db, cfg.Driver), password.NewHasher(cfg.PasswordIterations), logger, logins)
		if err != nil {
			return nil, err
		}

		router.Use(accounthttp.Sessions([]byte(cfg.SessionSecret), cfg.SessionSecure))
		requireLogin := accounthttp.RequireLogin(svc)
		accounthttp.RegisterRoutes(router, accounthttp.NewHandler(svc), requireLogin)
		guards = append(guards, requireLogin)
	} else {
		logger.Warn("authentication disabled, catalog routes are public")
	}

	producthttp.RegisterRoutes(router, producthttp.NewHandler(catalog), guards...)
	return router, nil
}

// newPublisher connects to RabbitMQ when a URL is configured. Without one
// catalog events are dropped.
func newPublisher(url string, logger *slog.Logger) (service.Publisher, func(), error) {
	if url == "" {
		logger.Info("RABBITMQ_URL not set, catalog events disabled")
		return messaging.NoopPublisher{}, func() {}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := messaging.NewRabbitPublisher(conn, products.EventsQueue)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return publisher, func() {
		_ = publisher.Close()
		_ = conn.Close()
	}, nil
}
