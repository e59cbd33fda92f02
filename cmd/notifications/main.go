package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/notifications"
	"supermarket-inventory/internal/products"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errDrainTimeout = errors.New("consumer did not stop before the shutdown timeout")

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadNotifications()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := audit(ctx, cfg, logger); err != nil {
		logger.Error("inventory audit stopped", "error", err)
		return 1
	}
	logger.Info("inventory audit stopped")
	return 0
}

// audit consumes catalog events until ctx is cancelled, then gives the
// in-flight delivery cfg.ShutdownTimeout to finish.
func audit(ctx context.Context, cfg config.Notifications, logger *slog.Logger) error {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer conn.Close()

	consumer, err := notifications.NewConsumer(conn, products.EventsQueue, cfg.LowStockThreshold, logger)
	if err != nil {
		return fmt.Errorf("init consumer: %w", err)
	}
	defer consumer.Close()

	done := make(chan error, 1)
	go func() {
		logger.Info("inventory audit started",
			"queue", products.EventsQueue,
			"low_stock_threshold", cfg.LowStockThreshold,
		)
		done <- consumer.Listen(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}
	return drain(done, cfg.ShutdownTimeout)
}

// drain waits for the consumer goroutine to report after cancellation.
func drain(done <-chan error, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case err := <-done:
		return err
	case <-deadline.C:
		return errDrainTimeout
	}
}
