package config

import (
	"errors"
	"time"
)

const defaultLowStockThreshold = 5

type Notifications struct {
	RabbitMQURL       string
	LowStockThreshold int64
	ShutdownTimeout   time.Duration
}

func LoadNotifications() (Notifications, error) {
	cfg := Notifications{
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if cfg.RabbitMQURL == "" {
		return Notifications{}, errors.New("RABBITMQ_URL is required")
	}

	threshold, err := getEnvInt("LOW_STOCK_THRESHOLD", defaultLowStockThreshold)
	if err != nil {
		return Notifications{}, err
	}
	if threshold < 0 {
		return Notifications{}, errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	cfg.LowStockThreshold = int64(threshold)

	return cfg, nil
}
