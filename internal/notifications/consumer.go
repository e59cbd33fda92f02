package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"supermarket-inventory/internal/products"
	"supermarket-inventory/internal/products/messaging"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "inventory-notifications"

type Consumer struct {
	channel           *amqp.Channel
	queue             string
	lowStockThreshold int64
	logger            *slog.Logger
}

func NewConsumer(conn *amqp.Connection, queue string, lowStockThreshold int64, logger *slog.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := messaging.DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &Consumer{
		channel:           ch,
		queue:             queue,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}, nil
}

func (c *Consumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			if err := c.handleMessage(msg.Body); err != nil {
				c.logger.Error("handle message failed", "message_id", msg.MessageId, "error", err)
				// A body that does not decode now never will.
				_ = msg.Nack(false, false)
				continue
			}

			_ = msg.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var event products.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	attrs := []any{
		"event_type", event.EventType,
		"product_id", event.ProductID,
		"name", event.Name,
		"timestamp", event.Timestamp,
	}
	if event.Quantity != nil {
		attrs = append(attrs, "quantity", *event.Quantity)
	}
	if event.Price != nil {
		attrs = append(attrs, "price", event.Price.String())
	}
	c.logger.Info("inventory event", attrs...)

	if c.isLowStock(event) {
		c.logger.Warn("low stock",
			"product_id", event.ProductID,
			"name", event.Name,
			"quantity", *event.Quantity,
			"threshold", c.lowStockThreshold,
		)
	}

	return nil
}

func (c *Consumer) isLowStock(event products.ProductEvent) bool {
	return event.EventType == products.EventCreated &&
		event.Quantity != nil &&
		*event.Quantity <= c.lowStockThreshold
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
