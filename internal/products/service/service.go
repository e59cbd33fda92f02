package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"supermarket-inventory/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

type Repository interface {
	Create(ctx context.Context, in products.CreateInput) (products.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]products.Product, error)
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

// Exporter regenerates the export artifacts from whatever load returns.
type Exporter interface {
	Refresh(ctx context.Context, load func(context.Context) ([]products.Product, error)) error
}

type Service struct {
	repo      Repository
	exporter  Exporter
	publisher Publisher
	logger    *slog.Logger
	created   prometheus.Counter
	deleted   prometheus.Counter
}

func New(repo Repository, exporter Exporter, publisher Publisher, logger *slog.Logger, created, deleted prometheus.Counter) *Service {
	return &Service{
		repo:      repo,
		exporter:  exporter,
		publisher: publisher,
		logger:    logger,
		created:   created,
		deleted:   deleted,
	}
}

// AddProduct stores a new product and refreshes the exports. When the export
// fails the product is still returned together with an *products.ExportFailure.
func (s *Service) AddProduct(ctx context.Context, in products.CreateInput) (products.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return products.Product{}, err
	}

	product, err := s.repo.Create(ctx, in)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo create: %w", err)
	}
	s.created.Inc()

	quantity, price := product.Quantity, product.Price
	s.publish(ctx, products.ProductEvent{
		EventType: products.EventCreated,
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  &quantity,
		Price:     &price,
		Timestamp: time.Now().UTC(),
	})

	if err := s.refreshExports(ctx); err != nil {
		return product, err
	}
	return product, nil
}

// DeleteProduct removes a product and refreshes the exports. An
// *products.ExportFailure means the delete itself succeeded.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}
	s.deleted.Inc()

	s.publish(ctx, products.ProductEvent{
		EventType: products.EventDeleted,
		ProductID: id,
		Timestamp: time.Now().UTC(),
	})

	return s.refreshExports(ctx)
}

func (s *Service) ListProducts(ctx context.Context) ([]products.Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}
	return items, nil
}

// SyncExports rewrites the artifacts from the current store without a mutation.
func (s *Service) SyncExports(ctx context.Context) error {
	return s.exporter.Refresh(ctx, s.repo.List)
}

func (s *Service) publish(ctx context.Context, event products.ProductEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publish "+event.EventType+" event failed",
			"product_id", event.ProductID,
			"error", err,
		)
	}
}

func (s *Service) refreshExports(ctx context.Context) error {
	// The mutation is already committed; a cancelled request must not leave
	// the artifacts behind.
	if err := s.exporter.Refresh(context.WithoutCancel(ctx), s.repo.List); err != nil {
		s.logger.Warn("export refresh failed, catalog change kept", "error", err)
		return &products.ExportFailure{Err: err}
	}
	return nil
}
