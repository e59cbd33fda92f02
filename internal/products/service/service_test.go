package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"supermarket-inventory/internal/products"
	"supermarket-inventory/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

type mockRepo struct {
	createFn func(ctx context.Context, in products.CreateInput) (products.Product, error)
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context) ([]products.Product, error)
}

func (m *mockRepo) Create(ctx context.Context, in products.CreateInput) (products.Product, error) {
	return m.createFn(ctx, in)
}
func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context) ([]products.Product, error) {
	return m.listFn(ctx)
}

type mockPublisher struct {
	events []products.ProductEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event products.ProductEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type mockExporter struct {
	calls    int
	exported []products.Product
	err      error
}

func (m *mockExporter) Refresh(ctx context.Context, load func(context.Context) ([]products.Product, error)) error {
	m.calls++
	if ctx.Err() != nil {
		return ctx.Err()
	}
	items, err := load(ctx)
	if err != nil {
		return err
	}
	m.exported = items
	return m.err
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	pub      *mockPublisher
	exporter *mockExporter
	created  prometheus.Counter
	deleted  prometheus.Counter
}

func newFixture() *fixture {
	f := &fixture{
		repo:     defaultRepo(),
		pub:      &mockPublisher{},
		exporter: &mockExporter{},
		created:  prometheus.NewCounter(prometheus.CounterOpts{Name: "t_created", Help: "t"}),
		deleted:  prometheus.NewCounter(prometheus.CounterOpts{Name: "t_deleted", Help: "t"}),
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f.svc = New(f.repo, f.exporter, f.pub, logger, f.created, f.deleted)
	return f
}

func defaultRepo() *mockRepo {
	return &mockRepo{
		createFn: func(_ context.Context, in products.CreateInput) (products.Product, error) {
			return products.Product{ID: 1, Name: in.Name, Quantity: in.Quantity, Price: in.Price}, nil
		},
		deleteFn: func(_ context.Context, _ int64) error { return nil },
		listFn: func(_ context.Context) ([]products.Product, error) {
			return []products.Product{{ID: 1, Name: "Phone"}}, nil
		},
	}
}

func validInput(name string) products.CreateInput {
	return products.CreateInput{Name: name, Quantity: 2, Price: decimal.RequireFromString("9.99")}
}

func TestAddProduct(t *testing.T) {
	errDB := errors.New("db down")

	tests := []struct {
		name        string
		input       products.CreateInput
		repoErr     error
		wantErr     error
		wantName    string
		wantEvent   string
		wantExports int
	}{
		{
			name:        "success",
			input:       validInput(" Phone "),
			wantName:    "Phone",
			wantEvent:   products.EventCreated,
			wantExports: 1,
		},
		{
			name:    "empty name",
			input:   validInput("   "),
			wantErr: validation.ErrInvalid,
		},
		{
			name:    "zero quantity",
			input:   products.CreateInput{Name: "Phone", Price: decimal.NewFromInt(1)},
			wantErr: validation.ErrInvalid,
		},
		{
			name:    "repo error is wrapped",
			input:   validInput("Phone"),
			repoErr: errDB,
			wantErr: errDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.repoErr != nil {
				f.repo.createFn = func(_ context.Context, _ products.CreateInput) (products.Product, error) {
					return products.Product{}, tt.repoErr
				}
			}

			product, err := f.svc.AddProduct(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error wrapping %v, got %v", tt.wantErr, err)
				}
				if f.exporter.calls != 0 || len(f.pub.events) != 0 {
					t.Fatalf("failed add must not export or publish")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.Name != tt.wantName {
				t.Fatalf("want name %q, got %q", tt.wantName, product.Name)
			}
			if len(f.pub.events) != 1 || f.pub.events[0].EventType != tt.wantEvent {
				t.Fatalf("want event %q, got %v", tt.wantEvent, f.pub.events)
			}
			if f.exporter.calls != tt.wantExports {
				t.Fatalf("want %d export refreshes, got %d", tt.wantExports, f.exporter.calls)
			}
			if got := testutil.ToFloat64(f.created); got != 1 {
				t.Fatalf("want created counter 1, got %v", got)
			}
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		repoErr   error
		wantErr   error
		wantEvent string
	}{
		{
			name:      "success",
			id:        42,
			wantEvent: products.EventDeleted,
		},
		{
			name:    "not found",
			id:      999,
			repoErr: products.ErrNotFound,
			wantErr: products.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.deleteFn = func(_ context.Context, _ int64) error {
				return tt.repoErr
			}

			err := f.svc.DeleteProduct(context.Background(), tt.id)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				if f.exporter.calls != 0 {
					t.Fatalf("failed delete must not touch the exports")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f.pub.events) != 1 || f.pub.events[0].EventType != tt.wantEvent {
				t.Fatalf("want event %q, got %v", tt.wantEvent, f.pub.events)
			}
			if f.exporter.calls != 1 {
				t.Fatalf("want one export refresh, got %d", f.exporter.calls)
			}
		})
	}
}

func TestListProducts(t *testing.T) {
	f := newFixture()
	items, err := f.svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}

	f.repo.listFn = func(context.Context) ([]products.Product, error) { return nil, errors.New("boom") }
	if _, err := f.svc.ListProducts(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestAddProduct_PublishFail_StillReturnsProduct(t *testing.T) {
	f := newFixture()
	f.pub.err = errors.New("broker down")

	product, err := f.svc.AddProduct(context.Background(), validInput("Widget"))
	if err != nil {
		t.Fatalf("expected no error despite publish failure, got: %v", err)
	}
	if product.Name != "Widget" {
		t.Fatalf("want name Widget, got %q", product.Name)
	}
}

func TestMutations_ExportFailureIsAWarning(t *testing.T) {
	diskFull := errors.New("disk full")

	t.Run("add", func(t *testing.T) {
		f := newFixture()
		f.exporter.err = diskFull

		product, err := f.svc.AddProduct(context.Background(), validInput("Widget"))

		var failure *products.ExportFailure
		if !errors.As(err, &failure) {
			t.Fatalf("want *ExportFailure, got %v", err)
		}
		if !errors.Is(err, diskFull) {
			t.Fatalf("export failure should wrap its cause, got %v", err)
		}
		if product.ID != 1 || product.Name != "Widget" {
			t.Fatalf("committed product must still be returned, got %+v", product)
		}
		if got := testutil.ToFloat64(f.created); got != 1 {
			t.Fatalf("mutation must count as created, got %v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture()
		f.exporter.err = diskFull

		err := f.svc.DeleteProduct(context.Background(), 1)

		var failure *products.ExportFailure
		if !errors.As(err, &failure) {
			t.Fatalf("want *ExportFailure, got %v", err)
		}
		if got := testutil.ToFloat64(f.deleted); got != 1 {
			t.Fatalf("mutation must count as deleted, got %v", got)
		}
	})
}

func TestAddProduct_ExportSurvivesCancelledRequest(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.repo.createFn = func(_ context.Context, in products.CreateInput) (products.Product, error) {
		cancel()
		return products.Product{ID: 5, Name: in.Name}, nil
	}

	if _, err := f.svc.AddProduct(ctx, validInput("Late")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.exporter.exported) != 1 {
		t.Fatalf("export should run with the request context detached, got %v", f.exporter.exported)
	}
}

func TestSyncExports(t *testing.T) {
	f := newFixture()
	if err := f.svc.SyncExports(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.exporter.calls != 1 || len(f.exporter.exported) != 1 {
		t.Fatalf("want one refresh of the listed products, got %d calls", f.exporter.calls)
	}
}
