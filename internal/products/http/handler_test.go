package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"supermarket-inventory/internal/httpserver"
	"supermarket-inventory/internal/products"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type stubService struct {
	addFn    func(ctx context.Context, in products.CreateInput) (products.Product, error)
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context) ([]products.Product, error)
}

func (s *stubService) AddProduct(ctx context.Context, in products.CreateInput) (products.Product, error) {
	return s.addFn(ctx, in)
}
func (s *stubService) DeleteProduct(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}
func (s *stubService) ListProducts(ctx context.Context) ([]products.Product, error) {
	return s.listFn(ctx)
}

func setupRouter(svc ProductService, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewHandler(svc), guards...)
	return r
}

func echoAdd(_ context.Context, in products.CreateInput) (products.Product, error) {
	return products.Product{ID: 1, Name: in.Name, Quantity: in.Quantity, Price: in.Price}, nil
}

func TestHandler_CreateProduct(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		svcErr      error
		wantStatus  int
		wantFields  []string
		wantWarning bool
	}{
		{
			name:        "json success",
			contentType: "application/json",
			body:        `{"nombre":"Milk","cantidad":10,"precio":2.50}`,
			wantStatus:  http.StatusCreated,
		},
		{
			name:        "form success",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"nombre": {"Milk"}, "cantidad": {"10"}, "precio": {"2.50"}}.Encode(),
			wantStatus:  http.StatusCreated,
		},
		{
			name:        "missing fields",
			contentType: "application/json",
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			wantFields:  []string{"nombre", "cantidad", "precio"},
		},
		{
			name:        "invalid json",
			contentType: "application/json",
			body:        `not json`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "malformed form numbers",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"nombre": {"Milk"}, "cantidad": {"ten"}, "precio": {"-1"}}.Encode(),
			wantStatus:  http.StatusBadRequest,
			wantFields:  []string{"cantidad", "precio"},
		},
		{
			name:        "export failure is a warning",
			contentType: "application/json",
			body:        `{"nombre":"Milk","cantidad":10,"precio":2.5}`,
			svcErr:      &products.ExportFailure{Err: errors.New("disk full")},
			wantStatus:  http.StatusCreated,
			wantWarning: true,
		},
		{
			name:        "store failure",
			contentType: "application/json",
			body:        `{"nombre":"Milk","cantidad":10,"precio":2.5}`,
			svcErr:      errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				addFn: func(ctx context.Context, in products.CreateInput) (products.Product, error) {
					p, _ := echoAdd(ctx, in)
					if tt.svcErr != nil {
						var exportFailure *products.ExportFailure
						if errors.As(tt.svcErr, &exportFailure) {
							return p, tt.svcErr
						}
						return products.Product{}, tt.svcErr
					}
					return p, nil
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			if len(tt.wantFields) > 0 {
				var resp httpserver.ValidationErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				got := make([]string, 0, len(resp.Fields))
				for _, f := range resp.Fields {
					got = append(got, f.Field)
				}
				if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
					t.Fatalf("want fields %v, got %v", tt.wantFields, got)
				}
				return
			}

			if tt.wantStatus != http.StatusCreated {
				return
			}
			var resp struct {
				ID       int64           `json:"id"`
				Name     string          `json:"nombre"`
				Quantity int64           `json:"cantidad"`
				Price    decimal.Decimal `json:"precio"`
				Warning  string          `json:"warning"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.ID != 1 || resp.Name != "Milk" || resp.Quantity != 10 || !resp.Price.Equal(decimal.RequireFromString("2.5")) {
				t.Fatalf("unexpected product: %+v", resp)
			}
			if tt.wantWarning != (resp.Warning != "") {
				t.Fatalf("want warning %v, got %q", tt.wantWarning, resp.Warning)
			}
		})
	}
}

func TestHandler_DeleteProduct(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		svcErr      error
		wantStatus  int
		wantWarning bool
	}{
		{
			name:       "success",
			url:        "/products/1",
			wantStatus: http.StatusNoContent,
		},
		{
			name:        "export failure",
			url:         "/products/1",
			svcErr:      &products.ExportFailure{Err: errors.New("read-only file system")},
			wantStatus:  http.StatusOK,
			wantWarning: true,
		},
		{
			name:       "not found",
			url:        "/products/999",
			svcErr:     products.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			url:        "/products/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store failure",
			url:        "/products/1",
			svcErr:     errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				deleteFn: func(_ context.Context, _ int64) error {
					return tt.svcErr
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantWarning {
				var resp warningResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if !strings.Contains(resp.Warning, "read-only file system") {
					t.Fatalf("warning should carry the cause, got %q", resp.Warning)
				}
			}
		})
	}
}

func TestHandler_ListProducts(t *testing.T) {
	tests := []struct {
		name       string
		items      []products.Product
		err        error
		wantStatus int
		wantLen    int
	}{
		{
			name: "returns items",
			items: []products.Product{
				{ID: 1, Name: "A", Quantity: 1, Price: decimal.NewFromInt(1)},
				{ID: 2, Name: "B", Quantity: 2, Price: decimal.NewFromInt(2)},
			},
			wantStatus: http.StatusOK,
			wantLen:    2,
		},
		{
			name:       "empty list",
			items:      []products.Product{},
			wantStatus: http.StatusOK,
			wantLen:    0,
		},
		{
			name:       "store failure",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				listFn: func(_ context.Context) ([]products.Product, error) {
					return tt.items, tt.err
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.err != nil {
				return
			}

			var resp listProductsResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp.Items) != tt.wantLen {
				t.Fatalf("want %d items, got %d", tt.wantLen, len(resp.Items))
			}
		})
	}
}

func TestRegisterRoutes_Guard(t *testing.T) {
	called := false
	svc := &stubService{
		listFn: func(context.Context) ([]products.Product, error) {
			called = true
			return nil, nil
		},
	}
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, httpserver.ErrorResponse{Error: "login required"})
	}

	r := setupRouter(svc, deny)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	if called {
		t.Fatalf("handler must not run when the guard aborts")
	}
}
