package products

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"supermarket-inventory/internal/validation"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

const (
	EventsQueue  = "inventory.events"
	EventCreated = "product_created"
	EventDeleted = "product_deleted"
)

const (
	MaxNameLength = 100
	MaxQuantity   = math.MaxInt32

	// PriceScale is the number of fractional digits the precio column keeps.
	PriceScale = 6
)

var maxPrice = decimal.New(1, 10)

type Product struct {
	ID       int64           `json:"id" example:"1"`
	Name     string          `json:"nombre" example:"Leche"`
	Quantity int64           `json:"cantidad" example:"10"`
	Price    decimal.Decimal `json:"precio" swaggertype:"string" example:"2.5"`
}

type ProductEvent struct {
	EventType string           `json:"event_type"`
	ProductID int64            `json:"product_id"`
	Name      string           `json:"name,omitempty"`
	Quantity  *int64           `json:"quantity,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// CreateInput is a product as submitted for creation, already typed.
type CreateInput struct {
	Name     string
	Quantity int64
	Price    decimal.Decimal
}

// ParseInput converts raw form values into a CreateInput. Every problem is
// reported, not only the first one.
func ParseInput(name, quantity, price string) (CreateInput, error) {
	verr := &validation.Error{}
	in := CreateInput{Name: strings.TrimSpace(name)}

	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		verr.Add("cantidad", "is required")
	} else if q, err := strconv.ParseInt(quantity, 10, 64); err != nil {
		verr.Add("cantidad", "must be an integer")
	} else {
		in.Quantity = q
	}

	price = strings.TrimSpace(price)
	if price == "" {
		verr.Add("precio", "is required")
	} else if p, err := decimal.NewFromString(price); err != nil {
		verr.Add("precio", "must be a number")
	} else {
		in.Price = p
	}

	in.validate(verr, !verr.Has("cantidad"), !verr.Has("precio"))
	return in, verr.OrNil()
}

// Validate checks the ranges a stored product must satisfy.
func (in CreateInput) Validate() error {
	verr := &validation.Error{}
	in.validate(verr, true, true)
	return verr.OrNil()
}

func (in CreateInput) validate(verr *validation.Error, checkQuantity, checkPrice bool) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		verr.Add("nombre", "is required")
	case strings.ContainsAny(name, "\r\n"):
		verr.Add("nombre", "must be a single line")
	case utf8.RuneCountInString(name) > MaxNameLength:
		verr.Add("nombre", "must be at most "+strconv.Itoa(MaxNameLength)+" characters")
	}

	if checkQuantity {
		switch {
		case in.Quantity < 1:
			verr.Add("cantidad", "must be at least 1")
		case in.Quantity > MaxQuantity:
			verr.Add("cantidad", "is too large")
		}
	}
	if !checkPrice {
		return
	}
	switch {
	case in.Price.IsNegative():
		verr.Add("precio", "must not be negative")
	case in.Price.GreaterThanOrEqual(maxPrice):
		verr.Add("precio", "is too large")
	}
}

// ExportFailure reports that a catalog mutation committed but the export
// artifacts could not be refreshed. It is a warning, not a failed request.
type ExportFailure struct {
	Err error
}

func (e *ExportFailure) Error() string {
	return "catalog saved but export files were not refreshed: " + e.Err.Error()
}

func (e *ExportFailure) Unwrap() error {
	return e.Err
}
