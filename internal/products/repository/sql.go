package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"supermarket-inventory/internal/database"
	"supermarket-inventory/internal/products"
)

const healthCheckTimeout = 2 * time.Second

type SQLRepository struct {
	db     *sql.DB
	driver database.Driver
}

func NewSQL(db *sql.DB, driver database.Driver) *SQLRepository {
	return &SQLRepository{db: db, driver: driver}
}

func (r *SQLRepository) Create(ctx context.Context, in products.CreateInput) (products.Product, error) {
	query := `INSERT INTO productos (nombre, cantidad, precio) VALUES (?, ?, ?)`

	// Digits past the column scale would be rounded by the database anyway;
	// rounding here keeps the returned product equal to what List reads back.
	price := in.Price.Round(products.PriceScale)

	id, err := r.driver.InsertID(ctx, r.db, query, in.Name, in.Quantity, price)
	if err != nil {
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return products.Product{
		ID:       id,
		Name:     in.Name,
		Quantity: in.Quantity,
		Price:    price,
	}, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	query := r.driver.Rebind(`DELETE FROM productos WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return products.ErrNotFound
	}

	return nil
}

// List returns every product in insertion (id) order.
func (r *SQLRepository) List(ctx context.Context) ([]products.Product, error) {
	query := `
		SELECT id, nombre, cantidad, precio
		FROM productos
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]products.Product, 0)
	for rows.Next() {
		var p products.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func (r *SQLRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}
