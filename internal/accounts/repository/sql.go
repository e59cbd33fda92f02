package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"supermarket-inventory/internal/accounts"
	"supermarket-inventory/internal/database"
)

type SQLRepository struct {
	db     *sql.DB
	driver database.Driver
}

func NewSQL(db *sql.DB, driver database.Driver) *SQLRepository {
	return &SQLRepository{db: db, driver: driver}
}

// Create stores a new account. email must already be normalised.
func (r *SQLRepository) Create(ctx context.Context, name, email, passwordHash string) (accounts.Account, error) {
	query := `INSERT INTO usuarios (nombre, email, password_hash) VALUES (?, ?, ?)`

	id, err := r.driver.InsertID(ctx, r.db, query, name, email, passwordHash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return accounts.Account{}, accounts.ErrDuplicateEmail
		}
		return accounts.Account{}, fmt.Errorf("insert account: %w", err)
	}

	return accounts.Account{ID: id, Name: name, Email: email, PasswordHash: passwordHash}, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (accounts.Account, error) {
	query := r.driver.Rebind(`SELECT id, nombre, email, password_hash FROM usuarios WHERE id = ?`)
	return r.getOne(ctx, query, id)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	query := r.driver.Rebind(`SELECT id, nombre, email, password_hash FROM usuarios WHERE email = ?`)
	return r.getOne(ctx, query, email)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg any) (accounts.Account, error) {
	var a accounts.Account
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return accounts.Account{}, accounts.ErrNotFound
	}
	if err != nil {
		return accounts.Account{}, fmt.Errorf("query account: %w", err)
	}
	return a, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre, email, password_hash FROM usuarios ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	list := make([]accounts.Account, 0)
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return list, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.driver.Rebind(`DELETE FROM usuarios WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return accounts.ErrNotFound
	}

	return nil
}
