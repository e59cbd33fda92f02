package accounts

import "errors"

var (
	ErrNotFound           = errors.New("account not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrSelfDeletion       = errors.New("you cannot delete your own account")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Account struct {
	ID           int64  `json:"id" example:"1"`
	Name         string `json:"nombre" example:"Ana"`
	Email        string `json:"email" example:"ana@example.com"`
	PasswordHash string `json:"-"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}
