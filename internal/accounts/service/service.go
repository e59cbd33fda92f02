package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"supermarket-inventory/internal/accounts"
	"supermarket-inventory/internal/accounts/password"
	"supermarket-inventory/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	loginSucceeded = "success"
	loginFailed    = "failure"
)

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string) (accounts.Account, error)
	GetByID(ctx context.Context, id int64) (accounts.Account, error)
	GetByEmail(ctx context.Context, email string) (accounts.Account, error)
	List(ctx context.Context) ([]accounts.Account, error)
	Delete(ctx context.Context, id int64) error
}

type Hasher interface {
	Hash(plain string) (string, error)
}

type Service struct {
	repo   Repository
	hasher Hasher
	logger *slog.Logger
	logins *prometheus.CounterVec

	// dummyHash is verified when the email is unknown so both failure paths
	// cost one PBKDF2 run.
	dummyHash string
}

func New(repo Repository, hasher Hasher, logger *slog.Logger, logins *prometheus.CounterVec) (*Service, error) {
	dummy, err := hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{
		repo:      repo,
		hasher:    hasher,
		logger:    logger,
		logins:    logins,
		dummyHash: dummy,
	}, nil
}

// NormalizeEmail is the single place emails are canonicalised before lookup
// and storage.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in accounts.RegisterInput) (accounts.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)

	verr := &validation.Error{}
	if name == "" {
		verr.Add("nombre", "is required")
	}
	if email == "" {
		verr.Add("email", "is required")
	}
	if in.Password == "" {
		verr.Add("password", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return accounts.Account{}, err
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return accounts.Account{}, accounts.ErrDuplicateEmail
	case !errors.Is(err, accounts.ErrNotFound):
		return accounts.Account{}, fmt.Errorf("repo get by email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return accounts.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.repo.Create(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, accounts.ErrDuplicateEmail) {
			return accounts.Account{}, err
		}
		return accounts.Account{}, fmt.Errorf("repo create: %w", err)
	}

	s.logger.Info("account registered", "account_id", account.ID)
	return account, nil
}

// Authenticate returns accounts.ErrInvalidCredentials for both an unknown
// email and a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, plain string) (accounts.Account, error) {
	email = NormalizeEmail(email)

	verr := &validation.Error{}
	if email == "" {
		verr.Add("email", "is required")
	}
	if plain == "" {
		verr.Add("password", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return accounts.Account{}, err
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, accounts.ErrNotFound) {
		return accounts.Account{}, fmt.Errorf("repo get by email: %w", err)
	}

	stored := s.dummyHash
	if err == nil {
		stored = account.PasswordHash
	}
	ok, verifyErr := password.Verify(stored, plain)
	if verifyErr != nil {
		s.logger.Error("stored password hash unreadable", "account_id", account.ID, "error", verifyErr)
	}

	if err != nil || !ok {
		s.logins.WithLabelValues(loginFailed).Inc()
		return accounts.Account{}, accounts.ErrInvalidCredentials
	}

	s.logins.WithLabelValues(loginSucceeded).Inc()
	return account, nil
}

func (s *Service) Get(ctx context.Context, id int64) (accounts.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return accounts.Account{}, fmt.Errorf("repo get: %w", err)
	}
	return account, nil
}

func (s *Service) List(ctx context.Context) ([]accounts.Account, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}
	return list, nil
}

// Delete removes account id on behalf of actorID, who may not remove themselves.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return accounts.ErrSelfDeletion
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}
	s.logger.Info("account deleted", "account_id", id, "actor_id", actorID)
	return nil
}
