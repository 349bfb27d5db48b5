package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/auth"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type Config struct {
	BcryptCost int
	Now        func() time.Time
}

type Service struct {
	store  repository.Store
	tokens *auth.Issuer
	log    *slog.Logger
	cfg    Config
}

func New(store repository.Store, tokens *auth.Issuer, log *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:  store,
		tokens: tokens,
		log:    log,
		cfg:    cfg,
	}
}

type RegisterInput struct {
	Account  string
	Email    string
	Password string
	Role     domain.Role
}

// Session is a signed access token and the user it belongs to.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

// Register creates an account. Only user and sponsor roles may be
// self-registered; anything else falls back to user.
//
// Returns:
//   - error: users.ErrUserExists if the account or email is taken.
//   - error: users.ErrInvalidInput on a missing field or short password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	const op = "service.users.Register"

	if in.Role != domain.RoleSponsor {
		in.Role = domain.RoleUser
	}

	u, err := s.create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.issue(op, *u)
}

// Provision creates an account with any role, admin included. It backs
// operator tooling and never issues a token.
func (s *Service) Provision(ctx context.Context, in RegisterInput) (*domain.User, error) {
	const op = "service.users.Provision"

	switch in.Role {
	case domain.RoleUser, domain.RoleSponsor, domain.RoleAdmin:
	default:
		return nil, fmt.Errorf("%s: %w: unknown role %q", op, ErrInvalidInput, in.Role)
	}

	u, err := s.create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Service) create(ctx context.Context, in RegisterInput) (*domain.User, error) {
	account := strings.TrimSpace(in.Account)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if account == "" || email == "" {
		return nil, fmt.Errorf("%w: account and email are required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password shorter than %d", ErrInvalidInput, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	u := domain.User{
		ID:           uuid.New(),
		Account:      account,
		Email:        email,
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    s.cfg.Now().UTC(),
	}

	if err := s.store.Users().Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user registered", "user_id", u.ID, "role", u.Role)

	return &u, nil
}

// Login checks the password and issues a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "service.users.Login"

	u, err := s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.issue(op, *u)
}

func (s *Service) Me(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "service.users.Me"

	u, err := s.store.Users().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Service) issue(op string, u domain.User) (*Session, error) {
	tok, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}
