package users_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sportspass/ticketing/internal/auth"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository/memory"
	"github.com/sportspass/ticketing/internal/service/users"
)

func newService() (*users.Service, *auth.Issuer) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	svc := users.New(memory.NewStore(), issuer, slog.New(slog.NewTextHandler(io.Discard, nil)), users.Config{
		BcryptCost: bcrypt.MinCost,
	})
	return svc, issuer
}

func TestRegisterLoginMe(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newService()

	reg, err := svc.Register(ctx, users.RegisterInput{
		Account:  "kim",
		Email:    " Kim@Example.com ",
		Password: "correct horse",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", reg.User.Email)
	assert.Equal(t, domain.RoleUser, reg.User.Role, "admin cannot be self-registered")

	id, err := issuer.Parse(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)

	login, err := svc.Login(ctx, "KIM@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "kim", me.Account)
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Register(ctx, users.RegisterInput{Account: "a", Email: "a@x.io", Password: "short"})
	assert.ErrorIs(t, err, users.ErrInvalidInput)

	_, err = svc.Register(ctx, users.RegisterInput{Email: "a@x.io", Password: "long enough"})
	assert.ErrorIs(t, err, users.ErrInvalidInput)

	_, err = svc.Register(ctx, users.RegisterInput{Account: "a", Email: "a@x.io", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, users.RegisterInput{Account: "b", Email: "A@X.io", Password: "long enough"})
	assert.ErrorIs(t, err, users.ErrUserExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Register(ctx, users.RegisterInput{Account: "a", Email: "a@x.io", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.io", "wrong password")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@x.io", "long enough")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestProvisionAllowsAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	u, err := svc.Provision(ctx, users.RegisterInput{
		Account: "ops", Email: "ops@example.com", Password: "long enough", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	_, err = svc.Provision(ctx, users.RegisterInput{
		Account: "x", Email: "x@example.com", Password: "long enough", Role: "root",
	})
	assert.ErrorIs(t, err, users.ErrInvalidInput)
}
