package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"supperclub/internal/domain"
	"supperclub/internal/pkg/jwt"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return NewService(db, jwt.New("test-secret", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterRequest{
		Email:    "Host@Example.com",
		Password: "correct-horse",
		Name:     "Priya",
		Role:     "host",
	})
	require.NoError(t, err)
	assert.Equal(t, "host@example.com", result.User.Email)
	assert.Equal(t, domain.RoleHost, result.User.Role)
	assert.NotEmpty(t, result.AccessToken)

	login, err := svc.Login(ctx, LoginRequest{Email: "host@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "host@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email:    "guest@example.com",
		Password: "correct-horse",
		Name:     "Arjun",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "guest@example.com",
		Password: "another-pass",
		Name:     "Arjun Again",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegisterDefaultsToGuest(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterRequest{
		Email:    "guest@example.com",
		Password: "correct-horse",
		Name:     "Arjun",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGuest, result.User.Role)

	// admin cannot be self-assigned
	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "admin@example.com",
		Password: "correct-horse",
		Name:     "Mallory",
		Role:     "admin",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "correct-horse", Name: "X Y"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "short", Name: "X Y"})
	assert.ErrorIs(t, err, ErrValidation)
}
