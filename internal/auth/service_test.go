package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/internal/platform/crypto"
	"bookstore/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(user.User), args.Error(1)
}

const testSecret = "test-secret-key"

func storedUser(t *testing.T, password string) user.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	return user.User{ID: "user-123", Email: "reader@example.com", Role: user.RoleUser, Password: hash}
}

func TestService_Login(t *testing.T) {
	u := storedUser(t, "Secret#123")

	t.Run("valid credentials", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "reader@example.com").Return(u, nil)
		svc := NewService(testSecret, 15*time.Minute, users)

		token, expiresIn, err := svc.Login(context.Background(), "reader@example.com", "Secret#123")
		require.NoError(t, err)
		assert.Equal(t, 900, expiresIn)

		claims, err := crypto.ParseToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.Sub)
		assert.Equal(t, user.RoleUser, claims.Role)
		users.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "reader@example.com").Return(u, nil)
		svc := NewService(testSecret, time.Minute, users)

		_, _, err := svc.Login(context.Background(), "reader@example.com", "nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(user.User{}, user.ErrNotFound)
		svc := NewService(testSecret, time.Minute, users)

		_, _, err := svc.Login(context.Background(), "ghost@example.com", "Secret#123")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("storage failure is not hidden", func(t *testing.T) {
		boom := errors.New("connection refused")
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "reader@example.com").Return(user.User{}, boom)
		svc := NewService(testSecret, time.Minute, users)

		_, _, err := svc.Login(context.Background(), "reader@example.com", "Secret#123")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})
}
