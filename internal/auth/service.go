package auth

import (
	"context"
	"errors"
	"time"

	"bookstore/internal/platform/crypto"
	"bookstore/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// Users is the part of the user service login needs.
type Users interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type Service struct {
	secret string
	ttl    time.Duration
	users  Users
}

func NewService(secret string, ttl time.Duration, users Users) *Service {
	return &Service{secret: secret, ttl: ttl, users: users}
}

// Login checks the credentials and issues an access token. Unknown emails and
// wrong passwords are reported alike.
func (s *Service) Login(ctx context.Context, email, password string) (string, int, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", 0, ErrUnauthorized
		}
		return "", 0, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return "", 0, ErrUnauthorized
	}

	accessToken, _, err := crypto.GenerateToken(s.secret, u.ID, u.Role, s.ttl)
	if err != nil {
		return "", 0, err
	}
	return accessToken, int(s.ttl.Seconds()), nil
}
