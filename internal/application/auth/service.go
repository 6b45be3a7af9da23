package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-social-nosql/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Session is the result of a successful login.
type Session struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*Session, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type tokenSigner interface {
	Sign(userID, username string) (string, error)
}

type service struct {
	users  userStore
	signer tokenSigner
}

func NewService(users userStore, signer tokenSigner) Service {
	return &service{users: users, signer: signer}
}

// Login checks the credentials and issues a bearer token. Unknown usernames
// and wrong passwords fail the same way.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, domain.StorageError("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	token, err := s.signer.Sign(u.UserID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{UserID: u.UserID, Username: u.Username, AccessToken: token}, nil
}
