package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/pkg/backend"
)

type authenticatorImpl struct {
	client *backend.Client
}

func NewAuthenticator(client *backend.Client) auth.Authenticator {
	return &authenticatorImpl{client: client}
}

// Login is an anonymous call: the context must not carry a session.
func (a *authenticatorImpl) Login(ctx context.Context, email, password string) (auth.LoginResponse, error) {
	var out loginDTO
	err := a.client.Post(ctx, "/api/auth/login", nil, loginBody{Email: email, Password: password}, &out)
	if err != nil {
		if errors.Is(err, auth.ErrSessionExpired) || errors.Is(err, backend.ErrRejected) {
			return auth.LoginResponse{}, fmt.Errorf("%w: %w", auth.ErrInvalidCredentials, err)
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to log in: %w", err)
	}
	if out.Token == "" {
		return auth.LoginResponse{}, fmt.Errorf("%w: backend issued no token", auth.ErrInvalidCredentials)
	}

	return auth.LoginResponse{
		ID:    out.ID.String(),
		Name:  out.Name,
		Email: out.Email,
		Role:  roleOf(out.Role),
		Token: out.Token,
	}, nil
}
