package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) (SessionResponse, error)
}

// Authenticator exchanges credentials for a backend-issued token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (LoginResponse, error)
}
