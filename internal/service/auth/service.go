package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/pkg/jwt"
)

type AuthServiceImpl struct {
	auth.Authenticator
	jwt.Service
}

func NewAuthService(authenticator auth.Authenticator, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		Authenticator: authenticator,
		Service:       jwtService,
	}
}

// Login exchanges credentials with the backend and checks that the issued token
// verifies under the gateway's secret, so a secret mismatch fails here rather than
// on the next request.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	resp, err := a.Authenticator.Login(ctx, req.Email, req.Password)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	token, err := jwtauth.VerifyToken(a.Service.JWTAuth(), resp.Token)
	if err != nil {
		slog.Error("Backend issued a token the gateway cannot verify", "email", req.Email, "error", err)
		return auth.LoginResponse{}, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}
	session, err := a.Service.SessionFromToken(token, resp.Token)
	if err != nil {
		return auth.LoginResponse{}, err
	}
	if resp.ID == "" {
		resp.ID = session.EmployeeID
	}

	slog.Info("Employee logged in", "employee_id", session.EmployeeID, "role", session.Role)
	return resp, nil
}

// Logout revokes the caller's token until it expires.
func (a *AuthServiceImpl) Logout(ctx context.Context) error {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if token, err := jwtauth.VerifyToken(a.Service.JWTAuth(), session.Token); err == nil {
		expiresAt = token.Expiration()
	}
	a.Service.RevokeToken(session.Token, expiresAt)

	slog.Info("Employee logged out", "employee_id", session.EmployeeID)
	return nil
}

func (a *AuthServiceImpl) CurrentSession(ctx context.Context) (auth.SessionResponse, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return auth.SessionResponse{}, err
	}
	return auth.SessionResponse{
		EmployeeID: session.EmployeeID,
		Email:      session.Email,
		Role:       session.Role,
		IsAdmin:    session.IsAdmin(),
	}, nil
}
