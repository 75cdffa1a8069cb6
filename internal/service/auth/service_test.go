package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/pkg/jwt"
	"github.com/moura-tracker/timeclock/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeAuthenticator struct {
	resp auth.LoginResponse
	err  error
}

func (f *fakeAuthenticator) Login(context.Context, string, string) (auth.LoginResponse, error) {
	return f.resp, f.err
}

func issue(t *testing.T, secret string, role auth.Role) string {
	t.Helper()
	token, err := jwt.NewJWTService(secret).GenerateToken("42", "ana@moura.com", role, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthService_Login_Success(t *testing.T) {
	token := issue(t, testSecret, auth.RoleAdmin)
	svc := NewAuthService(&fakeAuthenticator{resp: auth.LoginResponse{Name: "Ana", Role: auth.RoleAdmin, Token: token}}, jwt.NewJWTService(testSecret))

	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: "ana@moura.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "42", resp.ID)
	assert.Equal(t, token, resp.Token)
}

func TestAuthService_Login_SecretMismatch(t *testing.T) {
	token := issue(t, "backend-secret", auth.RoleUser)
	svc := NewAuthService(&fakeAuthenticator{resp: auth.LoginResponse{Token: token}}, jwt.NewJWTService(testSecret))

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "ana@moura.com", Password: "secret"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := NewAuthService(&fakeAuthenticator{err: auth.ErrInvalidCredentials}, jwt.NewJWTService(testSecret))

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "ana@moura.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc := NewAuthService(&fakeAuthenticator{}, jwt.NewJWTService(testSecret))

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "not-an-email"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	jwtService := jwt.NewJWTService(testSecret)
	svc := NewAuthService(&fakeAuthenticator{}, jwtService)
	token := issue(t, testSecret, auth.RoleUser)
	ctx := auth.WithSession(context.Background(), auth.Session{Token: token, EmployeeID: "42"})

	require.NoError(t, svc.Logout(ctx))
	assert.True(t, jwtService.IsTokenRevoked(token))
	assert.Equal(t, 0, jwtService.PurgeExpired(time.Now()), "revocation lasts until the token expires")

	assert.ErrorIs(t, svc.Logout(context.Background()), auth.ErrSessionMissing)
}

func TestAuthService_CurrentSession(t *testing.T) {
	svc := NewAuthService(&fakeAuthenticator{}, jwt.NewJWTService(testSecret))
	ctx := auth.WithSession(context.Background(), auth.Session{EmployeeID: "42", Email: "ana@moura.com", Role: auth.RoleAdmin})

	resp, err := svc.CurrentSession(ctx)
	require.NoError(t, err)
	assert.True(t, resp.IsAdmin)
	assert.Equal(t, "ana@moura.com", resp.Email)
}
