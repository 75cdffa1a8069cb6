package auth

import "context"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Session is the authenticated caller of one request. It is created from a verified
// backend token and lives only as long as the request context.
type Session struct {
	Token      string
	EmployeeID string
	Email      string
	Role       Role
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// MustSession returns the request session or ErrSessionMissing.
func MustSession(ctx context.Context) (Session, error) {
	s, ok := SessionFromContext(ctx)
	if !ok || s.EmployeeID == "" {
		return Session{}, ErrSessionMissing
	}
	return s, nil
}
