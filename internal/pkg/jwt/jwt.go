package jwt

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/moura-tracker/timeclock/internal/domain/auth"
)

// Claim names used by the backend's tokens.
const (
	ClaimEmployeeID = "userId"
	ClaimRole       = "role"
)

// revocationGrace keeps tokens without an expiry on the revoked list for a while.
const revocationGrace = 24 * time.Hour

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	SessionFromToken(token jwt.Token, raw string) (auth.Session, error)
	GenerateToken(employeeID, email string, role auth.Role, ttl time.Duration) (string, error)
	RevokeToken(raw string, expiresAt time.Time)
	IsTokenRevoked(raw string) bool
	PurgeExpired(now time.Time) int
}

// JWTService verifies tokens issued by the backend with the shared HS256 secret and
// keeps the set of tokens revoked by logout until they expire.
type JWTService struct {
	tokenAuth     *jwtauth.JWTAuth
	revokedTokens map[string]int64
	mu            sync.RWMutex
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth:     jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens: make(map[string]int64),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// SessionFromToken builds the request session from verified claims. The subject is
// the employee's email.
func (j *JWTService) SessionFromToken(token jwt.Token, raw string) (auth.Session, error) {
	if token == nil {
		return auth.Session{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}

	employeeID, ok := stringClaim(claims[ClaimEmployeeID])
	if !ok || employeeID == "" {
		return auth.Session{}, fmt.Errorf("%w: missing %s claim", auth.ErrInvalidToken, ClaimEmployeeID)
	}

	role := auth.RoleUser
	if r, ok := claims[ClaimRole].(string); ok && (r == string(auth.RoleAdmin) || r == "ROLE_ADMIN") {
		role = auth.RoleAdmin
	}

	return auth.Session{
		Token:      raw,
		EmployeeID: employeeID,
		Email:      token.Subject(),
		Role:       role,
	}, nil
}

// stringClaim accepts ids encoded as strings or JSON numbers.
func stringClaim(v interface{}) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, true
	case float64:
		return strconv.FormatInt(int64(id), 10), true
	case int64:
		return strconv.FormatInt(id, 10), true
	}
	return "", false
}

// GenerateToken signs a token shaped like the backend's. Production tokens come
// from the backend; this serves tests and local tooling.
func (j *JWTService) GenerateToken(employeeID, email string, role auth.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := time.Now()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		jwt.SubjectKey:    email,
		jwt.IssuedAtKey:   now.Unix(),
		jwt.ExpirationKey: now.Add(ttl).Unix(),
		ClaimEmployeeID:   employeeID,
		ClaimRole:         string(role),
	})
	return tokenString, err
}

// hashToken keys the revocation list without holding raw tokens in memory.
func (j *JWTService) hashToken(input string) string {
	hash := sha256.Sum256([]byte(input))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (j *JWTService) RevokeToken(raw string, expiresAt time.Time) {
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(revocationGrace)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[j.hashToken(raw)] = expiresAt.Unix()
}

func (j *JWTService) IsTokenRevoked(raw string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[j.hashToken(raw)]
	return revoked
}

// PurgeExpired drops revocations whose token has expired anyway and returns how
// many were removed.
func (j *JWTService) PurgeExpired(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	purged := 0
	for key, exp := range j.revokedTokens {
		if exp <= now.Unix() {
			delete(j.revokedTokens, key)
			purged++
		}
	}
	return purged
}
