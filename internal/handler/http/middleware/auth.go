package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/handler/http/response"
	"github.com/moura-tracker/timeclock/internal/pkg/jwt"
)

// AuthRequired turns the token verified by jwtauth.Verifier into a request session.
// Revoked tokens are rejected even when their signature and expiry are still valid.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if errors.Is(err, jwtauth.ErrExpired) {
					response.HandleError(w, auth.ErrSessionExpired)
					return
				}
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			raw := rawToken(r)
			if token == nil || raw == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(raw) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			session, err := jwtService.SessionFromToken(token, raw)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		}
		return http.HandlerFunc(hfn)
	}
}

// rawToken finds the token the verifier used. Event streams pass it as ?jwt=
// because browsers cannot set headers on an EventSource.
func rawToken(r *http.Request) string {
	if t := jwtauth.TokenFromHeader(r); t != "" {
		return t
	}
	return jwtauth.TokenFromQuery(r)
}
