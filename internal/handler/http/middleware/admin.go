package middleware

import (
	"net/http"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := auth.MustSession(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !session.IsAdmin() {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
