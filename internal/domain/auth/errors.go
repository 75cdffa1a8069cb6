package auth

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenRevoked           = errors.New("token has been revoked")
	ErrSessionExpired         = errors.New("session expired, please log in again")
	ErrSessionMissing         = errors.New("no authenticated session")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
