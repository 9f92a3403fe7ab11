package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("weak_password")
	ErrWrongPassword      = errors.New("invalid_password")
	ErrAdminNotFound      = errors.New("admin_not_found")
	ErrAdminExists        = errors.New("admin_exists")
	ErrCannotToggleSelf   = errors.New("cannot_deactivate_self")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
	ErrInvalidSession     = errors.New("invalid_session")
)
