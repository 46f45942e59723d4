package domain

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrUserInactive         = errors.New("user_inactive")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrInvalidFirstName     = errors.New("invalid_first_name")
	ErrInvalidLastName      = errors.New("invalid_last_name")
	ErrInvalidEmail         = errors.New("invalid_email")
	ErrInvalidRole          = errors.New("invalid_role")
	ErrPasswordTooShort     = errors.New("password_too_short")
	ErrPasswordMismatch     = errors.New("password_mismatch")
	ErrEmailTaken           = errors.New("email_taken")
	ErrCannotDeactivateSelf = errors.New("cannot_deactivate_self")
)
