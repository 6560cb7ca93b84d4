package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Text has NUL or is not valid UTF-8, so it can't be stored
	ErrInvalidText = errors.New("text contains characters that can't be stored")

	ErrUnknownHashFormat = errors.New("unknown password hash format")
	ErrPasswordMismatch  = errors.New("password does not match hash")

	ErrInvalidToken = errors.New("invalid token")
)
