package auth

import "errors"

var (
	// ErrMissingToken is returned when no bearer token is present on the request.
	ErrMissingToken = errors.New("authentication token required")

	// ErrInvalidToken is returned when a token resolves to no known user.
	ErrInvalidToken = errors.New("invalid authentication token")
)
