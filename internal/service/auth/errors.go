package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is missing or held by no user
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrInvalidCredentials indicates an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenRetriesExhausted indicates every generated candidate collided
	// with an issued token
	ErrTokenRetriesExhausted = errors.New("could not generate a unique authentication token")
)
