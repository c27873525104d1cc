package domain

import "errors"

var (
	// ErrKeyNotFound is returned when a user id has no stored key of the
	// requested kind.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidSignature is returned when a signed post fails verification.
	// It is distinct from ErrKeyNotFound.
	ErrInvalidSignature = errors.New("invalid signature")
)
