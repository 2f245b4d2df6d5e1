package estate

import "errors"

var (
	// ErrEstateNotFound indicates the estate doesn't exist.
	ErrEstateNotFound = errors.New("estate not found")
	// ErrInvalidInput indicates invalid estate input.
	ErrInvalidInput = errors.New("invalid estate input")
	// ErrAlreadyMember indicates the user already has access to the estate.
	ErrAlreadyMember = errors.New("user is already a member of the estate")
)
