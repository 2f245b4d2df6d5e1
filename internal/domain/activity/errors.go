package activity

import "errors"

var (
	// ErrInvalidEstateID indicates the caller supplied a malformed estate id.
	ErrInvalidEstateID = errors.New("invalid estate id")
	// ErrInvalidUserID indicates the caller supplied an empty or malformed user id.
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrScopeResolution indicates the set of visible estates could not be determined.
	ErrScopeResolution = errors.New("estate scope resolution failed")
)
