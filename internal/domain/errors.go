package domain

import "errors"

// Sentinel errors returned by repositories. Usecases translate them into the
// HTTP-coded apperror taxonomy at the boundary.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
