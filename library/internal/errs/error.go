package errs

import (
	"errors"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrNotAvailable = errors.New("book is not available")
	ErrNotBorrowed  = errors.New("book is not borrowed")
	ErrNotBorrower  = errors.New("book is borrowed by another user")
	ErrBookBorrowed = errors.New("book is currently borrowed and cannot be deleted")

	ErrLibrarianOnly = errors.New("librarian role required")

	ErrUserExists   = errors.New("username already exists")
	ErrCredentials  = errors.New("invalid username or password")
	ErrRoleMismatch = errors.New("account is registered with a different role")
	ErrNoSession    = errors.New("no active session")

	ErrSeedUnavailable = errors.New("seed data is unavailable")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
