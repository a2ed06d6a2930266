// Package apperr defines the error kinds shared by the vocabulary engine and
// its callers.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrOutOfRange reports a 1-based position outside [1, count].
	ErrOutOfRange = errors.New("position out of range")
	// ErrDuplicateWord reports a case-insensitive collision inside a topic.
	ErrDuplicateWord = errors.New("duplicate word")
	// ErrWordNotFound reports a remove/change target missing from a topic.
	ErrWordNotFound = errors.New("word not found")
	// ErrMalformedInput reports an undecodable vocabulary stream or an
	// I/O failure while reading or writing one.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidArgument reports empty or otherwise unusable text arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// HTTPStatus maps an error kind to the HTTP status the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrWordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrDuplicateWord):
		return http.StatusConflict
	case errors.Is(err, ErrOutOfRange), errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrMalformedInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
