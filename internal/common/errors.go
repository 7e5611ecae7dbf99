package common

import (
	"errors"
	"fmt"
)

// Kind errors. Every error returned by a service wraps exactly one of these,
// callers should use errors.Is to match them.
var (
	ErrorValidation = errors.New("validation error")
	ErrorNotFound   = errors.New("not found")
	ErrorForbidden  = errors.New("forbidden")
	ErrorConflict   = errors.New("conflict")
	ErrorStorage    = errors.New("storage unavailable")

	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
)

// Auth errors.
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = fmt.Errorf("refresh token expired: %w", ErrorUnauthorized)
)

// Specific errors, each wrapping its kind.
var (
	ErrInvalidFilename = fmt.Errorf("invalid filename: %w", ErrorValidation)
	ErrMissingField    = fmt.Errorf("missing required field: %w", ErrorValidation)
	ErrInvalidLocator  = fmt.Errorf("invalid storage locator: %w", ErrorValidation)
	ErrNoPublicKey     = fmt.Errorf("user has no public key: %w", ErrorValidation)

	ErrDocumentNotFound = fmt.Errorf("document not found: %w", ErrorNotFound)
	ErrCategoryNotFound = fmt.Errorf("category not found: %w", ErrorNotFound)
	ErrUserNotFound     = fmt.Errorf("user not found: %w", ErrorNotFound)

	ErrNotOwner = fmt.Errorf("only the owner may do this: %w", ErrorForbidden)
	ErrNoGrant  = fmt.Errorf("no access to this document: %w", ErrorForbidden)
	ErrNotStaff = fmt.Errorf("staff privileges required: %w", ErrorForbidden)

	ErrDuplicateCategory = fmt.Errorf("category already exists: %w", ErrorConflict)
	ErrCategoryInUse     = fmt.Errorf("category is referenced by documents: %w", ErrorConflict)
	ErrUserExists        = fmt.Errorf("user already exists: %w", ErrorConflict)

	ErrObjectNotFound     = fmt.Errorf("uploaded object not found in storage: %w", ErrorStorage)
	ErrStorageUnavailable = fmt.Errorf("blob store unavailable: %w", ErrorStorage)
)

// specific is ordered most specific first.
var specific = []error{
	ErrInvalidFilename, ErrMissingField, ErrInvalidLocator, ErrNoPublicKey,
	ErrDocumentNotFound, ErrCategoryNotFound, ErrUserNotFound,
	ErrNotOwner, ErrNoGrant, ErrNotStaff,
	ErrDuplicateCategory, ErrCategoryInUse, ErrUserExists,
	ErrObjectNotFound, ErrStorageUnavailable,
	ErrRefreshTokenExpired,
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrorValidation, "ValidationError"},
	{ErrorNotFound, "NotFoundError"},
	{ErrorForbidden, "ForbiddenError"},
	{ErrorConflict, "ConflictError"},
	{ErrorStorage, "StorageError"},
	{ErrorUnauthorized, "Unauthorized"},
}

// KindOf returns the stable kind name of err. Unknown errors are InternalError.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "InternalError"
}

// PublicMessage returns a message safe to show to a caller. It never includes
// wrapped driver or SDK text, so locators and credentials cannot leak.
func PublicMessage(err error) string {
	for _, s := range specific {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err.Error()
		}
	}
	return ErrorInternal.Error()
}
