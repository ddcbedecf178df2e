// Package common defines sentinel errors shared by the repository, service
// and transport layers of foodgram. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Relation errors.
	ErrDuplicateRelation = errors.New("relation already exists")
	ErrRelationNotFound  = errors.New("relation not found")
	ErrSelfReference     = errors.New("subject and object must differ")

	// Recipe composition errors.
	ErrInvalidComposition = errors.New("invalid recipe composition")
	ErrInvalidCookingTime = errors.New("cooking time must be a positive integer")

	// Short link errors.
	ErrDecodeFailure = errors.New("malformed short code")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
