package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure for a resource that exists
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// errors.Is support so typed errors match their sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotEmpty     = errors.New("folder not empty")
	ErrIntegrity    = errors.New("integrity violation")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder, file
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotEmptyError is returned when a folder targeted for deletion still has
// child folders or files.
type NotEmptyError struct {
	Message    string
	FolderID   string
	FolderName string
}

func (e *NotEmptyError) Error() string { return e.Message }

func (e *NotEmptyError) StatusCode() int { return http.StatusConflict }

func (e *NotEmptyError) Is(target error) bool { return target == ErrNotEmpty }

// IntegrityError reports stored data that breaks a structural invariant,
// e.g. a parent_id chain that loops or crosses tenants.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string { return e.Message }

func (e *IntegrityError) StatusCode() int { return http.StatusInternalServerError }

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }
