package service

import "errors"

var (
	ErrDuplicateCredential = errors.New("duplicate_credential")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidInput       = errors.New("invalid_input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrNotFound           = errors.New("not_found")

	// ErrUpstreamFailure is a hashing or store failure. Nothing was written.
	ErrUpstreamFailure = errors.New("upstream_failure")

	// ErrDocumentService is a failed call to the external document service.
	ErrDocumentService = errors.New("document_service_failure")
	// ErrDocumentServiceUnavailable means no document service is configured.
	ErrDocumentServiceUnavailable = errors.New("document_service_unavailable")
)

// ValidationError carries a user-facing reason and matches ErrInvalidInput.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
