package models

import "errors"

// Validation errors shared by the config loader and the record types.
// Call sites wrap these with fmt.Errorf("...: %w", ...) so callers can
// match the kind with errors.Is while still seeing the offending field.
var (
	// ErrMissingRequired indicates a mandatory field or environment
	// variable is absent or empty.
	ErrMissingRequired = errors.New("missing required value")

	// ErrInvalidFormat indicates a value is present but does not match
	// its required shape.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrOutOfRange indicates a numeric score outside the 0-100 range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrSecurityRejected indicates input refused on security grounds:
	// path traversal in a filename or an oversized content payload.
	ErrSecurityRejected = errors.New("rejected for security reasons")

	// ErrImmutable indicates an attempted write to a finalized value.
	ErrImmutable = errors.New("immutable after creation")
)
