package models

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists (e.g., duplicate name)
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrNoFieldsToUpdate is returned when no fields are provided for an update
	ErrNoFieldsToUpdate = errors.New("no fields to update")

	// ErrInvalidUUID is returned when a UUID is invalid
	ErrInvalidUUID = errors.New("invalid UUID")

	// ErrUnknownValidator is returned when a compliance rule references a
	// validator kind that is not registered
	ErrUnknownValidator = errors.New("unknown validator kind")

	// ErrInvalidPriority is returned when a rule priority is negative
	ErrInvalidPriority = errors.New("priority must be zero or positive")
)
