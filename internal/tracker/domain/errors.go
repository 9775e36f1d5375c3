package domain

import "errors"

var (
	// ErrApplicationNotFound is returned when an application id does not exist.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrInvalidStatus is returned when a string is not a member of the status enum.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidDate is returned when a date string is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMissingField is returned when a required field is empty on create.
	ErrMissingField = errors.New("missing required field")
)
