package models

import "errors"

var (
	ErrTableNotFound     = errors.New("table not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingField      = errors.New("missing required field")
	ErrOutOfRange        = errors.New("alert index out of range")
	ErrNotDismissible    = errors.New("alert does not require action and cannot be dismissed")
	ErrAlreadyPending    = errors.New("analysis already pending for table")
	ErrInvalidAlert      = errors.New("invalid alert")
)
