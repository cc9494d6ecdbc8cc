package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	// ErrNoResults is returned by task listing when nothing matches.
	ErrNoResults = errors.New("no results")

	ErrEmailNotRegistered = errors.New("email not registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProtectedUser guards admin identities against edit and delete.
	ErrProtectedUser = errors.New("protected user")
)

// Task validation failures with fixed client-facing messages.
var (
	ErrPastDueDate     = fmt.Errorf("%w: due date is in the past", ErrInvalidInput)
	ErrInvalidAssignee = fmt.Errorf("%w: assigned_to does not reference a user", ErrInvalidInput)
)
