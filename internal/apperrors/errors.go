package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of a resource.
var ErrConflict = errors.New("operation conflicts with current state")

// ErrAccountInUse indicates that an account cannot be disabled because journal
// items (active or historical) still reference it.
var ErrAccountInUse = errors.New("account is referenced by journal items")

// ErrCycle indicates a cycle in the account hierarchy. Creation and reparent
// paths reject it up front; anywhere else it is an integrity violation and is
// surfaced, never swallowed.
var ErrCycle = errors.New("account hierarchy cycle detected")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
