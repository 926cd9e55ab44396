package shared

import "errors"

// Error taxonomy shared across the ledger core. Domain packages wrap these
// sentinels with context; the HTTP layer maps them to status codes.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed document or entry input.
	ErrValidation = errors.New("validation failed")
	// ErrImbalanced indicates journal debits and credits do not match.
	ErrImbalanced = errors.New("journal lines must balance")
	// ErrPeriodLocked indicates mutation targets a locked fiscal period.
	ErrPeriodLocked = errors.New("fiscal period locked")
	// ErrPermissionDenied indicates the caller role lacks the required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConfiguration indicates a required well-known account is missing.
	ErrConfiguration = errors.New("required account configuration missing")
	// ErrInvalidStatus indicates an action cannot proceed from the current state.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrDuplicate indicates a uniqueness constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
)
