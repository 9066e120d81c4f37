package membership

import "errors"

// Errors returned by the engine and the team service. Callers match them with errors.Is.
var (
	ErrNotAuthenticated   = errors.New("sign in required")
	ErrSelfJoinNotAllowed = errors.New("owners cannot request to join their own project")
	ErrAlreadyRequested   = errors.New("request already exists")
	ErrNotAuthorized      = errors.New("only the project owner can decide requests")
	ErrAlreadyDecided     = errors.New("request already decided")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInvalidDecision    = errors.New("decision must be accept or reject")
	ErrInvalidProject     = errors.New("invalid project")
)

// IsRetryable reports whether repeating the same action may succeed without
// any precondition changing. Only store outages qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
