package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so the registry service can translate them into domain errors:
//   - ErrNotFound: the keyed row or entry does not exist
//   - ErrConflict: a write collided with a concurrent transaction
//   - ErrUnavailable: the backend is temporarily unreachable
//
// Validation failures never use these; they are domain errors from the start.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
