// Package sentinel declares errors for infrastructure facts. Stores return
// these (optionally wrapped) so services can translate them into coded domain
// errors without the stores knowing about HTTP or the error taxonomy.
package sentinel

import "errors"

var (
	// ErrNotFound: record does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness or state constraint was violated.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: backing service temporarily unreachable.
	ErrUnavailable = errors.New("unavailable")
)
