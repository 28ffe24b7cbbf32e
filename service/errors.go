// Package service holds the share-lifecycle and access-control core:
// the share registry, the access ledger, the direct-share index and the
// visibility engine sitting on top of them.
package service

import (
	"errors"
	"fmt"
)

// The error taxonomy every operation in this package reports through.
// Handlers map these to HTTP statuses, nothing below the API layer does.
var (
	// ErrNotFound covers both truly absent entities and entities the caller
	// is not allowed to know exist. Deliberate: a denied lookup must be
	// indistinguishable from a missing one.
	ErrNotFound = errors.New("not found")

	// ErrExpired means a public link exists but its validity window closed.
	// Distinct from ErrNotFound so the UI can say "expired" instead of
	// "invalid link".
	ErrExpired = errors.New("share link expired")

	// ErrUnauthorized means the caller is known and the resource is visible
	// to them, but the grant they hold does not cover the operation.
	ErrUnauthorized = errors.New("not allowed")

	// ErrUnauthenticated means no usable caller identity at all.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrConflict signals a unique-constraint collision, e.g. a taken email.
	ErrConflict = errors.New("already exists")
)

// DependencyError wraps failures of external collaborators (blob store,
// mail). Notifier failures are swallowed before they ever reach a caller,
// blob-store failures on read/delete propagate wearing this type.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency failure in %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
