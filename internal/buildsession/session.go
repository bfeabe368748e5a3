// Package buildsession stamps every invocation of the vexc driver with a
// unique build-session id, threaded through logging and tracing so the
// pieces of one compile can be correlated
// after the fact.
//
// Grounded on the teacher's pkg/logging request-id stamping: New returns
// a fresh github.com/google/uuid string the same way the teacher mints a
// per-request id in its middleware.
package buildsession

import "github.com/google/uuid"

// ID is an opaque build-session identifier.
type ID string

// New mints a fresh build-session id.
func New() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string { return string(id) }
