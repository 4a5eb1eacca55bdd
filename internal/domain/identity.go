package domain

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Identity is an opaque token naming a serial execution domain.
//
// Identities are minted once at domain creation, are immutable, and are
// compared by equality only. The zero value means "unknown domain" and
// never matches a minted identity.
//
// A typed UUID is used rather than a string label so that two domains
// can never collide by construction (no shared global names, no typos).
type Identity struct {
	id uuid.UUID
}

// NewIdentity mints a fresh domain identity.
//
// Uses UUIDv7 so identities sort by creation time, which is helpful when
// reading debug logs. Panics if UUID generation fails (should never
// happen in practice).
func NewIdentity() Identity {
	return Identity{id: uuid.Must(uuid.NewV7())}
}

// IsZero reports whether the identity is the unknown (zero) identity.
func (i Identity) IsZero() bool {
	return i.id == uuid.UUID{}
}

// String returns the hyphenated UUID form, for logging.
func (i Identity) String() string {
	if i.IsZero() {
		return "unknown"
	}
	return i.id.String()
}

// runToken marks a context as belonging to one specific task execution
// on one specific domain.
//
// The token is armed immediately before the loop invokes the task and
// disarmed immediately after the task returns. A context captured inside
// a task and used after the task completes therefore probes as Unknown
// rather than falsely claiming the domain.
type runToken struct {
	domain Identity
	armed  atomic.Bool
}

type runTokenKey struct{}

// withRunToken attaches a run token to ctx. Only the loop calls this.
func withRunToken(ctx context.Context, tok *runToken) context.Context {
	return context.WithValue(ctx, runTokenKey{}, tok)
}

// Current is the executor identity probe.
//
// It returns the identity of the serial domain the calling context is
// presently executing on, or (zero, false) if the context is not an
// actively running domain task. Safe to call from any goroutine, any
// number of times, with no side effects.
//
// Correctness of the affinity fast path rests on this function never
// returning a false positive; see the package documentation.
func Current(ctx context.Context) (Identity, bool) {
	tok, ok := ctx.Value(runTokenKey{}).(*runToken)
	if !ok {
		return Identity{}, false
	}
	if !tok.armed.Load() {
		return Identity{}, false
	}
	return tok.domain, true
}
