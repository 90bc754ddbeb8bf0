// Package session defines the tagged-union session variant that every
// reply and event carries for routing, and the registry the reply-channel
// dispatcher uses to fan messages out, grounded on the fan-out pattern in
// the feed-simulator's session Manager.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Kind distinguishes the two session variants the core ever routes to.
type Kind int

const (
	KindFix Kind = iota
	KindGenerator
)

func (k Kind) String() string {
	if k == KindGenerator {
		return "generator"
	}
	return "fix"
}

// Session is a non-owning reference to an externally owned client
// connection. The core never dials or accepts on its own; it only holds
// enough to route a reply back to the originator and to notice when that
// originator has gone away.
type Session struct {
	Kind Kind
	ID   uuid.UUID
}

// NewFix returns a Session routed to a FIX acceptor connection.
func NewFix(id uuid.UUID) Session { return Session{Kind: KindFix, ID: id} }

// NewGenerator returns a Session routed to the synthetic-flow generator.
func NewGenerator(id uuid.UUID) Session { return Session{Kind: KindGenerator, ID: id} }

// Deliver is the shape a registered transport hands to Registry.Bind: given
// an arbitrary reply payload, deliver it to this session's peer, or report
// that the peer is gone.
type Deliver func(payload any) error

// Registry tracks delivery callbacks for live sessions, keyed by id. The
// reply-channel dispatcher looks a session up here on every send; an absent
// entry means the session already terminated and the message is dropped.
type Registry struct {
	mu         sync.RWMutex
	deliverers map[uuid.UUID]Deliver
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{deliverers: make(map[uuid.UUID]Deliver)}
}

// Bind registers d as the delivery callback for id, replacing any prior
// binding.
func (r *Registry) Bind(id uuid.UUID, d Deliver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliverers[id] = d
}

// Unbind removes id's delivery callback, typically called once a
// SessionTerminatedEvent has been observed for it.
func (r *Registry) Unbind(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deliverers, id)
}

// Deliver routes payload to s, reporting ok=false if s has no live
// registration (already terminated, or never registered).
func (r *Registry) Deliver(s Session, payload any) (ok bool, err error) {
	r.mu.RLock()
	d, found := r.deliverers[s.ID]
	r.mu.RUnlock()
	if !found {
		return false, nil
	}
	return true, d(payload)
}
