package runtime

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"sync"

	"github.com/google/uuid"
)

type Set map[uuid.UUID]struct{}

// Session is the ephemeral binding between an authenticated identity
// and one live connection, plus the rooms that connection has joined.
type Session struct {
	Identity auth.Identity
	Sink     contract.EventSink
	Rooms    Set
}

// Registry is the process-wide map from user identity to current
// active connection. It is shared mutable state accessed from every
// connection's event-handling goroutine; every operation takes the
// lock so insert-or-replace, delete and lookups never interleave
// unsafely.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Bind registers the identity's connection, replacing any prior
// binding for that user: last socket wins. The new session starts with
// no joined rooms regardless of what the superseded connection had
// joined. Returns the superseded sink so the transport can react, nil
// when this is a fresh login.
func (r *Registry) Bind(identity auth.Identity, sink contract.EventSink) contract.EventSink {
	r.mu.Lock()
	defer r.mu.Unlock()

	var replaced contract.EventSink
	if prior, ok := r.sessions[identity.UserID]; ok {
		replaced = prior.Sink
	}
	r.sessions[identity.UserID] = &Session{
		Identity: identity,
		Sink:     sink,
		Rooms:    make(Set),
	}
	return replaced
}

func (r *Registry) Lookup(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	return session.Sink, true
}

// Unbind removes the user's binding, but only when sink is still the
// bound connection. A superseded connection terminating later must not
// evict the session of the login that replaced it.
func (r *Registry) Unbind(userID string, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok || session.Sink != sink {
		return false
	}
	delete(r.sessions, userID)
	return true
}

// JoinRoom admits the user's current connection to a conversation's
// room. Reports false when the user has no bound session.
func (r *Registry) JoinRoom(userID string, conversationID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok {
		return false
	}
	session.Rooms[conversationID] = struct{}{}
	return true
}

func (r *Registry) LeaveRoom(userID string, conversationID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[userID]; ok {
		delete(session.Rooms, conversationID)
	}
}

// IsJoined reports whether the user's current connection is joined to
// the room. This is the reachability test used by the notify decision.
func (r *Registry) IsJoined(userID string, conversationID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return false
	}
	_, joined := session.Rooms[conversationID]
	return joined
}

// SinksForRoom resolves every connection currently joined to the room,
// keyed by user id so the caller can address each recipient.
func (r *Registry) SinksForRoom(conversationID uuid.UUID) map[string]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make(map[string]contract.EventSink)
	for userID, session := range r.sessions {
		if _, joined := session.Rooms[conversationID]; joined {
			sinks[userID] = session.Sink
		}
	}
	return sinks
}

func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
