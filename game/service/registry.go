package service

import (
	"sync"

	"seabattle/game/session"
)

type binding struct {
	sess *session.GameSession
	role session.Role
}

// ConnectionRegistry maps an opaque connection handle to the session and
// role it is bound to. It is the only structure the transport callbacks
// touch directly. Its lock is distinct from every session lock and is held
// only for map operations, never across a send.
type ConnectionRegistry struct {
	mu      sync.Mutex
	entries map[session.Conn]binding
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{entries: make(map[session.Conn]binding)}
}

// Bind associates a connection with a session and role. A connection is
// bound only after a successful CREATE or JOIN, so an unbound connection is
// always fresh and may retry.
func (r *ConnectionRegistry) Bind(conn session.Conn, sess *session.GameSession, role session.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[conn] = binding{sess: sess, role: role}
}

// Lookup resolves a connection to its session and role.
func (r *ConnectionRegistry) Lookup(conn session.Conn) (*session.GameSession, session.Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.entries[conn]
	return b.sess, b.role, ok
}

// Unbind removes the connection's entry and returns what it was bound to.
// Calling it twice is harmless; the second call finds nothing.
func (r *ConnectionRegistry) Unbind(conn session.Conn) (*session.GameSession, session.Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.entries[conn]
	if ok {
		delete(r.entries, conn)
	}
	return b.sess, b.role, ok
}

// UnbindSession removes every entry bound to the given session. The expiry
// sweep uses it so no connection can reach a session that the manager no
// longer knows about.
func (r *ConnectionRegistry) UnbindSession(sess *session.GameSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn, b := range r.entries {
		if b.sess == sess {
			delete(r.entries, conn)
		}
	}
}

// Len returns the number of bound connections.
func (r *ConnectionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
