package chat

import (
	"errors"
	"sync"

	"chitty/internal/app/user"
)

var (
	// ErrInvalidLookup is returned when a registry call does not supply
	// exactly one selector.
	ErrInvalidLookup = errors.New("registry: exactly one of session id or name must be given")

	// ErrNotFound is returned when no user matches the selector.
	ErrNotFound = errors.New("registry: user not found")
)

// Registry is the process-wide directory of currently connected users,
// indexed by transport session id and by name. It holds no persistence;
// entries live exactly as long as their connections.
type Registry struct {
	mu        sync.RWMutex
	bySession map[string]*user.User
	byName    map[string]*user.User
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bySession: make(map[string]*user.User),
		byName:    make(map[string]*user.User),
	}
}

// Add inserts the user under both indices. A colliding session id or
// name silently overwrites the prior entry.
func (r *Registry) Add(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bySession[u.SessionID] = u
	r.byName[u.Name] = u
}

// Get looks a user up by exactly one selector. Supplying neither or both
// fails with ErrInvalidLookup; a missing user fails with ErrNotFound.
func (r *Registry) Get(sessionID, name string) (*user.User, error) {
	if (sessionID == "") == (name == "") {
		return nil, ErrInvalidLookup
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var u *user.User
	if sessionID != "" {
		u = r.bySession[sessionID]
	} else {
		u = r.byName[name]
	}

	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Remove deletes a user by exactly one selector, clearing both indices
// under one lock acquisition so no partial removal is ever visible.
// Removing an absent user is not an error. Each index entry is deleted
// only while it still points at the resolved user, so tearing down a
// stale session after a name-collision overwrite leaves the newer
// connection's entries intact.
func (r *Registry) Remove(sessionID, name string) error {
	if (sessionID == "") == (name == "") {
		return ErrInvalidLookup
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var u *user.User
	if sessionID != "" {
		u = r.bySession[sessionID]
	} else {
		u = r.byName[name]
	}

	if u == nil {
		return nil
	}

	if r.bySession[u.SessionID] == u {
		delete(r.bySession, u.SessionID)
	}
	if r.byName[u.Name] == u {
		delete(r.byName, u.Name)
	}
	return nil
}

// Count returns the number of connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bySession)
}
