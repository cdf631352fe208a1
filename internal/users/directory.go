// Package users is the read-only account collaborator interface.
package users

import (
	"sync"

	"github.com/tokenforge/sage/internal/model"
)

// Directory resolves user IDs to their public profile. Read-only from this
// subsystem's perspective.
type Directory interface {
	GetUser(id string) (model.User, bool)
}

// InMemory is a Directory backed by a map, used standalone and in tests.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewInMemory creates an empty directory.
func NewInMemory() *InMemory {
	return &InMemory{users: make(map[string]model.User)}
}

// Add registers a user profile.
func (d *InMemory) Add(u model.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// GetUser implements Directory.
func (d *InMemory) GetUser(id string) (model.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	return u, ok
}
