// Package sessions tracks which senders have completed the Connect handshake.
package sessions

import (
	"encoding/hex"
	"sync"

	"github.com/dmitrijs2005/matthias/internal/common"
)

// Session is one connected sender.
type Session struct {
	SenderID string
	Author   string
}

// Registry maps sender ids to sessions. The secret handed out on Connect is
// generated once per registry and never changes.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	secret   []byte
}

// NewRegistry creates a registry with a fresh random secret of secretSize bytes.
func NewRegistry(secretSize int) *Registry {
	return &Registry{
		sessions: make(map[string]Session),
		secret:   common.GenerateRandByteArray(secretSize),
	}
}

// Connect registers senderID and returns the hex-encoded session secret.
// Reconnecting replaces the stored author.
func (r *Registry) Connect(senderID, author string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[senderID] = Session{SenderID: senderID, Author: author}
	return hex.EncodeToString(r.secret)
}

// Disconnect forgets senderID. It reports whether the sender was connected.
func (r *Registry) Disconnect(senderID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[senderID]
	delete(r.sessions, senderID)
	return ok
}

func (r *Registry) Lookup(senderID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[senderID]
	return s, ok
}

// Count returns the number of connected senders.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
