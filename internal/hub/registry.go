// Package hub holds the server's shared state: the registry of live
// sessions plus the bounded message and info buffers, and the broadcast
// engine that fans messages out to every session.
package hub

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
)

const (
	// HistoryLimit bounds the replayable message history.
	HistoryLimit = 100
	// InfoLimit bounds the operator info lines.
	InfoLimit = 5
)

// Registry is the single mutual-exclusion domain of the server. The
// sessions map, the history buffer, and the info buffer are only touched
// under mu, by the connection goroutines and the dashboard alike.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	history  []chat.Message
	info     []string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// remove deletes identity from the registry if it is still mapped to s.
// The pointer comparison tolerates the replacement race: when a second
// connection claims the same identity the first one is shadowed, and its
// teardown must not evict the replacement. Caller holds mu.
func (r *Registry) remove(identity string, s *Session) bool {
	current, ok := r.sessions[identity]
	if !ok {
		return false
	}
	if s != nil && current != s {
		return false
	}
	delete(r.sessions, identity)
	current.Close()
	return true
}

// appendHistory records msg, evicting the oldest entry past the limit.
// Caller holds mu.
func (r *Registry) appendHistory(msg chat.Message) {
	r.history = append(r.history, msg)
	if len(r.history) > HistoryLimit {
		r.history = r.history[1:]
	}
}

// CloseAll tears down every live session without departure notices, as
// part of process shutdown. Closing the connections unblocks the per
// session readers; clearing the map makes their cleanup a no-op.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for identity, s := range r.sessions {
		s.Close()
		delete(r.sessions, identity)
	}
}

// AddInfo appends an operator info line, keeping only the most recent few.
func (r *Registry) AddInfo(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = append(r.info, line)
	if len(r.info) > InfoLimit {
		r.info = r.info[1:]
	}
}

// Identities returns the connected identities, sorted for stable display.
func (r *Registry) Identities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := lo.Keys(r.sessions)
	sort.Strings(ids)
	return ids
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// History returns a read-only snapshot of the message history.
func (r *Registry) History() []chat.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]chat.Message, len(r.history))
	copy(out, r.history)
	return out
}

// InfoLines returns a read-only snapshot of the operator info lines.
func (r *Registry) InfoLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.info))
	copy(out, r.info)
	return out
}
