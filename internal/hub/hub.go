package hub

import (
	"log/slog"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
)

// Hub appends messages to history and fans them out to every live
// session, pruning sessions whose send fails.
type Hub struct {
	registry *Registry
	log      *slog.Logger
}

func NewHub(registry *Registry, log *slog.Logger) *Hub {
	return &Hub{
		registry: registry,
		log:      log,
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Join registers the session and replays the full history to it, oldest
// first. A duplicate identity silently replaces the previous session
// (last-writer-wins). The replay happens under the registry lock so that
// no broadcast can slip between the replayed entries.
func (h *Hub) Join(s *Session) error {
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()

	h.registry.sessions[s.Identity()] = s
	for _, msg := range h.registry.history {
		if err := s.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// Broadcast records msg and delivers it to every currently registered
// session. Recipients whose send fails are removed, and one departure
// notice is emitted per removal. The notices go through the same delivery
// pass but never produce further notices, so a recipient failing during a
// departure broadcast is simply dropped.
func (h *Hub) Broadcast(msg chat.Message) {
	for _, identity := range h.deliver(msg) {
		h.deliver(chat.NewSystem(identity + " left"))
	}
}

// Depart removes the session and, only if it was actually registered,
// broadcasts its departure notice. Unknown or already-replaced sessions
// are a silent no-op.
func (h *Hub) Depart(identity string, s *Session) {
	h.registry.mu.Lock()
	removed := h.registry.remove(identity, s)
	h.registry.mu.Unlock()

	if removed {
		h.Broadcast(chat.NewSystem(identity + " left"))
	}
}

// deliver runs one append-and-fan-out pass under the registry lock and
// returns the identities pruned by send failures. Holding the lock across
// the sends serializes broadcasts, which is what gives every recipient
// the same global message order.
func (h *Hub) deliver(msg chat.Message) []string {
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()

	h.registry.appendHistory(msg)

	var failed []string
	for identity, s := range h.registry.sessions {
		if err := s.Send(msg); err != nil {
			h.log.Warn("dropping unreachable session", "identity", identity, "error", err)
			failed = append(failed, identity)
		}
	}
	for _, identity := range failed {
		h.registry.remove(identity, nil)
	}
	return failed
}
