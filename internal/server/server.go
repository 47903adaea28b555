// Package server runs the accept loop and drives each connection through
// the handshake and relay state machine.
package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/hub"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/secure"
)

// DefaultPort is the TCP port the server listens on unless overridden.
const DefaultPort = 10000

// Server accepts connections and hands each one to its own goroutine.
type Server struct {
	port      int
	listener  net.Listener
	hub       *hub.Hub
	log       *slog.Logger
	running   atomic.Bool
	startTime time.Time
}

// Status is a read-only snapshot of server state for presentation.
type Status struct {
	Port    int
	Uptime  time.Duration
	Users   []string
	History []chat.Message
	Info    []string
	Running bool
}

func New(port int, log *slog.Logger) *Server {
	registry := hub.NewRegistry()
	return &Server{
		port: port,
		hub:  hub.NewHub(registry, log),
		log:  log,
	}
}

// Start binds the listening socket and marks the server running.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	s.listener = listener
	s.startTime = time.Now()
	s.running.Store(true)
	s.log.Info("server listening", "addr", listener.Addr().String())
	return nil
}

// Serve runs the accept loop until shutdown. An accept failure while the
// server is still marked running is fatal and returned to the operator;
// the same failure during shutdown is expected teardown noise.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

// Shutdown clears the running flag and closes the listening socket plus
// every live session, unblocking all accept and read calls. Session
// goroutines then drain on their own read failures.
func (s *Server) Shutdown() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.log.Info("server shutting down")
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.hub.Registry().CloseAll()
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Status snapshots the state the dashboard renders. All copies are taken
// under the registry lock and safe to use afterwards.
func (s *Server) Status() Status {
	registry := s.hub.Registry()
	return Status{
		Port:    s.port,
		Uptime:  time.Since(s.startTime),
		Users:   registry.Identities(),
		History: registry.History(),
		Info:    registry.InfoLines(),
		Running: s.running.Load(),
	}
}

// handleConn drives one connection: send the fresh key, read the sealed
// identity claim, register and replay, then relay messages until the
// session ends.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	channel, err := secure.Generate()
	if err != nil {
		s.log.Error("failed to create cipher channel", "error", err)
		return
	}
	// The key crosses the wire in the clear, first thing on the raw
	// stream. Everything after it is sealed.
	if _, err := conn.Write(channel.Key()); err != nil {
		return
	}

	reader := bufio.NewReader(conn)
	identity, err := s.authenticate(reader, channel)
	if err != nil {
		s.log.Warn("handshake failed", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	sess := hub.NewSession(identity, conn, channel)
	if err := s.hub.Join(sess); err != nil {
		s.log.Warn("history replay failed", "identity", identity, "error", err)
		s.hub.Depart(identity, sess)
		return
	}
	defer s.hub.Depart(identity, sess)

	s.hub.Registry().AddInfo(fmt.Sprintf("%s connected from %s", identity, conn.RemoteAddr()))
	s.hub.Broadcast(chat.NewSystem(identity + " joined"))

	for {
		frame, err := chat.ReadFrame(reader)
		if err != nil {
			return
		}
		plaintext, err := channel.Open(frame)
		if err != nil {
			s.log.Warn("dropping session after undecryptable payload", "identity", identity, "error", err)
			return
		}
		msg, err := chat.Decode(plaintext)
		if err != nil {
			s.log.Warn("dropping session after malformed message", "identity", identity, "error", err)
			return
		}
		if msg.Content == chat.LeaveCommand {
			return
		}
		s.hub.Broadcast(msg)
	}
}

// authenticate reads and opens the identity claim. Stream end, a
// wrongly-keyed payload, or an empty name all fail the handshake; the
// connection is discarded without registration or broadcast.
func (s *Server) authenticate(reader *bufio.Reader, channel *secure.Channel) (string, error) {
	frame, err := chat.ReadFrame(reader)
	if err != nil {
		return "", fmt.Errorf("read identity claim: %w", err)
	}
	claim, err := channel.Open(frame)
	if err != nil {
		return "", fmt.Errorf("open identity claim: %w", err)
	}
	identity := strings.TrimSpace(string(claim))
	if identity == "" {
		return "", fmt.Errorf("empty identity claim")
	}
	return identity, nil
}
