package hub

import (
	"net"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/secure"
)

// Session is one authenticated client connection together with its cipher
// channel. It is owned by the Registry once registered; the identity is
// the registry key.
type Session struct {
	identity string
	conn     net.Conn
	channel  *secure.Channel
}

func NewSession(identity string, conn net.Conn, channel *secure.Channel) *Session {
	return &Session{
		identity: identity,
		conn:     conn,
		channel:  channel,
	}
}

func (s *Session) Identity() string {
	return s.identity
}

// Send seals msg with the session's channel and writes it as one frame.
// A failure here means the peer is gone; the caller prunes the session.
func (s *Session) Send(msg chat.Message) error {
	encoded, err := chat.Encode(msg)
	if err != nil {
		return err
	}
	sealed, err := s.channel.Seal(encoded)
	if err != nil {
		return err
	}
	return chat.WriteFrame(s.conn, sealed)
}

// Close tears down the underlying connection, unblocking its reader.
func (s *Session) Close() {
	_ = s.conn.Close()
}
