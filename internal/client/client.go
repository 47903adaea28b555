// Package client implements the connecting side of the chat protocol:
// receive the session key in the clear, claim an identity, then exchange
// sealed messages.
package client

import (
	"bufio"
	"fmt"
	"io"
	"net"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/secure"
)

// Client is one connection to a chat server.
type Client struct {
	conn     net.Conn
	reader   *bufio.Reader
	channel  *secure.Channel
	username string
}

// Dial connects to addr and completes the key exchange: the server's
// first bytes are the raw symmetric key for this session.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	key := make([]byte, secure.KeySize)
	if _, err := io.ReadFull(conn, key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("receive session key: %w", err)
	}
	channel, err := secure.FromKey(key)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		channel: channel,
	}, nil
}

// Authenticate claims username as this connection's identity. The server
// replays the room history right after, readable via Receive.
func (c *Client) Authenticate(username string) error {
	sealed, err := c.channel.Seal([]byte(username))
	if err != nil {
		return err
	}
	if err := chat.WriteFrame(c.conn, sealed); err != nil {
		return fmt.Errorf("send identity claim: %w", err)
	}
	c.username = username
	return nil
}

// Receive blocks for the next message from the server.
func (c *Client) Receive() (chat.Message, error) {
	frame, err := chat.ReadFrame(c.reader)
	if err != nil {
		return chat.Message{}, err
	}
	plaintext, err := c.channel.Open(frame)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Decode(plaintext)
}

// Send broadcasts a chat line under the authenticated identity.
func (c *Client) Send(content string) error {
	encoded, err := chat.Encode(chat.New(c.username, content))
	if err != nil {
		return err
	}
	sealed, err := c.channel.Seal(encoded)
	if err != nil {
		return err
	}
	return chat.WriteFrame(c.conn, sealed)
}

// Leave announces voluntary departure. The server drops the session
// without broadcasting the command itself.
func (c *Client) Leave() error {
	return c.Send(chat.LeaveCommand)
}

func (c *Client) Username() string {
	return c.username
}

func (c *Client) Close() error {
	return c.conn.Close()
}
