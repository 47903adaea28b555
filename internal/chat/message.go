// Package chat defines the message model shared by server and client and
// its wire codec.
package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried in the msg_type field.
const (
	KindChat   = "message"
	KindSystem = "system"
)

// SystemSender is the sender of server-generated notices.
const SystemSender = "system"

// LeaveCommand is the literal content a client sends to depart voluntarily.
// It is never broadcast.
const LeaveCommand = "/leave"

// ErrMalformedMessage reports a payload that does not decode to a Message.
var ErrMalformedMessage = fmt.Errorf("malformed chat message")

// Message is one chat entry. Immutable once constructed.
type Message struct {
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Kind      string `json:"msg_type"`
}

// New builds a chat message stamped with the current wall-clock time.
func New(sender, content string) Message {
	return Message{
		Timestamp: time.Now().Format("15:04:05"),
		Sender:    sender,
		Content:   content,
		Kind:      KindChat,
	}
}

// NewSystem builds a server-generated notice (join/leave).
func NewSystem(content string) Message {
	m := New(SystemSender, content)
	m.Kind = KindSystem
	return m
}

// Encode serializes m to its canonical wire form.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// Decode parses a wire payload back into a Message. Field order is
// irrelevant; all four fields must be present.
func Decode(data []byte) (Message, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	for _, field := range []string{"timestamp", "sender", "content", "msg_type"} {
		if _, ok := raw[field]; !ok {
			return Message{}, fmt.Errorf("%w: missing field %q", ErrMalformedMessage, field)
		}
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return m, nil
}
