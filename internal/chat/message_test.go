package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := require.New(t)

	m := Message{Timestamp: "12:30:00", Sender: "alice", Content: "hi", Kind: KindChat}
	data, err := Encode(m)
	req.NoError(err)

	decoded, err := Decode(data)
	req.NoError(err)
	req.Equal(m, decoded)
}

func TestDecodeFieldOrderIndependent(t *testing.T) {
	req := require.New(t)

	m, err := Decode([]byte(`{"msg_type":"message","content":"oi","timestamp":"01:02:03","sender":"bob"}`))
	req.NoError(err)
	req.Equal(Message{Timestamp: "01:02:03", Sender: "bob", Content: "oi", Kind: KindChat}, m)
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	req := require.New(t)

	cases := []string{
		`{"sender":"alice","content":"hi","msg_type":"message"}`,
		`{"timestamp":"12:00:00","content":"hi","msg_type":"message"}`,
		`{"timestamp":"12:00:00","sender":"alice","msg_type":"message"}`,
		`{"timestamp":"12:00:00","sender":"alice","content":"hi"}`,
	}
	for _, payload := range cases {
		_, err := Decode([]byte(payload))
		req.ErrorIs(err, ErrMalformedMessage, payload)
	}
}

func TestDecodeRejectsNonObjectPayloads(t *testing.T) {
	req := require.New(t)

	for _, payload := range []string{``, `not json`, `[1,2,3]`, `"string"`} {
		_, err := Decode([]byte(payload))
		req.ErrorIs(err, ErrMalformedMessage, payload)
	}
}

func TestSystemNotice(t *testing.T) {
	req := require.New(t)

	m := NewSystem("alice joined")
	req.Equal(SystemSender, m.Sender)
	req.Equal(KindSystem, m.Kind)
	req.NotEmpty(m.Timestamp)
}
