package hub

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/secure"
)

// pipeSession wires a Session to an in-memory connection and drains the
// peer end into a channel of decoded messages.
func pipeSession(t *testing.T, identity string) (*Session, <-chan chat.Message) {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() {
		_ = serverSide.Close()
		_ = clientSide.Close()
	})

	channel, err := secure.Generate()
	require.NoError(t, err)
	peer, err := secure.FromKey(channel.Key())
	require.NoError(t, err)

	received := make(chan chat.Message, HistoryLimit+16)
	go func() {
		defer close(received)
		reader := bufio.NewReader(clientSide)
		for {
			frame, err := chat.ReadFrame(reader)
			if err != nil {
				return
			}
			plaintext, err := peer.Open(frame)
			if err != nil {
				return
			}
			msg, err := chat.Decode(plaintext)
			if err != nil {
				return
			}
			received <- msg
		}
	}()

	return NewSession(identity, serverSide, channel), received
}

func collect(t *testing.T, ch <-chan chat.Message, n int) []chat.Message {
	t.Helper()
	out := make([]chat.Message, 0, n)
	for len(out) < n {
		select {
		case msg, ok := <-ch:
			if !ok {
				t.Fatalf("stream closed after %d of %d messages", len(out), n)
			}
			out = append(out, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d messages", len(out), n)
		}
	}
	return out
}

func newTestHub() *Hub {
	return NewHub(NewRegistry(), slog.New(slog.DiscardHandler))
}

func TestBroadcastPreservesOrderAcrossRecipients(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	alice, aliceRx := pipeSession(t, "alice")
	bob, bobRx := pipeSession(t, "bob")
	req.NoError(h.Join(alice))
	req.NoError(h.Join(bob))

	const n = 20
	for i := 0; i < n; i++ {
		h.Broadcast(chat.New("alice", fmt.Sprintf("msg-%02d", i)))
	}

	for _, rx := range []<-chan chat.Message{aliceRx, bobRx} {
		got := collect(t, rx, n)
		for i, msg := range got {
			req.Equal(fmt.Sprintf("msg-%02d", i), msg.Content)
			req.Equal("alice", msg.Sender)
			req.Equal(chat.KindChat, msg.Kind)
		}
	}
}

func TestJoinReplaysBoundedHistoryOldestFirst(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	for i := 0; i < 150; i++ {
		h.Broadcast(chat.New("alice", fmt.Sprintf("msg-%03d", i)))
	}
	req.Len(h.Registry().History(), HistoryLimit)

	late, lateRx := pipeSession(t, "late")
	req.NoError(h.Join(late))

	got := collect(t, lateRx, HistoryLimit)
	req.Equal("msg-050", got[0].Content)
	req.Equal("msg-149", got[HistoryLimit-1].Content)
}

func TestBroadcastPrunesFailedRecipientAndNotifiesOthers(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	alice, aliceRx := pipeSession(t, "alice")
	bob, _ := pipeSession(t, "bob")
	req.NoError(h.Join(alice))
	req.NoError(h.Join(bob))

	// Kill bob's connection so the next send to him fails.
	bob.Close()

	h.Broadcast(chat.New("alice", "anyone there?"))

	got := collect(t, aliceRx, 2)
	req.Equal("anyone there?", got[0].Content)
	req.Equal("bob left", got[1].Content)
	req.Equal(chat.KindSystem, got[1].Kind)

	req.Equal([]string{"alice"}, h.Registry().Identities())
}

func TestFailedDepartureNoticeDoesNotCascade(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	alice, _ := pipeSession(t, "alice")
	bob, _ := pipeSession(t, "bob")
	req.NoError(h.Join(alice))
	req.NoError(h.Join(bob))

	// Both peers fail; the departure notices for each prune the other
	// without emitting further notices or recursing.
	alice.Close()
	bob.Close()
	h.Broadcast(chat.New("alice", "going dark"))

	req.Equal(0, h.Registry().Count())
	history := h.Registry().History()
	req.Len(history, 3)
	req.Equal("going dark", history[0].Content)
}

func TestDepartUnknownIdentityIsSilentNoOp(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	alice, aliceRx := pipeSession(t, "alice")
	req.NoError(h.Join(alice))

	h.Depart("ghost", nil)

	req.Empty(h.Registry().History(), "no spurious departure notice")
	select {
	case msg := <-aliceRx:
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDepartToleratesIdentityReplacement(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	first, _ := pipeSession(t, "alice")
	second, _ := pipeSession(t, "alice")
	req.NoError(h.Join(first))
	req.NoError(h.Join(second))
	req.Equal(1, h.Registry().Count(), "last writer wins")

	// The shadowed session's teardown must not evict its replacement.
	h.Depart("alice", first)
	req.Equal([]string{"alice"}, h.Registry().Identities())
	req.Empty(h.Registry().History())

	h.Depart("alice", second)
	req.Equal(0, h.Registry().Count())
	history := h.Registry().History()
	req.Len(history, 1)
	req.Equal("alice left", history[0].Content)
}

func TestAddInfoKeepsOnlyRecentLines(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	for i := 0; i < 9; i++ {
		r.AddInfo(fmt.Sprintf("line-%d", i))
	}
	lines := r.InfoLines()
	req.Len(lines, InfoLimit)
	req.Equal("line-4", lines[0])
	req.Equal("line-8", lines[InfoLimit-1])
}
