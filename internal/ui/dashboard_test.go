package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/server"
)

func TestFormatUptime(t *testing.T) {
	req := require.New(t)

	req.Equal("0:00:00", FormatUptime(0))
	req.Equal("0:01:05", FormatUptime(65*time.Second))
	req.Equal("3:02:07", FormatUptime(3*time.Hour+2*time.Minute+7*time.Second))
}

func TestFormatMessageContainsSenderAndContent(t *testing.T) {
	req := require.New(t)

	line := FormatMessage(chat.Message{Timestamp: "10:00:00", Sender: "alice", Content: "hi", Kind: chat.KindChat})
	req.Contains(line, "[10:00:00]")
	req.Contains(line, "alice")
	req.Contains(line, "hi")

	line = FormatMessage(chat.NewSystem("alice joined"))
	req.Contains(line, "system")
	req.Contains(line, "alice joined")
}

func TestRenderDashboardSections(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	RenderDashboard(&buf, server.Status{
		Port:    10000,
		Uptime:  42 * time.Second,
		Users:   []string{"alice", "bob"},
		History: []chat.Message{chat.New("alice", "hi")},
		Info:    []string{"alice connected from 127.0.0.1:5555"},
		Running: true,
	})
	out := buf.String()

	req.Contains(out, "port: 10000")
	req.Contains(out, "uptime: 0:00:42")
	req.Contains(out, "state: running")
	req.Contains(out, "alice")
	req.Contains(out, "bob")
	req.Contains(out, "alice connected from 127.0.0.1:5555")
	req.Contains(out, "/shutdown")
}

func TestRenderDashboardEmptyState(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	RenderDashboard(&buf, server.Status{Port: 10000, Running: true})
	out := buf.String()

	req.Contains(out, "no users connected")
	req.Contains(out, "no messages yet")
	req.Contains(out, "no info messages yet")
}
