// Package ui renders the terminal surfaces: the server dashboard and the
// client-side message lines. It only ever reads snapshots from the core.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/server"
)

const divider = "------------------------------------------------------------"

// FormatMessage renders one chat line the way both the dashboard and the
// client print it.
func FormatMessage(m chat.Message) string {
	if m.Kind == chat.KindSystem {
		return fmt.Sprintf("[%s] %s", m.Timestamp, color.Yellow.Sprintf("%s: %s", m.Sender, m.Content))
	}
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp, color.Cyan.Sprint(m.Sender), m.Content)
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[2J\033[H")
}

func printHeader(w io.Writer) {
	clearScreen(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, color.Bold.Sprint("            encrypted chatroom server"))
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w)
}

// RenderDashboard paints the full operator view from one status snapshot.
func RenderDashboard(w io.Writer, st server.Status) {
	printHeader(w)

	fmt.Fprintln(w, color.Bold.Sprint("server"))
	fmt.Fprintln(w, divider)
	state := "running"
	if !st.Running {
		state = "stopped"
	}
	fmt.Fprintf(w, "state: %s\n", state)
	fmt.Fprintf(w, "port: %d\n", st.Port)
	fmt.Fprintf(w, "uptime: %s\n", FormatUptime(st.Uptime))
	fmt.Fprintf(w, "messages: %d\n", len(st.History))
	fmt.Fprintf(w, "connected users: %d\n", len(st.Users))
	fmt.Fprintln(w)

	fmt.Fprintln(w, color.Bold.Sprint("connected users"))
	fmt.Fprintln(w, divider)
	printUsers(w, st.Users)
	fmt.Fprintln(w)

	fmt.Fprintln(w, color.Bold.Sprint("recent messages"))
	fmt.Fprintln(w, divider)
	recent := st.History
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	if len(recent) == 0 {
		fmt.Fprintln(w, "no messages yet")
	}
	for _, m := range recent {
		fmt.Fprintln(w, FormatMessage(m))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, color.Bold.Sprint("info"))
	fmt.Fprintln(w, divider)
	if len(st.Info) == 0 {
		fmt.Fprintln(w, "no info messages yet")
	}
	for _, line := range st.Info {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "/shutdown - stop the server")
	Prompt(w)
}

func printUsers(w io.Writer, users []string) {
	if len(users) == 0 {
		fmt.Fprintln(w, "no users connected")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"User", "ID"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, user := range users {
		table.Append([]string{user, strconv.Itoa(i + 1)})
	}
	table.Render()
}

// Welcome paints the client greeting after a successful handshake.
func Welcome(w io.Writer, username string) {
	clearScreen(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, color.Bold.Sprint("            encrypted chatroom"))
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "hello, %s! you are connected.\n", username)
	fmt.Fprintf(w, "type %q to leave the chat.\n", chat.LeaveCommand)
	fmt.Fprintln(w)
}

func Prompt(w io.Writer) {
	fmt.Fprint(w, "> ")
}

// FormatUptime renders a duration as H:MM:SS, matching the dashboard.
func FormatUptime(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
