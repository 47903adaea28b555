package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/chat"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/client"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/server"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/ui"
)

var joinPort int

var joinCmd = &cobra.Command{
	Use:   "join <host>",
	Short: "Connect to a running chat server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJoin(args[0])
	},
}

func init() {
	joinCmd.Flags().IntVar(&joinPort, "port", server.DefaultPort, "TCP port the server listens on")
	rootCmd.AddCommand(joinCmd)
}

func runJoin(host string) error {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	})))

	stdin := bufio.NewScanner(os.Stdin)
	fmt.Print("username: ")
	if !stdin.Scan() {
		return fmt.Errorf("no username given")
	}
	username := strings.TrimSpace(stdin.Text())
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}

	c, err := client.Dial(net.JoinHostPort(host, strconv.Itoa(joinPort)))
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Authenticate(username); err != nil {
		return err
	}
	ui.Welcome(os.Stdout, username)

	go func() {
		for {
			msg, err := c.Receive()
			if err != nil {
				slog.Info("disconnected from server")
				return
			}
			fmt.Println(ui.FormatMessage(msg))
		}
	}()

	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		if line == chat.LeaveCommand {
			_ = c.Leave()
			return nil
		}
		if err := c.Send(line); err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}
	}
	return nil
}
