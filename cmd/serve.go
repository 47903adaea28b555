package cmd

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/server"
	"github.com/rodrigofernandesribeiro/an-encrypted-chatroom/internal/ui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server with its operator dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", server.DefaultPort, "TCP port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	// The dashboard owns stdout; logs go to stderr.
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	srv := server.New(servePort, logger)
	if err := srv.Start(); err != nil {
		return err
	}

	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	commands := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			commands <- strings.TrimSpace(scanner.Text())
		}
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	ui.RenderDashboard(os.Stdout, srv.Status())

	for {
		select {
		case err := <-served:
			// Accept failure while running is fatal to the process.
			srv.Shutdown()
			return err
		case <-ticker.C:
			ui.RenderDashboard(os.Stdout, srv.Status())
		case command := <-commands:
			if command == "/shutdown" {
				srv.Shutdown()
				return <-served
			}
			ui.Prompt(os.Stdout)
		}
	}
}
