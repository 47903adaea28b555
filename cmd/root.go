// Package cmd wires the command-line interface: `serve` runs the server,
// `join` connects to one.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatroom",
	Short: "A small encrypted TCP chatroom",
	Long: `A small multi-client text chat over TCP.

Run one process as the server and connect any number of clients to it.
Each connection gets its own symmetric key, generated by the server and
sent as the first bytes of the session; everything after it is sealed.

  chatroom serve               # run the server with its dashboard
  chatroom join <host>         # connect to a running server`,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
