package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clasp/internal/transport"
)

// dial <code-or-addr>: connect to a listening peer and open the handshake.
func dialCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "dial <code-or-addr>",
		Short: "Connect to a listening peer and establish an encrypted channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			addr := target
			if !strings.Contains(target, ":") {
				// A bare code: find the peer via mDNS first.
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				found, err := transport.Locate(ctx, target)
				cancel()
				if err != nil {
					return err
				}
				addr = found
			}

			link, err := transport.Dial(cmd.Context(), addr)
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			fmt.Printf("Connected to %s.\n", link.RemoteAddr())

			return chat(cmd.Context(), link)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "mDNS discovery timeout")
	return cmd
}
