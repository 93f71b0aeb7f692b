package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"clasp/internal/store"
	"clasp/internal/transport"
)

// listen: wait for one peer, answer its handshake, then chat.
func listenCmd() *cobra.Command {
	var (
		code string
		port int
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Wait for a peer and establish an encrypted channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := wire.Config.Load()
			if err != nil {
				return err
			}
			if code == "" {
				code = saved.Code
			}
			if code == "" {
				code, err = generateCode()
				if err != nil {
					return err
				}
			}
			if port == 0 {
				port = saved.Port
			}

			ln, err := transport.Listen(":" + strconv.Itoa(port))
			if err != nil {
				return err
			}
			actualPort := ln.Addr().(*net.TCPAddr).Port

			mdns, err := transport.Announce(code, actualPort)
			if err != nil {
				ln.Close()
				return err
			}
			defer mdns.Shutdown()

			// Remember the chosen code for next time.
			if err := wire.Config.Save(store.Settings{Code: code, Port: port}); err != nil {
				return err
			}

			fmt.Printf("Listening on port %d as %q.\n", actualPort, code)
			fmt.Printf("On the other device, run: clasp dial %s\n", code)

			link, err := transport.AcceptOne(ln)
			if err != nil {
				return err
			}
			fmt.Printf("Peer connected from %s.\n", link.RemoteAddr())

			return chat(cmd.Context(), link)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "peer code to announce (default: saved or random)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: saved or a free port)")
	return cmd
}

// generateCode returns a short random code name for mDNS announcement.
func generateCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "clasp-" + hex.EncodeToString(b), nil
}
