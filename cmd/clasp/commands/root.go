package commands

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clasp/internal/app"
)

var (
	home    string
	verbose bool
	wire    *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "clasp",
		Short: "Encrypted peer channels over a three-step key handshake",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".clasp")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			logger := log.New(io.Discard, "", 0)
			if verbose {
				logger = log.New(os.Stderr, "clasp: ", log.LstdFlags)
			}
			wire = app.NewWire(app.Config{Home: home, Logger: logger})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.clasp)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log handshake progress to stderr")

	root.AddCommand(listenCmd(), dialCmd())
	return root.Execute()
}
