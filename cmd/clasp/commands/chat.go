package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"clasp/internal/crypto"
	"clasp/internal/domain"
	"clasp/internal/transport"
)

// chat runs an encrypted line-oriented conversation over link. Both sides
// offer their key with a SYN: only SYN handling adopts a peer key, so a
// one-sided offer would leave the offering side unable to encrypt. Crossed
// offers converge: adoption is first-write-wins and completion is absorbing.
func chat(ctx context.Context, link *transport.Link) error {
	defer link.Close()

	svc, err := wire.NewChannel(link, func(plaintext string) {
		// Payloads are canonical JSON; chat sends plain strings.
		var line string
		if err := json.Unmarshal([]byte(plaintext), &line); err != nil {
			line = plaintext
		}
		fmt.Printf("peer> %s\n", line)
	})
	if err != nil {
		return err
	}
	fmt.Printf("Your key fingerprint: %s\n", crypto.Fingerprint(svc.Engine().PublicKey()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- svc.Run(ctx) }()

	if err := svc.Initiate(ctx); err != nil {
		return err
	}

	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			if err := svc.Send(ctx, sc.Text()); err != nil {
				if errors.Is(err, domain.ErrKeysNotExchanged) {
					fmt.Println("(handshake not finished yet, line dropped)")
					continue
				}
				fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			}
		}
		cancel() // stdin closed, wind down
	}()

	err = <-runErr
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
