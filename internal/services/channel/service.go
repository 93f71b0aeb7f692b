package channel

import (
	"context"
	"errors"
	"fmt"
	"log"

	"clasp/internal/domain"
	"clasp/internal/protocol/keyexchange"
)

// Service owns one side of an encrypted channel: a handshake engine plus the
// link it speaks over.
//
// Flow:
//   - Initiate offers our key with a SYN. Either or both sides may offer;
//     crossed offers converge because key adoption is first-write-wins and
//     completion is absorbing.
//   - Run pumps inbound frames: handshake envelopes go to the engine and any
//     returned intent is sent back out; data frames are decrypted and handed
//     to the deliver callback.
//   - Send encrypts a payload and transmits it as a data frame.
type Service struct {
	engine  *keyexchange.Engine
	link    domain.PeerLink
	deliver func(plaintext string)
	logger  *log.Logger
}

// New constructs a channel service. deliver receives decrypted payload text;
// nil drops payloads. logger is optional.
func New(engine *keyexchange.Engine, link domain.PeerLink, deliver func(string), logger *log.Logger) *Service {
	return &Service{
		engine:  engine,
		link:    link,
		deliver: deliver,
		logger:  logger,
	}
}

// Engine exposes the underlying handshake engine for state inspection.
func (s *Service) Engine() *keyexchange.Engine { return s.engine }

// Initiate sends the opening SYN carrying our public key. Callable again to
// re-offer after suspected loss; the peer treats duplicates as no-ops once it
// has adopted a key.
func (s *Service) Initiate(ctx context.Context) error {
	return s.link.Send(ctx, domain.HandshakeFrame(s.engine.Initiate()))
}

// Send encrypts payload and transmits it. Fails with
// domain.ErrKeysNotExchanged until the peer's key is known.
func (s *Service) Send(ctx context.Context, payload any) error {
	ct, err := s.engine.Encrypt(payload)
	if err != nil {
		return err
	}
	return s.link.Send(ctx, domain.DataFrame(ct))
}

// Run processes inbound frames until the context is done or the link fails.
// A payload that cannot be decrypted is logged and skipped; the channel
// itself stays up.
func (s *Service) Run(ctx context.Context) error {
	// Receive blocks without a deadline; closing the link is the only way to
	// unblock it once the context is cancelled.
	stop := context.AfterFunc(ctx, func() { _ = s.link.Close() })
	defer stop()

	for {
		frame, err := s.link.Receive(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("receive: %w", err)
		}

		switch {
		case frame.Handshake != nil:
			if intent := s.engine.HandleInbound(*frame.Handshake); intent != nil {
				// The intent's key is copied verbatim: the ACK stays keyless.
				if err := s.link.Send(ctx, domain.HandshakeFrame(intent.Message())); err != nil {
					return fmt.Errorf("send %s: %w", intent.Step, err)
				}
			}
		case frame.Data != "":
			plain, err := s.engine.Decrypt(frame.Data)
			if err != nil {
				if errors.Is(err, domain.ErrKeysNotExchanged) {
					s.logf("channel: data frame before key exchange, dropped")
				} else {
					s.logf("channel: decrypt failed: %v", err)
				}
				continue
			}
			if s.deliver != nil {
				s.deliver(plain)
			}
		default:
			// Empty frame; ignore.
		}
	}
}

func (s *Service) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}

// Compile-time assertion that Service implements domain.ChannelService.
var _ domain.ChannelService = (*Service)(nil)
