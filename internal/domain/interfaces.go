package domain

import "context"

// Cipher is the asymmetric capability the key exchange is built on. Keys and
// ciphertext are opaque text; the engine never inspects them. Decryption
// correctness is entirely the cipher's concern: a wrong key or corrupted
// ciphertext surfaces here, not in the engine.
type Cipher interface {
	GeneratePrivateKey() (string, error)
	PublicKey(privateKey string) (string, error)
	Encrypt(plaintext, publicKey string) (string, error)
	Decrypt(ciphertext, privateKey string) (string, error)
}

// ChannelService drives the handshake over a PeerLink and ferries encrypted
// application payloads once keys are exchanged.
type ChannelService interface {
	Initiate(ctx context.Context) error
	Send(ctx context.Context, payload any) error
	Run(ctx context.Context) error
}

// PeerLink is a bidirectional message channel to one peer. It makes no
// ordering, uniqueness or delivery guarantees; the handshake tolerates
// duplicated and dropped frames by construction.
type PeerLink interface {
	Send(ctx context.Context, f Frame) error
	Receive(ctx context.Context) (Frame, error)
	Close() error
}
