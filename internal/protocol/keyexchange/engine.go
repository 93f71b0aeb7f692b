package keyexchange

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"clasp/internal/domain"
)

// OutboundIntent asks the owning application to send the given handshake step.
// PublicKey is the key to attach, empty when the step is sent bare. The engine
// only signals intent; constructing and transmitting the message is the
// caller's job.
type OutboundIntent struct {
	Step      domain.HandshakeStep
	PublicKey string
}

// Message materializes the intent as a wire envelope.
func (i OutboundIntent) Message() domain.HandshakeMessage {
	return domain.HandshakeMessage{Step: i.Step, PublicKey: i.PublicKey}
}

// transition describes the effect of one inbound step. Keeping the table as
// data makes the SYN/SYNACK asymmetry auditable: adoptKey is true only for
// SYN, and only the SYNACK reply carries our key.
type transition struct {
	next     domain.HandshakeStep // advisory step after handling
	adoptKey bool                 // record the sender's key, first write wins
	emit     domain.HandshakeStep // outbound step to request, StepNone for none
	emitKey  bool                 // attach our public key to the emission
	complete bool                 // mark the handshake complete
}

var transitions = map[domain.HandshakeStep]transition{
	domain.StepSYN:    {next: domain.StepACK, adoptKey: true, emit: domain.StepSYNACK, emitKey: true},
	domain.StepSYNACK: {emit: domain.StepACK, complete: true},
	domain.StepACK:    {complete: true},
}

// Engine is the handshake state machine for one channel. It is safe for
// concurrent use; all state lives behind a single mutex.
type Engine struct {
	cipher domain.Cipher
	logger *log.Logger // optional progress sink

	privateKey string // never leaves the engine
	publicKey  string

	mu              sync.Mutex
	remotePublicKey string // "" until adopted or recorded
	complete        bool   // monotonic, never resets
	step            domain.HandshakeStep
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches an advisory progress sink. Purely observational.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New generates a fresh keypair via the cipher and returns an engine in its
// initial state. The keypair is fixed for the engine's lifetime; there is no
// renegotiation or reset.
func New(cipher domain.Cipher, opts ...Option) (*Engine, error) {
	priv, err := cipher.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	pub, err := cipher.PublicKey(priv)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	e := &Engine{
		cipher:     cipher,
		privateKey: priv,
		publicKey:  pub,
		step:       domain.StepNone,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Initiate builds the opening SYN carrying our public key. It mutates nothing
// and may be called any number of times; whether re-sending is sensible is the
// caller's call.
func (e *Engine) Initiate() domain.HandshakeMessage {
	return e.BuildMessage(domain.StepSYN)
}

// BuildMessage constructs an envelope for step, always attaching our public
// key. Every outbound message built this way carries the key regardless of
// step.
func (e *Engine) BuildMessage(step domain.HandshakeStep) domain.HandshakeMessage {
	return domain.HandshakeMessage{Step: step, PublicKey: e.publicKey}
}

// HandleInbound applies one inbound handshake envelope and returns the
// outbound intent it produces, or nil when nothing should be sent. Once the
// handshake is complete every further message is a no-op.
func (e *Engine) HandleInbound(msg domain.HandshakeMessage) *OutboundIntent {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.complete {
		e.logf("handshake already complete, ignoring %s", msg.Step)
		return nil
	}

	t, ok := transitions[msg.Step]
	if !ok {
		// StepNone or anything normalized to it: ignore silently.
		return nil
	}

	e.logf("handshake: received %s", msg.Step)

	if t.next != domain.StepNone {
		e.step = t.next
	}
	if t.adoptKey && e.remotePublicKey == "" && msg.HasPublicKey() {
		e.remotePublicKey = msg.PublicKey
		e.logf("handshake: adopted peer public key")
	}
	if t.complete {
		e.complete = true
		e.logf("handshake: complete")
	}

	if t.emit == domain.StepNone {
		return nil
	}
	intent := &OutboundIntent{Step: t.emit}
	if t.emitKey {
		intent.PublicKey = e.publicKey
	}
	return intent
}

// RecordRemotePublicKey overwrites the remote key unconditionally. This is a
// direct escape hatch, distinct from the first-write-wins adoption during SYN
// handling.
func (e *Engine) RecordRemotePublicKey(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remotePublicKey = key
}

// PublicKey returns our public key.
func (e *Engine) PublicKey() string { return e.publicKey }

// RemotePublicKey returns the adopted peer key, if any.
func (e *Engine) RemotePublicKey() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remotePublicKey, e.remotePublicKey != ""
}

// Complete reports whether the handshake has finished. Completion does not
// imply the remote key is known; the encrypt/decrypt gate is independent.
func (e *Engine) Complete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complete
}

// Step returns the advisory progress marker.
func (e *Engine) Step() domain.HandshakeStep {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// Encrypt serializes payload to canonical JSON text and encrypts it under the
// peer's public key. Fails with domain.ErrKeysNotExchanged until a remote key
// is known, and with domain.ErrEncoding when the payload cannot be serialized
// to text.
func (e *Engine) Encrypt(payload any) (string, error) {
	e.mu.Lock()
	remote := e.remotePublicKey
	e.mu.Unlock()
	if remote == "" {
		return "", domain.ErrKeysNotExchanged
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	return e.cipher.Encrypt(string(raw), remote)
}

// Decrypt decrypts ciphertext under our private key. Gated on the remote key
// being known, same as Encrypt; whether the result is meaningful is entirely
// the cipher's concern.
func (e *Engine) Decrypt(ciphertext string) (string, error) {
	e.mu.Lock()
	remote := e.remotePublicKey
	e.mu.Unlock()
	if remote == "" {
		return "", domain.ErrKeysNotExchanged
	}
	return e.cipher.Decrypt(ciphertext, e.privateKey)
}

func (e *Engine) logf(format string, v ...any) {
	if e.logger != nil {
		e.logger.Printf(format, v...)
	}
}
