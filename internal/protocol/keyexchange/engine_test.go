package keyexchange_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"clasp/internal/crypto"
	"clasp/internal/domain"
	"clasp/internal/protocol/keyexchange"
)

// fakeCipher is a deterministic stand-in for the asymmetric capability. It
// performs no real cryptography; "encryption" tags the plaintext with the
// recipient key so decryption can check it was addressed correctly.
type fakeCipher struct{ seq int }

func (c *fakeCipher) GeneratePrivateKey() (string, error) {
	c.seq++
	return fmt.Sprintf("priv-%d", c.seq), nil
}

func (c *fakeCipher) PublicKey(privateKey string) (string, error) {
	return "pub:" + privateKey, nil
}

func (c *fakeCipher) Encrypt(plaintext, publicKey string) (string, error) {
	return publicKey + "|" + plaintext, nil
}

func (c *fakeCipher) Decrypt(ciphertext, privateKey string) (string, error) {
	prefix := "pub:" + privateKey + "|"
	if !strings.HasPrefix(ciphertext, prefix) {
		return "", fmt.Errorf("ciphertext not addressed to %s", privateKey)
	}
	return strings.TrimPrefix(ciphertext, prefix), nil
}

func newEngine(t *testing.T, c domain.Cipher) *keyexchange.Engine {
	t.Helper()
	e, err := keyexchange.New(c)
	if err != nil {
		t.Fatalf("keyexchange.New: %v", err)
	}
	return e
}

func TestInitiateIsPureAndCarriesKey(t *testing.T) {
	e := newEngine(t, &fakeCipher{})

	first := e.Initiate()
	second := e.Initiate()

	if first.Step != domain.StepSYN {
		t.Fatalf("want SYN, got %v", first.Step)
	}
	if first.PublicKey != e.PublicKey() {
		t.Fatalf("SYN must carry the local public key, got %q", first.PublicKey)
	}
	if first != second {
		t.Fatalf("Initiate must be repeatable: %+v vs %+v", first, second)
	}
	if e.Complete() || e.Step() != domain.StepNone {
		t.Fatal("Initiate must not mutate engine state")
	}
	if _, ok := e.RemotePublicKey(); ok {
		t.Fatal("Initiate must not set a remote key")
	}
}

func TestBuildMessageAlwaysAttachesKey(t *testing.T) {
	e := newEngine(t, &fakeCipher{})
	for _, step := range []domain.HandshakeStep{domain.StepSYN, domain.StepSYNACK, domain.StepACK, domain.StepNone} {
		msg := e.BuildMessage(step)
		if msg.Step != step || msg.PublicKey != e.PublicKey() {
			t.Fatalf("BuildMessage(%v) = %+v, want step %v with local key", step, msg, step)
		}
	}
}

func TestSynAdoptsKeyAndRequestsSynAck(t *testing.T) {
	c := &fakeCipher{}
	a := newEngine(t, c)
	b := newEngine(t, c)

	intent := b.HandleInbound(a.Initiate())

	if intent == nil {
		t.Fatal("SYN must produce an outbound intent")
	}
	if intent.Step != domain.StepSYNACK || intent.PublicKey != b.PublicKey() {
		t.Fatalf("want SYNACK with local key, got %+v", intent)
	}
	if remote, ok := b.RemotePublicKey(); !ok || remote != a.PublicKey() {
		t.Fatalf("want adopted key %q, got %q (ok=%v)", a.PublicKey(), remote, ok)
	}
	if b.Step() != domain.StepACK {
		t.Fatalf("advisory step after SYN: want ACK, got %v", b.Step())
	}
	if b.Complete() {
		t.Fatal("SYN alone must not complete the handshake")
	}
}

func TestSynAckRequestsBareAckAndCompletes(t *testing.T) {
	c := &fakeCipher{}
	a := newEngine(t, c)
	b := newEngine(t, c)

	synack := b.HandleInbound(a.Initiate()).Message()
	intent := a.HandleInbound(synack)

	if intent == nil || intent.Step != domain.StepACK {
		t.Fatalf("want ACK intent, got %+v", intent)
	}
	if intent.PublicKey != "" {
		t.Fatalf("the ACK intent must carry no key, got %q", intent.PublicKey)
	}
	if !a.Complete() {
		t.Fatal("SYNACK must complete the handshake")
	}
	// Intentional asymmetry: the SYNACK's key is never adopted.
	if remote, ok := a.RemotePublicKey(); ok {
		t.Fatalf("SYNACK handling must not adopt a key, got %q", remote)
	}
}

func TestAckCompletesWithoutEmission(t *testing.T) {
	b := newEngine(t, &fakeCipher{})

	if intent := b.HandleInbound(domain.HandshakeMessage{Step: domain.StepACK}); intent != nil {
		t.Fatalf("ACK must emit nothing, got %+v", intent)
	}
	if !b.Complete() {
		t.Fatal("ACK must complete the handshake")
	}
}

func TestCompletionIsTerminal(t *testing.T) {
	c := &fakeCipher{}
	e := newEngine(t, c)
	other := newEngine(t, c)

	e.HandleInbound(domain.HandshakeMessage{Step: domain.StepACK})
	if !e.Complete() {
		t.Fatal("setup: engine should be complete")
	}

	// Any further inbound message is a no-op, even a SYN carrying a key.
	if intent := e.HandleInbound(other.Initiate()); intent != nil {
		t.Fatalf("post-completion message must be a no-op, got %+v", intent)
	}
	if _, ok := e.RemotePublicKey(); ok {
		t.Fatal("post-completion SYN must not adopt a key")
	}
	if !e.Complete() {
		t.Fatal("completion must never reset")
	}
}

func TestSecondSynKeepsFirstKey(t *testing.T) {
	c := &fakeCipher{}
	e := newEngine(t, c)

	e.HandleInbound(domain.HandshakeMessage{Step: domain.StepSYN, PublicKey: "first"})
	e.HandleInbound(domain.HandshakeMessage{Step: domain.StepSYN, PublicKey: "second"})

	if remote, _ := e.RemotePublicKey(); remote != "first" {
		t.Fatalf("first write must win, got %q", remote)
	}
}

func TestKeylessSynAdoptsNothing(t *testing.T) {
	e := newEngine(t, &fakeCipher{})

	intent := e.HandleInbound(domain.HandshakeMessage{Step: domain.StepSYN})
	if intent == nil || intent.Step != domain.StepSYNACK {
		t.Fatalf("keyless SYN still answers with SYNACK, got %+v", intent)
	}
	if _, ok := e.RemotePublicKey(); ok {
		t.Fatal("keyless SYN must not set a remote key")
	}
}

func TestUnknownStepIsIgnored(t *testing.T) {
	e := newEngine(t, &fakeCipher{})

	if intent := e.HandleInbound(domain.HandshakeMessage{Step: domain.StepNone, PublicKey: "stray"}); intent != nil {
		t.Fatalf("none step must emit nothing, got %+v", intent)
	}
	if _, ok := e.RemotePublicKey(); ok {
		t.Fatal("none step must not adopt a key")
	}
	if e.Complete() || e.Step() != domain.StepNone {
		t.Fatal("none step must not change state")
	}
}

func TestGateRequiresRemoteKeyNotCompletion(t *testing.T) {
	e := newEngine(t, &fakeCipher{})

	if _, err := e.Encrypt("hi"); !errors.Is(err, domain.ErrKeysNotExchanged) {
		t.Fatalf("encrypt before keys: want ErrKeysNotExchanged, got %v", err)
	}
	if _, err := e.Decrypt("junk"); !errors.Is(err, domain.ErrKeysNotExchanged) {
		t.Fatalf("decrypt before keys: want ErrKeysNotExchanged, got %v", err)
	}

	// An ACK-only peer completes without ever learning a key; the gate stays
	// closed regardless.
	e.HandleInbound(domain.HandshakeMessage{Step: domain.StepACK})
	if !e.Complete() {
		t.Fatal("setup: engine should be complete")
	}
	if _, err := e.Encrypt("hi"); !errors.Is(err, domain.ErrKeysNotExchanged) {
		t.Fatalf("completion must not open the gate, got %v", err)
	}

	// Conversely a recorded key opens the gate with the handshake incomplete.
	fresh := newEngine(t, &fakeCipher{})
	fresh.RecordRemotePublicKey("pub:priv-x")
	if fresh.Complete() {
		t.Fatal("recording a key must not complete the handshake")
	}
	if _, err := fresh.Encrypt("hi"); err != nil {
		t.Fatalf("encrypt with recorded key: %v", err)
	}
}

func TestRecordRemotePublicKeyOverwrites(t *testing.T) {
	e := newEngine(t, &fakeCipher{})

	e.HandleInbound(domain.HandshakeMessage{Step: domain.StepSYN, PublicKey: "adopted"})
	e.RecordRemotePublicKey("replacement")
	if remote, _ := e.RemotePublicKey(); remote != "replacement" {
		t.Fatalf("explicit record must overwrite, got %q", remote)
	}

	e.RecordRemotePublicKey("")
	if _, ok := e.RemotePublicKey(); ok {
		t.Fatal("explicit record must allow clearing")
	}
}

func TestEncryptRejectsUnencodablePayload(t *testing.T) {
	e := newEngine(t, &fakeCipher{})
	e.RecordRemotePublicKey("pub:priv-x")

	if _, err := e.Encrypt(make(chan int)); !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("want ErrEncoding, got %v", err)
	}
}

// TestRoundTripWithSealedBox drives the full crossed handshake with the real
// cipher and checks payloads survive encrypt/decrypt both ways.
func TestRoundTripWithSealedBox(t *testing.T) {
	box := crypto.NewBox()
	a := newEngine(t, box)
	b := newEngine(t, box)

	// Both sides offer; only SYN handling adopts, so a one-sided offer would
	// leave the initiator keyless.
	synackFromB := b.HandleInbound(a.Initiate())
	synackFromA := a.HandleInbound(b.Initiate())

	ackFromA := a.HandleInbound(synackFromB.Message())
	ackFromB := b.HandleInbound(synackFromA.Message())
	a.HandleInbound(ackFromB.Message())
	b.HandleInbound(ackFromA.Message())

	if !a.Complete() || !b.Complete() {
		t.Fatal("both sides should be complete")
	}

	payload := map[string]any{"kind": "greeting", "body": "hello clasp"}
	ct, err := a.Encrypt(payload)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	plain, err := b.Decrypt(ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if want := `{"body":"hello clasp","kind":"greeting"}`; plain != want {
		t.Fatalf("canonical form: want %s, got %s", want, plain)
	}

	// And the reverse direction.
	ct, err = b.Encrypt("pong")
	if err != nil {
		t.Fatalf("encrypt reverse: %v", err)
	}
	plain, err = a.Decrypt(ct)
	if err != nil {
		t.Fatalf("decrypt reverse: %v", err)
	}
	if plain != `"pong"` {
		t.Fatalf("want %q, got %q", `"pong"`, plain)
	}
}
