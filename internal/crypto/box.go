package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"clasp/internal/domain"
)

const keyBytes = 32

// hkdfInfo binds derived keys to this protocol.
var hkdfInfo = []byte("clasp-sealed-box-v1")

// Box is an X25519 sealed-box cipher. Stateless; the zero value is usable.
type Box struct{}

// NewBox returns the sealed-box cipher.
func NewBox() *Box { return &Box{} }

// GeneratePrivateKey returns a fresh Curve25519 private key as base64.
// The key is clamped per RFC 7748.
func (b *Box) GeneratePrivateKey() (string, error) {
	var priv [keyBytes]byte
	if _, err := rand.Read(priv[:]); err != nil {
		return "", err
	}
	clamp(&priv)
	return base64.StdEncoding.EncodeToString(priv[:]), nil
}

// PublicKey derives the public half of a base64 private key.
func (b *Box) PublicKey(privateKey string) (string, error) {
	priv, err := decodeKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("private key: %w", err)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(pub), nil
}

// Encrypt seals plaintext to the holder of publicKey. A fresh ephemeral
// keypair is used per call, so the AEAD nonce can stay zero: the derived key
// is never reused. Output is base64(ephemeralPub || sealed).
func (b *Box) Encrypt(plaintext, publicKey string) (string, error) {
	pub, err := decodeKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("public key: %w", err)
	}

	var ephPriv [keyBytes]byte
	if _, err := rand.Read(ephPriv[:]); err != nil {
		return "", err
	}
	clamp(&ephPriv)
	ephPub, err := curve25519.X25519(ephPriv[:], curve25519.Basepoint)
	if err != nil {
		return "", err
	}

	shared, err := curve25519.X25519(ephPriv[:], pub)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(deriveKey(shared))
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	sealed := aead.Seal(nil, nonce, []byte(plaintext), ephPub)

	out := make([]byte, 0, len(ephPub)+len(sealed))
	out = append(out, ephPub...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a sealed box with the holder's private key.
func (b *Box) Decrypt(ciphertext, privateKey string) (string, error) {
	priv, err := decodeKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("private key: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext: %w", err)
	}
	if len(blob) < keyBytes {
		return "", fmt.Errorf("ciphertext too short: %d bytes", len(blob))
	}
	ephPub, sealed := blob[:keyBytes], blob[keyBytes:]

	shared, err := curve25519.X25519(priv, ephPub)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(deriveKey(shared))
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	plain, err := aead.Open(nil, nonce, sealed, ephPub)
	if err != nil {
		return "", fmt.Errorf("open sealed box: %w", err)
	}
	return string(plain), nil
}

// deriveKey stretches the DH shared secret into an AEAD key.
func deriveKey(shared []byte) []byte {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, shared, nil, hkdfInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		// HKDF over SHA-256 cannot fail for a 32-byte read.
		panic(err)
	}
	return key
}

func decodeKey(s string) ([]byte, error) {
	k, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(k) != keyBytes {
		return nil, fmt.Errorf("want %d bytes, got %d", keyBytes, len(k))
	}
	return k, nil
}

func clamp(k *[keyBytes]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

// Compile-time assertion that Box implements domain.Cipher.
var _ domain.Cipher = (*Box)(nil)
