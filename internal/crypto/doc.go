// Package crypto provides the asymmetric cipher the handshake engine is
// parameterized over.
//
// Box is an X25519 sealed box: each encryption uses a fresh ephemeral
// keypair, derives a one-message key with HKDF-SHA256 from the Diffie–Hellman
// shared secret, and seals with ChaCha20-Poly1305. Keys and ciphertext travel
// as base64 text so they can ride inside JSON envelopes unmodified.
//
// Fingerprint produces short key digests for display and logging.
package crypto
