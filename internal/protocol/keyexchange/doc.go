// Package keyexchange implements the three-step key handshake
// (SYN → SYNACK → ACK) that two peers run before exchanging encrypted
// payloads.
//
// The engine owns a keypair for the lifetime of the channel, consumes inbound
// handshake envelopes and returns outbound intents as plain values; it never
// touches a transport itself. Once the remote public key is known the engine
// exposes an encrypt/decrypt gate over an opaque asymmetric cipher.
//
// The protocol is deliberately asymmetric: only SYN handling adopts the
// sender's public key (first write wins), SYNACK handling acknowledges without
// adopting. A peer that only ever sees an ACK therefore completes the
// handshake without learning a remote key, and its gate stays closed.
package keyexchange
