package domain

// Frame is one transport message: either a handshake envelope or an encrypted
// application payload. Exactly one field is set.
type Frame struct {
	Handshake *HandshakeMessage `json:"handshake,omitempty"`
	Data      string            `json:"data,omitempty"`
}

// HandshakeFrame wraps a handshake envelope for transport.
func HandshakeFrame(m HandshakeMessage) Frame { return Frame{Handshake: &m} }

// DataFrame wraps ciphertext for transport.
func DataFrame(ciphertext string) Frame { return Frame{Data: ciphertext} }
