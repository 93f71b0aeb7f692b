package domain

import "encoding/json"

// HandshakeStep identifies one leg of the SYN/SYNACK/ACK key exchange.
// The zero value is StepNone so a missing "type" field decodes cleanly.
type HandshakeStep uint8

const (
	StepNone HandshakeStep = iota
	StepSYN
	StepSYNACK
	StepACK
)

// Wire tags are fixed; peers match on these strings exactly.
const (
	wireNone   = "none"
	wireSYN    = "key_handshake_SYN"
	wireSYNACK = "key_handshake_SYNACK"
	wireACK    = "key_handshake_ACK"
)

// StepFromWire maps a wire tag to a step. Unrecognized tags map to StepNone;
// the wire format is forward-compatible and unknown steps are ignored, not
// rejected.
func StepFromWire(s string) HandshakeStep {
	switch s {
	case wireSYN:
		return StepSYN
	case wireSYNACK:
		return StepSYNACK
	case wireACK:
		return StepACK
	default:
		return StepNone
	}
}

// Wire returns the exact tag peers expect on the wire.
func (s HandshakeStep) Wire() string {
	switch s {
	case StepSYN:
		return wireSYN
	case StepSYNACK:
		return wireSYNACK
	case StepACK:
		return wireACK
	default:
		return wireNone
	}
}

func (s HandshakeStep) String() string { return s.Wire() }

// MarshalJSON encodes the step as its wire tag.
func (s HandshakeStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Wire())
}

// UnmarshalJSON decodes leniently: any tag that is not a known step, and any
// value that is not a JSON string at all, yields StepNone without error.
func (s *HandshakeStep) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = StepNone
		return nil
	}
	*s = StepFromWire(raw)
	return nil
}

// HandshakeMessage is the wire envelope for one handshake leg. PublicKey is
// optional; an empty string means absent and the field is omitted from the
// serialized form entirely rather than sent as null.
type HandshakeMessage struct {
	Step      HandshakeStep `json:"type"`
	PublicKey string        `json:"publicKey,omitempty"`
}

// HasPublicKey reports whether the envelope carries a key.
func (m HandshakeMessage) HasPublicKey() bool { return m.PublicKey != "" }
