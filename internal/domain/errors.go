package domain

import "errors"

var (
	// ErrKeysNotExchanged is returned by encrypt/decrypt before the remote
	// public key is known. The engine state is unchanged; the caller may
	// retry once the handshake has progressed.
	ErrKeysNotExchanged = errors.New("keys not exchanged with peer")

	// ErrEncoding is returned when a payload cannot be serialized to the
	// canonical text form. Wrapped with the underlying cause where one exists.
	ErrEncoding = errors.New("payload encoding failed")
)
