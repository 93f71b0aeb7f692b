package app

import (
	"io"
	"log"

	"clasp/internal/crypto"
	"clasp/internal/domain"
	"clasp/internal/protocol/keyexchange"
	channelsvc "clasp/internal/services/channel"
	"clasp/internal/store"
)

// Wire bundles the cipher, config store and logger for the CLI. Engines and
// channel services are built per connection via NewChannel, since a keypair
// lives exactly as long as its channel.
type Wire struct {
	Cipher domain.Cipher
	Config *store.ConfigStore
	Logger *log.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) *Wire {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Wire{
		Cipher: crypto.NewBox(),
		Config: store.NewConfigStore(cfg.Home),
		Logger: logger,
	}
}

// NewChannel builds a fresh engine and channel service over link. deliver
// receives decrypted payload text.
func (w *Wire) NewChannel(link domain.PeerLink, deliver func(string)) (*channelsvc.Service, error) {
	engine, err := keyexchange.New(w.Cipher, keyexchange.WithLogger(w.Logger))
	if err != nil {
		return nil, err
	}
	return channelsvc.New(engine, link, deliver, w.Logger), nil
}
