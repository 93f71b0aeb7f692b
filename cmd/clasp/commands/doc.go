// Package commands defines the clasp CLI: listen waits for a peer, dial
// connects to one, and both run the key handshake before relaying encrypted
// lines between stdin and stdout.
package commands
