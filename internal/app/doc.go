// Package app wires application dependencies for the CLI.
//
// It builds the cipher, config store and per-connection channel services from
// Config, exposing them via the Wire struct for commands to use.
package app
