// Package transport carries frames between two peers over TCP.
//
// A Link frames messages as newline-delimited JSON over a single connection.
// It promises nothing about ordering, uniqueness or delivery; the handshake
// layer is built to tolerate all three failing.
//
// Dial retries with exponential backoff. Announce and Locate use mDNS so a
// dialing peer can find a listener by code name instead of address.
package transport
