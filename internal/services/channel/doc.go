// Package channel connects a handshake engine to a peer link.
//
// The engine only decides; this service acts. It pumps inbound frames,
// materializes the engine's outbound intents as wire messages, and ferries
// application payloads through the encrypt/decrypt gate once keys are
// exchanged.
package channel
