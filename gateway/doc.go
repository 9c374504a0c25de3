// Package gateway composes the inbound webhook pipeline: handshake
// confirmation, signature verification, payload normalization, and RPC
// dispatch toward the per-channel backend queue. It also exposes the typed
// send operations and translates every failure into a stable outward error
// shape.
package gateway
