// Package webhooks implements channel webhook authenticity checks: the
// HMAC signature verification providers attach to each delivery, and the
// one-time challenge/response handshake used during subscription setup.
package webhooks
