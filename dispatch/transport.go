package dispatch

import "context"

// Publishing is one outbound RPC request. ReplyTo may be left empty; the
// transport routes replies to its own reply queue in that case.
type Publishing struct {
	Queue         string
	CorrelationID string
	ReplyTo       string
	Body          []byte
}

// Reply is one inbound reply delivery, matched to a call by correlation id.
type Reply struct {
	CorrelationID string
	Body          []byte
}

// Transport moves request and reply frames to and from the broker. Publish
// must be safe for concurrent use. Replies returns a channel that closes
// when the transport shuts down.
type Transport interface {
	Publish(ctx context.Context, publishing Publishing) error
	Replies() <-chan Reply
	Close() error
}
