package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-messaging-gateway/core"
)

// DefaultCallTimeout bounds a Call when the caller does not supply one.
const DefaultCallTimeout = 10 * time.Second

// requestPacket is the wire shape backend workers consume: the operation
// as routing pattern, the payload, and the correlation id.
type requestPacket struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
	ID      string `json:"id"`
}

// replyPacket is the wire shape backend workers produce. Err carries the
// backend's error detail; Response carries the successful result verbatim.
type replyPacket struct {
	Response   json.RawMessage `json:"response"`
	Err        json.RawMessage `json:"err"`
	IsDisposed bool            `json:"isDisposed"`
}

type callResult struct {
	body []byte
	err  error
}

// Client resolves RPC calls over a Transport. One resolver goroutine owns
// reply matching; each call parks on its own buffered channel keyed by
// correlation id, so late or duplicate replies never block the resolver.
type Client struct {
	transport Transport
	logger    core.Logger
	timeout   time.Duration

	mu      sync.Mutex
	pending map[string]chan callResult
}

type ClientOption func(*Client)

func WithClientLogger(logger core.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaultTimeout overrides the per-call deadline applied by Call.
func WithDefaultTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewClient(transport Transport, options ...ClientOption) *Client {
	client := &Client{
		transport: transport,
		timeout:   DefaultCallTimeout,
		pending:   make(map[string]chan callResult),
	}
	for _, option := range options {
		option(client)
	}
	_, client.logger = glog.Resolve("dispatch", nil, client.logger)

	go client.resolve()
	return client
}

func (c *Client) resolve() {
	for reply := range c.transport.Replies() {
		c.mu.Lock()
		waiter, ok := c.pending[reply.CorrelationID]
		if ok {
			delete(c.pending, reply.CorrelationID)
		}
		c.mu.Unlock()
		if !ok {
			c.logger.Info("ignoring unmatched reply", "correlation_id", reply.CorrelationID)
			continue
		}
		waiter <- decodeReply(reply.Body)
	}
}

// Close shuts the underlying transport down. In-flight calls resolve with
// their context errors.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Call publishes the envelope and blocks until the matching reply arrives,
// the default timeout elapses, or ctx is done.
func (c *Client) Call(ctx context.Context, queue string, envelope core.DispatchEnvelope) (core.ReplyPayload, error) {
	return c.CallWithTimeout(ctx, queue, envelope, c.timeout)
}

// CallWithTimeout is Call with an explicit deadline. A lapsed deadline
// resolves the call with a timeout error; the published request is not
// recalled, so a late backend may still process it.
func (c *Client) CallWithTimeout(ctx context.Context, queue string, envelope core.DispatchEnvelope, timeout time.Duration) (core.ReplyPayload, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	if queue == "" {
		return nil, goerrors.New("dispatch: queue is required", goerrors.CategoryBadInput).
			WithTextCode(core.GatewayErrorValidation)
	}
	if timeout <= 0 {
		timeout = c.timeout
	}

	correlationID := uuid.NewString()
	body, err := json.Marshal(requestPacket{
		Pattern: envelope.Operation,
		Data:    envelope.Payload,
		ID:      correlationID,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "dispatch: encode request").
			WithTextCode(core.GatewayErrorInternal)
	}

	waiter := make(chan callResult, 1)
	c.mu.Lock()
	c.pending[correlationID] = waiter
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, correlationID)
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.transport.Publish(ctx, Publishing{
		Queue:         queue,
		CorrelationID: correlationID,
		Body:          body,
	}); err != nil {
		return nil, err
	}

	select {
	case result := <-waiter:
		if result.err != nil {
			return nil, result.err
		}
		return result.body, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, goerrors.New(
				fmt.Sprintf("dispatch: no reply for %s within %s", envelope.Operation, timeout),
				goerrors.CategoryOperation).
				WithTextCode(core.GatewayErrorTimeout).
				WithMetadata(map[string]any{"operation": envelope.Operation, "queue": queue})
		}
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "dispatch: call canceled").
			WithTextCode(core.GatewayErrorTransport)
	}
}

// decodeReply unwraps the backend's reply packet. Replies that do not
// parse as a packet are relayed verbatim.
func decodeReply(body []byte) callResult {
	var packet replyPacket
	if err := json.Unmarshal(body, &packet); err != nil {
		return callResult{body: body}
	}
	if len(packet.Err) > 0 && string(packet.Err) != "null" {
		detail := string(packet.Err)
		var text string
		if err := json.Unmarshal(packet.Err, &text); err == nil {
			detail = text
		}
		return callResult{err: goerrors.New(
			fmt.Sprintf("dispatch: backend error: %s", detail),
			goerrors.CategoryExternal).
			WithTextCode(core.GatewayErrorBackend).
			WithMetadata(map[string]any{"detail": detail})}
	}
	if packet.Response == nil && !packet.IsDisposed {
		return callResult{body: body}
	}
	return callResult{body: []byte(packet.Response)}
}

var _ core.Dispatcher = (*Client)(nil)
