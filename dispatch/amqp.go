package dispatch

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/goliatone/go-messaging-gateway/core"
)

// AMQPTransport is the RabbitMQ implementation of Transport. It holds one
// connection, one channel guarded by a mutex for publishes, and an
// exclusive auto-delete reply queue consumed by a background goroutine.
type AMQPTransport struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	replyQueue string
	replies    chan Reply
	logger     core.Logger

	mu     sync.Mutex
	closed bool
}

// DialAMQP connects to the broker and provisions the reply queue. The
// returned transport is ready for publishing.
func DialAMQP(url string, logger core.Logger) (*AMQPTransport, error) {
	_, logger = glog.Resolve("dispatch", nil, logger)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "dispatch: connect to broker").
			WithTextCode(core.GatewayErrorTransport)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "dispatch: open channel").
			WithTextCode(core.GatewayErrorTransport)
	}

	queue, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "dispatch: declare reply queue").
			WithTextCode(core.GatewayErrorTransport)
	}
	deliveries, err := channel.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "dispatch: consume reply queue").
			WithTextCode(core.GatewayErrorTransport)
	}

	transport := &AMQPTransport{
		conn:       conn,
		channel:    channel,
		replyQueue: queue.Name,
		replies:    make(chan Reply),
		logger:     logger,
	}
	go transport.relay(deliveries)
	return transport, nil
}

func (t *AMQPTransport) relay(deliveries <-chan amqp.Delivery) {
	defer close(t.replies)
	for delivery := range deliveries {
		if delivery.CorrelationId == "" {
			t.logger.Error("discarding reply without correlation id", "queue", t.replyQueue)
			continue
		}
		t.replies <- Reply{CorrelationID: delivery.CorrelationId, Body: delivery.Body}
	}
}

func (t *AMQPTransport) Publish(ctx context.Context, publishing Publishing) error {
	replyTo := publishing.ReplyTo
	if replyTo == "" {
		replyTo = t.replyQueue
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return goerrors.New("dispatch: transport is closed", goerrors.CategoryExternal).
			WithTextCode(core.GatewayErrorTransport)
	}
	err := t.channel.PublishWithContext(ctx, "", publishing.Queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: publishing.CorrelationID,
		ReplyTo:       replyTo,
		Body:          publishing.Body,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "dispatch: publish request").
			WithTextCode(core.GatewayErrorTransport)
	}
	return nil
}

func (t *AMQPTransport) Replies() <-chan Reply {
	return t.replies
}

func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	if err := t.channel.Close(); err != nil {
		t.conn.Close()
		return goerrors.Wrap(err, goerrors.CategoryExternal, "dispatch: close channel").
			WithTextCode(core.GatewayErrorTransport)
	}
	return t.conn.Close()
}

var _ Transport = (*AMQPTransport)(nil)
