package messaginggateway

import (
	"github.com/goliatone/go-messaging-gateway/core"
	"github.com/goliatone/go-messaging-gateway/dispatch"
	"github.com/goliatone/go-messaging-gateway/gateway"
)

type Config = core.Config

type ChannelConfig = core.ChannelConfig

type BrokerConfig = core.BrokerConfig

type Channel = core.Channel

type NormalizedMessage = core.NormalizedMessage

type PostbackEvent = core.PostbackEvent

type Unit = core.Unit

type VerificationRequest = core.VerificationRequest

type InboundRequest = core.InboundRequest

type InboundResult = core.InboundResult

type ReplyPayload = core.ReplyPayload

type Service = gateway.Service

type ServiceOption = gateway.ServiceOption

const (
	ChannelMessenger = core.ChannelMessenger
	ChannelWhatsApp  = core.ChannelWhatsApp
)

var (
	WithLogger          = gateway.WithLogger
	WithDispatcher      = gateway.WithDispatcher
	WithNormalizer      = gateway.WithNormalizer
	WithMetricsRecorder = gateway.WithMetricsRecorder
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	return gateway.New(cfg, opts...)
}

// Setup connects to the configured broker, builds the RPC client, and
// composes a ready gateway service. Callers own the returned client and
// should Close it on shutdown.
func Setup(cfg Config, opts ...ServiceOption) (*Service, *dispatch.Client, error) {
	transport, err := dispatch.DialAMQP(cfg.Broker.URL, nil)
	if err != nil {
		return nil, nil, err
	}
	client := dispatch.NewClient(transport,
		dispatch.WithDefaultTimeout(cfg.DispatchTimeout))

	svc, err := gateway.New(cfg, append(opts, gateway.WithDispatcher(client))...)
	if err != nil {
		transport.Close()
		return nil, nil, err
	}
	return svc, client, nil
}
