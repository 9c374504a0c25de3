package gateway

import (
	"context"
	"iter"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-messaging-gateway/channels/messenger"
	"github.com/goliatone/go-messaging-gateway/channels/whatsapp"
	"github.com/goliatone/go-messaging-gateway/core"
	"github.com/goliatone/go-messaging-gateway/webhooks"
)

// SendRequest is any typed outbound operation: it names its backend
// operation and validates itself before dispatch.
type SendRequest interface {
	Operation() string
	Validate() error
}

type ServiceOption func(*Service)

func WithLogger(logger core.Logger) ServiceOption {
	return func(s *Service) {
		if s == nil || logger == nil {
			return
		}
		s.logger = logger
	}
}

func WithDispatcher(dispatcher core.Dispatcher) ServiceOption {
	return func(s *Service) {
		if s == nil || dispatcher == nil {
			return
		}
		s.dispatcher = dispatcher
	}
}

// WithNormalizer registers a channel normalizer. The default constructors
// for messenger and whatsapp are registered when no normalizer is supplied
// for their channel.
func WithNormalizer(normalizer core.ChannelNormalizer) ServiceOption {
	return func(s *Service) {
		if s == nil || normalizer == nil {
			return
		}
		s.normalizers = append(s.normalizers, normalizer)
	}
}

func WithMetricsRecorder(metrics core.MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if s == nil || metrics == nil {
			return
		}
		s.metrics = metrics
	}
}

// Service is the composed gateway. It owns no broker connection itself;
// the dispatcher carries one.
type Service struct {
	logger      core.Logger
	config      core.Config
	dispatcher  core.Dispatcher
	registry    *core.NormalizerRegistry
	metrics     core.MetricsRecorder
	normalizers []core.ChannelNormalizer
	templates   map[core.Channel]webhooks.ChannelWebhookTemplate
	handshakes  map[core.Channel]webhooks.Handshake
}

func New(config core.Config, opts ...ServiceOption) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	svc := &Service{
		config:   config,
		registry: core.NewNormalizerRegistry(),
		metrics:  core.NopMetricsRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	_, svc.logger = glog.Resolve("gateway", nil, svc.logger)

	if svc.dispatcher == nil {
		return nil, goerrors.New("gateway: dispatcher is required", goerrors.CategoryBadInput).
			WithTextCode(core.GatewayErrorValidation)
	}

	for _, normalizer := range svc.normalizers {
		if err := svc.registry.Register(normalizer); err != nil {
			return nil, err
		}
	}
	if _, ok := svc.registry.Get(core.ChannelMessenger); !ok {
		if err := svc.registry.Register(messenger.New(svc.logger)); err != nil {
			return nil, err
		}
	}
	if _, ok := svc.registry.Get(core.ChannelWhatsApp); !ok {
		if err := svc.registry.Register(whatsapp.New(svc.logger)); err != nil {
			return nil, err
		}
	}

	svc.templates = make(map[core.Channel]webhooks.ChannelWebhookTemplate)
	svc.handshakes = make(map[core.Channel]webhooks.Handshake)
	for name, channelConfig := range config.Channels {
		channel := core.NormalizeChannel(name)
		if !channel.Valid() {
			return nil, unknownChannelError(channel)
		}
		switch channel {
		case core.ChannelMessenger:
			svc.templates[channel] = webhooks.NewMessengerWebhookTemplate(channelConfig.AppSecret)
		case core.ChannelWhatsApp:
			svc.templates[channel] = webhooks.NewWhatsAppWebhookTemplate(channelConfig.AppSecret)
		}
		svc.handshakes[channel] = webhooks.NewHandshake(channelConfig.VerifyToken)
	}
	return svc, nil
}

// VerifyWebhook confirms a provider's subscription handshake and returns the
// challenge to echo back. The challenge is relayed verbatim.
func (s *Service) VerifyWebhook(ctx context.Context, channel core.Channel, req core.VerificationRequest) (string, error) {
	handshake, ok := s.handshakes[channel]
	if !ok {
		return "", unknownChannelError(channel)
	}
	challenge, err := handshake.Confirm(req)
	if err != nil {
		s.metrics.IncCounter(ctx, "gateway.webhook.verify.rejected", 1, channelTags(channel))
		return "", err
	}
	s.metrics.IncCounter(ctx, "gateway.webhook.verify.confirmed", 1, channelTags(channel))
	return challenge, nil
}

// ReceiveMessage runs the inbound pipeline for one webhook delivery:
// signature gate, normalization, then one dispatch per canonical unit in
// input order. Signature verification is fail-closed whenever the channel
// has a configured secret or the delivery carries a signature header; only
// a channel without a secret accepts unsigned deliveries, and those are
// logged as unverified. A unit whose dispatch fails is counted and logged
// without aborting its siblings.
func (s *Service) ReceiveMessage(ctx context.Context, channel core.Channel, req core.InboundRequest) (core.InboundResult, error) {
	started := time.Now()
	channelConfig, ok := s.config.ChannelFor(channel)
	if !ok {
		return core.InboundResult{StatusCode: http.StatusNotFound}, unknownChannelError(channel)
	}
	template, ok := s.templates[channel]
	if !ok {
		return core.InboundResult{StatusCode: http.StatusNotFound}, unknownChannelError(channel)
	}
	normalizer, ok := s.registry.Get(channel)
	if !ok {
		return core.InboundResult{StatusCode: http.StatusNotFound}, unknownChannelError(channel)
	}

	req.Channel = channel
	if strings.TrimSpace(channelConfig.AppSecret) != "" || template.HasSignature(req) {
		if err := template.Verifier.Verify(ctx, req); err != nil {
			s.metrics.IncCounter(ctx, "gateway.webhook.rejected", 1, channelTags(channel))
			return core.InboundResult{StatusCode: http.StatusUnauthorized}, err
		}
	} else {
		s.logger.Warn("accepting unverified delivery, no signature secret configured",
			"channel", string(channel))
		s.metrics.IncCounter(ctx, "gateway.webhook.unverified", 1, channelTags(channel))
	}

	var seq iter.Seq[core.Unit]
	var stats *core.NormalizeStats
	var err error
	if counting, ok := normalizer.(core.StatsNormalizer); ok {
		seq, stats, err = counting.NormalizeWithStats(req.Body)
	} else {
		seq, err = normalizer.Normalize(req.Body)
	}
	if err != nil {
		s.metrics.IncCounter(ctx, "gateway.webhook.malformed", 1, channelTags(channel))
		return core.InboundResult{StatusCode: http.StatusBadRequest},
			goerrors.Wrap(err, goerrors.CategoryBadInput, "gateway: normalize payload").
				WithTextCode(core.GatewayErrorValidation)
	}

	operation := webhookMessageOperation(channel)
	result := core.InboundResult{Accepted: true, StatusCode: http.StatusOK}
	for unit := range seq {
		reply, err := s.dispatcher.CallWithTimeout(ctx, channelConfig.Queue, core.DispatchEnvelope{
			Operation: operation,
			Payload:   unit.Payload(),
		}, s.config.DispatchTimeout)
		if err != nil {
			result.Failed++
			s.logger.Error("unit dispatch failed",
				"channel", string(channel), "operation", operation, "error", err.Error())
			s.metrics.IncCounter(ctx, "gateway.dispatch.failed", 1, channelTags(channel))
			continue
		}
		result.Replies = append(result.Replies, reply)
	}
	if stats != nil {
		result.Dropped = stats.Dropped
	}

	s.metrics.IncCounter(ctx, "gateway.webhook.received", 1, channelTags(channel))
	s.metrics.ObserveHistogram(ctx, "gateway.webhook.duration_ms",
		float64(time.Since(started).Milliseconds()), channelTags(channel))
	return result, nil
}

// Send validates and dispatches one typed outbound operation, returning the
// backend reply without modification.
func (s *Service) Send(ctx context.Context, channel core.Channel, req SendRequest) (core.ReplyPayload, error) {
	channelConfig, ok := s.config.ChannelFor(channel)
	if !ok {
		return nil, unknownChannelError(channel)
	}
	if req == nil {
		return nil, goerrors.New("gateway: send request is required", goerrors.CategoryBadInput).
			WithTextCode(core.GatewayErrorValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	reply, err := s.dispatcher.CallWithTimeout(ctx, channelConfig.Queue, core.DispatchEnvelope{
		Operation: req.Operation(),
		Payload:   req,
	}, s.config.DispatchTimeout)
	if err != nil {
		s.metrics.IncCounter(ctx, "gateway.send.failed", 1, channelTags(channel))
		return nil, err
	}
	s.metrics.IncCounter(ctx, "gateway.send.ok", 1, channelTags(channel))
	return reply, nil
}

// Health dispatches the channel worker's health probe and relays its reply.
func (s *Service) Health(ctx context.Context, channel core.Channel) (core.ReplyPayload, error) {
	channelConfig, ok := s.config.ChannelFor(channel)
	if !ok {
		return nil, unknownChannelError(channel)
	}
	return s.dispatcher.CallWithTimeout(ctx, channelConfig.Queue, core.DispatchEnvelope{
		Operation: healthCheckOperation(channel),
	}, s.config.DispatchTimeout)
}

func webhookMessageOperation(channel core.Channel) string {
	switch channel {
	case core.ChannelMessenger:
		return messenger.OpWebhookMessage
	case core.ChannelWhatsApp:
		return whatsapp.OpWebhookMessage
	}
	return ""
}

func healthCheckOperation(channel core.Channel) string {
	switch channel {
	case core.ChannelMessenger:
		return messenger.OpHealthCheck
	case core.ChannelWhatsApp:
		return whatsapp.OpHealthCheck
	}
	return ""
}

func unknownChannelError(channel core.Channel) error {
	return goerrors.New("gateway: unknown channel "+string(channel), goerrors.CategoryBadInput).
		WithTextCode(core.GatewayErrorValidation).
		WithMetadata(map[string]any{"channel": string(channel)})
}

func channelTags(channel core.Channel) map[string]string {
	return map[string]string{"channel": string(channel)}
}
