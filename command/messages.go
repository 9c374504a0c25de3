package command

import (
	"fmt"

	"github.com/goliatone/go-messaging-gateway/core"
	"github.com/goliatone/go-messaging-gateway/gateway"
)

const (
	TypeVerifyWebhook  = "gateway.command.webhook.verify"
	TypeReceiveWebhook = "gateway.command.webhook.receive"
	TypeSendMessage    = "gateway.command.message.send"
	TypeHealthCheck    = "gateway.command.health.check"
)

type VerifyWebhookMessage struct {
	Channel core.Channel
	Request core.VerificationRequest
}

func (VerifyWebhookMessage) Type() string { return TypeVerifyWebhook }

func (m VerifyWebhookMessage) Validate() error {
	if !m.Channel.Valid() {
		return fmt.Errorf("command: channel %q is not supported", m.Channel)
	}
	return nil
}

type ReceiveWebhookMessage struct {
	Channel core.Channel
	Request core.InboundRequest
}

func (ReceiveWebhookMessage) Type() string { return TypeReceiveWebhook }

func (m ReceiveWebhookMessage) Validate() error {
	if !m.Channel.Valid() {
		return fmt.Errorf("command: channel %q is not supported", m.Channel)
	}
	if len(m.Request.Body) == 0 {
		return fmt.Errorf("command: webhook body is required")
	}
	return nil
}

type SendMessageMessage struct {
	Channel core.Channel
	Request gateway.SendRequest
}

func (SendMessageMessage) Type() string { return TypeSendMessage }

func (m SendMessageMessage) Validate() error {
	if !m.Channel.Valid() {
		return fmt.Errorf("command: channel %q is not supported", m.Channel)
	}
	if m.Request == nil {
		return fmt.Errorf("command: send request is required")
	}
	return m.Request.Validate()
}

type HealthCheckMessage struct {
	Channel core.Channel
}

func (HealthCheckMessage) Type() string { return TypeHealthCheck }

func (m HealthCheckMessage) Validate() error {
	if !m.Channel.Valid() {
		return fmt.Errorf("command: channel %q is not supported", m.Channel)
	}
	return nil
}
