package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-messaging-gateway/core"
	"github.com/goliatone/go-messaging-gateway/gateway"
)

// GatewayService is the surface the command layer drives.
type GatewayService interface {
	VerifyWebhook(ctx context.Context, channel core.Channel, req core.VerificationRequest) (string, error)
	ReceiveMessage(ctx context.Context, channel core.Channel, req core.InboundRequest) (core.InboundResult, error)
	Send(ctx context.Context, channel core.Channel, req gateway.SendRequest) (core.ReplyPayload, error)
	Health(ctx context.Context, channel core.Channel) (core.ReplyPayload, error)
}

type VerifyWebhookCommand struct {
	service GatewayService
}

func NewVerifyWebhookCommand(service GatewayService) *VerifyWebhookCommand {
	return &VerifyWebhookCommand{service: service}
}

func (c *VerifyWebhookCommand) Execute(ctx context.Context, msg VerifyWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: verify webhook service is required")
	}
	challenge, err := c.service.VerifyWebhook(ctx, msg.Channel, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, challenge)
	return nil
}

type ReceiveWebhookCommand struct {
	service GatewayService
}

func NewReceiveWebhookCommand(service GatewayService) *ReceiveWebhookCommand {
	return &ReceiveWebhookCommand{service: service}
}

func (c *ReceiveWebhookCommand) Execute(ctx context.Context, msg ReceiveWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: receive webhook service is required")
	}
	result, err := c.service.ReceiveMessage(ctx, msg.Channel, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, result)
	return nil
}

type SendMessageCommand struct {
	service GatewayService
}

func NewSendMessageCommand(service GatewayService) *SendMessageCommand {
	return &SendMessageCommand{service: service}
}

func (c *SendMessageCommand) Execute(ctx context.Context, msg SendMessageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: send message service is required")
	}
	reply, err := c.service.Send(ctx, msg.Channel, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, reply)
	return nil
}

type HealthCheckCommand struct {
	service GatewayService
}

func NewHealthCheckCommand(service GatewayService) *HealthCheckCommand {
	return &HealthCheckCommand{service: service}
}

func (c *HealthCheckCommand) Execute(ctx context.Context, msg HealthCheckMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: health check service is required")
	}
	reply, err := c.service.Health(ctx, msg.Channel)
	if err != nil {
		return err
	}
	storeResult(ctx, reply)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
