package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[VerifyWebhookMessage]  = (*VerifyWebhookCommand)(nil)
	_ gocmd.Commander[ReceiveWebhookMessage] = (*ReceiveWebhookCommand)(nil)
	_ gocmd.Commander[SendMessageMessage]    = (*SendMessageCommand)(nil)
	_ gocmd.Commander[HealthCheckMessage]    = (*HealthCheckCommand)(nil)
)
