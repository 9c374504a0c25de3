package messaginggateway

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-messaging-gateway/adapters/gocommand"
	gwcommand "github.com/goliatone/go-messaging-gateway/command"
	"github.com/goliatone/go-messaging-gateway/core"
	"github.com/goliatone/go-messaging-gateway/gateway"
)

func gwVerifyMessage() gwcommand.VerifyWebhookMessage {
	return gwcommand.VerifyWebhookMessage{
		Channel: core.ChannelMessenger,
		Request: core.VerificationRequest{Mode: "subscribe", Challenge: "314159", VerifyToken: "token"},
	}
}

type stubGatewayService struct {
	verified int
	health   int
}

func (s *stubGatewayService) VerifyWebhook(_ context.Context, _ core.Channel, req core.VerificationRequest) (string, error) {
	s.verified++
	return req.Challenge, nil
}

func (s *stubGatewayService) ReceiveMessage(context.Context, core.Channel, core.InboundRequest) (core.InboundResult, error) {
	return core.InboundResult{Accepted: true, StatusCode: 200}, nil
}

func (s *stubGatewayService) Send(context.Context, core.Channel, gateway.SendRequest) (core.ReplyPayload, error) {
	return core.ReplyPayload(`{"status":"ok"}`), nil
}

func (s *stubGatewayService) Health(context.Context, core.Channel) (core.ReplyPayload, error) {
	s.health++
	return core.ReplyPayload(`{"status":"healthy"}`), nil
}

func TestNewFacadeRequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestFacadeExposesCommands(t *testing.T) {
	facade, err := NewFacade(&stubGatewayService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	commands := facade.Commands()
	if commands.VerifyWebhook == nil || commands.ReceiveWebhook == nil ||
		commands.SendMessage == nil || commands.HealthCheck == nil {
		t.Fatalf("expected all commands wired, got %+v", commands)
	}
}

func TestFacadeRegisterCommands(t *testing.T) {
	svc := &stubGatewayService{}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	adapter := gocommand.NewRegistryAdapter(gocmd.NewRegistry())
	subscriptions, err := facade.RegisterCommands(adapter)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	defer func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	}()
	if len(subscriptions) != 4 {
		t.Fatalf("expected 4 subscriptions, got %d", len(subscriptions))
	}

	collector := gocmd.NewResult[string]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().VerifyWebhook.Execute(ctx, gwVerifyMessage()); err != nil {
		t.Fatalf("execute verify: %v", err)
	}
	if svc.verified != 1 {
		t.Fatalf("expected service invocation, got %d", svc.verified)
	}
	if challenge, ok := collector.Load(); !ok || challenge != "314159" {
		t.Fatalf("expected challenge stored, got %q (%v)", challenge, ok)
	}
}

func TestFacadeRegisterCommandsRequiresAdapter(t *testing.T) {
	facade, err := NewFacade(&stubGatewayService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if _, err := facade.RegisterCommands(nil); err == nil {
		t.Fatal("expected error for nil adapter")
	}
}
