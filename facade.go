package messaginggateway

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-messaging-gateway/adapters/gocommand"
	gwcommand "github.com/goliatone/go-messaging-gateway/command"
)

// Commands bundles the command handlers exposed by the facade.
type Commands struct {
	VerifyWebhook  *gwcommand.VerifyWebhookCommand
	ReceiveWebhook *gwcommand.ReceiveWebhookCommand
	SendMessage    *gwcommand.SendMessageCommand
	HealthCheck    *gwcommand.HealthCheckCommand
}

type Facade struct {
	service  gwcommand.GatewayService
	commands Commands
}

func NewFacade(service gwcommand.GatewayService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("messaginggateway: gateway service is required")
	}
	facade := &Facade{service: service}
	facade.commands = Commands{
		VerifyWebhook:  gwcommand.NewVerifyWebhookCommand(service),
		ReceiveWebhook: gwcommand.NewReceiveWebhookCommand(service),
		SendMessage:    gwcommand.NewSendMessageCommand(service),
		HealthCheck:    gwcommand.NewHealthCheckCommand(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Service() gwcommand.GatewayService {
	if f == nil {
		return nil
	}
	return f.service
}

// RegisterCommands registers and subscribes every facade command on the
// adapter. On failure the subscriptions made so far are released.
func (f *Facade) RegisterCommands(adapter *gocommand.RegistryAdapter, runnerOpts ...runner.Option) ([]commanddispatcher.Subscription, error) {
	if f == nil {
		return nil, fmt.Errorf("messaginggateway: facade is required")
	}
	if adapter == nil {
		return nil, fmt.Errorf("messaginggateway: registry adapter is required")
	}

	var subscriptions []commanddispatcher.Subscription
	release := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}

	subscription, err := gocommand.RegisterAndSubscribe(adapter, f.commands.VerifyWebhook, runnerOpts...)
	if err != nil {
		release()
		return nil, err
	}
	subscriptions = append(subscriptions, subscription)

	subscription, err = gocommand.RegisterAndSubscribe(adapter, f.commands.ReceiveWebhook, runnerOpts...)
	if err != nil {
		release()
		return nil, err
	}
	subscriptions = append(subscriptions, subscription)

	subscription, err = gocommand.RegisterAndSubscribe(adapter, f.commands.SendMessage, runnerOpts...)
	if err != nil {
		release()
		return nil, err
	}
	subscriptions = append(subscriptions, subscription)

	subscription, err = gocommand.RegisterAndSubscribe(adapter, f.commands.HealthCheck, runnerOpts...)
	if err != nil {
		release()
		return nil, err
	}
	subscriptions = append(subscriptions, subscription)

	return subscriptions, nil
}
