package core

import (
	"fmt"
	"strings"
	"time"
)

// ChannelConfig holds the per-channel settings the gateway consumes:
// the backend queue name, the handshake verify token, and the shared
// signing secret (empty when the channel has no signature scheme).
type ChannelConfig struct {
	Queue       string `koanf:"queue" mapstructure:"queue"`
	VerifyToken string `koanf:"verify_token" mapstructure:"verify_token"`
	AppSecret   string `koanf:"app_secret" mapstructure:"app_secret"`
}

type BrokerConfig struct {
	URL string `koanf:"url" mapstructure:"url"`
}

type Config struct {
	ServiceName     string                   `koanf:"service_name" mapstructure:"service_name"`
	Broker          BrokerConfig             `koanf:"broker" mapstructure:"broker"`
	DispatchTimeout time.Duration            `koanf:"dispatch_timeout" mapstructure:"dispatch_timeout"`
	Channels        map[string]ChannelConfig `koanf:"channels" mapstructure:"channels"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:     "messaging-gateway",
		Broker:          BrokerConfig{URL: "amqp://localhost:5672"},
		DispatchTimeout: 10 * time.Second,
		Channels: map[string]ChannelConfig{
			string(ChannelMessenger): {Queue: "messages_queue"},
			string(ChannelWhatsApp):  {Queue: "messages_queue"},
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Broker.URL) == "" {
		return fmt.Errorf("core: broker url is required")
	}
	if c.DispatchTimeout <= 0 {
		return fmt.Errorf("core: dispatch_timeout must be positive")
	}
	for name, channel := range c.Channels {
		if !NormalizeChannel(name).Valid() {
			return fmt.Errorf("core: unknown channel %q in config", name)
		}
		if strings.TrimSpace(channel.Queue) == "" {
			return fmt.Errorf("core: channel %q requires a queue name", name)
		}
	}
	return nil
}

// ChannelFor returns the settings for a channel. The second return is false
// when the channel is not configured.
func (c Config) ChannelFor(channel Channel) (ChannelConfig, bool) {
	cfg, ok := c.Channels[string(channel)]
	return cfg, ok
}
