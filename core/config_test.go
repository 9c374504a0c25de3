package core

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}

	noBroker := cfg
	noBroker.Broker.URL = " "
	if err := noBroker.Validate(); err == nil {
		t.Fatalf("expected missing broker url to fail")
	}

	badTimeout := cfg
	badTimeout.DispatchTimeout = 0
	if err := badTimeout.Validate(); err == nil {
		t.Fatalf("expected zero timeout to fail")
	}

	badChannel := DefaultConfig()
	badChannel.Channels["telegram"] = ChannelConfig{Queue: "q"}
	if err := badChannel.Validate(); err == nil {
		t.Fatalf("expected unknown channel to fail")
	}

	noQueue := DefaultConfig()
	noQueue.Channels[string(ChannelWhatsApp)] = ChannelConfig{}
	if err := noQueue.Validate(); err == nil {
		t.Fatalf("expected missing queue to fail")
	}
}

func TestChannelFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels[string(ChannelWhatsApp)] = ChannelConfig{Queue: "whatsapp_queue", AppSecret: "secret"}
	channel, ok := cfg.ChannelFor(ChannelWhatsApp)
	if !ok {
		t.Fatalf("expected whatsapp channel config")
	}
	if channel.Queue != "whatsapp_queue" {
		t.Fatalf("expected whatsapp queue, got %q", channel.Queue)
	}
	if _, ok := cfg.ChannelFor("telegram"); ok {
		t.Fatalf("expected unknown channel to miss")
	}
}

func TestCfgxConfigProviderLoadsRawValues(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"service_name": "edge-gateway",
		"broker":       map[string]any{"url": "amqp://broker:5672"},
	}})
	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "edge-gateway" {
		t.Fatalf("expected loaded service name, got %q", cfg.ServiceName)
	}
	if cfg.Broker.URL != "amqp://broker:5672" {
		t.Fatalf("expected loaded broker url, got %q", cfg.Broker.URL)
	}
	if cfg.DispatchTimeout != 10*time.Second {
		t.Fatalf("expected default timeout preserved, got %v", cfg.DispatchTimeout)
	}
}

func TestGoOptionsResolverPrecedence(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{ServiceName: "from-config", DispatchTimeout: 5 * time.Second}
	runtime := Config{ServiceName: "from-runtime"}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if resolved.ServiceName != "from-runtime" {
		t.Fatalf("expected runtime layer to win, got %q", resolved.ServiceName)
	}
	if resolved.DispatchTimeout != 5*time.Second {
		t.Fatalf("expected config layer timeout, got %v", resolved.DispatchTimeout)
	}
	if resolved.Broker.URL != defaults.Broker.URL {
		t.Fatalf("expected default broker url, got %q", resolved.Broker.URL)
	}
}
