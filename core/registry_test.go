package core

import (
	"iter"
	"testing"
)

type stubNormalizer struct {
	channel Channel
}

func (s stubNormalizer) Channel() Channel { return s.channel }

func (s stubNormalizer) Normalize([]byte) (iter.Seq[Unit], error) {
	return func(func(Unit) bool) {}, nil
}

func TestNormalizerRegistryRegisterAndGet(t *testing.T) {
	registry := NewNormalizerRegistry()
	if err := registry.Register(stubNormalizer{channel: ChannelMessenger}); err != nil {
		t.Fatalf("register messenger: %v", err)
	}
	if err := registry.Register(stubNormalizer{channel: ChannelWhatsApp}); err != nil {
		t.Fatalf("register whatsapp: %v", err)
	}

	if _, ok := registry.Get(ChannelMessenger); !ok {
		t.Fatalf("expected messenger normalizer")
	}
	if _, ok := registry.Get("telegram"); ok {
		t.Fatalf("expected unknown channel to miss")
	}

	channels := registry.Channels()
	if len(channels) != 2 || channels[0] != ChannelMessenger || channels[1] != ChannelWhatsApp {
		t.Fatalf("expected sorted channel list, got %v", channels)
	}
}

func TestNormalizerRegistryRejectsDuplicatesAndInvalid(t *testing.T) {
	registry := NewNormalizerRegistry()
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil normalizer rejection")
	}
	if err := registry.Register(stubNormalizer{channel: "telegram"}); err == nil {
		t.Fatalf("expected invalid channel rejection")
	}
	if err := registry.Register(stubNormalizer{channel: ChannelWhatsApp}); err != nil {
		t.Fatalf("register whatsapp: %v", err)
	}
	if err := registry.Register(stubNormalizer{channel: ChannelWhatsApp}); err == nil {
		t.Fatalf("expected duplicate rejection")
	}
}
