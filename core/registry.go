package core

import (
	"fmt"
	"sort"
	"sync"
)

// NormalizerRegistry is the static lookup table mapping channel tags to
// their normalizer implementations.
type NormalizerRegistry struct {
	mu          sync.RWMutex
	normalizers map[Channel]ChannelNormalizer
}

func NewNormalizerRegistry() *NormalizerRegistry {
	return &NormalizerRegistry{normalizers: make(map[Channel]ChannelNormalizer)}
}

func (r *NormalizerRegistry) Register(normalizer ChannelNormalizer) error {
	if normalizer == nil {
		return fmt.Errorf("core: normalizer is nil")
	}
	channel := normalizer.Channel()
	if !channel.Valid() {
		return fmt.Errorf("core: normalizer channel %q is invalid", channel)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.normalizers[channel]; exists {
		return fmt.Errorf("core: normalizer already registered for channel %s", channel)
	}
	r.normalizers[channel] = normalizer
	return nil
}

func (r *NormalizerRegistry) Get(channel Channel) (ChannelNormalizer, bool) {
	if !channel.Valid() {
		return nil, false
	}
	r.mu.RLock()
	normalizer, ok := r.normalizers[channel]
	r.mu.RUnlock()
	return normalizer, ok
}

func (r *NormalizerRegistry) Channels() []Channel {
	r.mu.RLock()
	channels := make([]Channel, 0, len(r.normalizers))
	for channel := range r.normalizers {
		channels = append(channels, channel)
	}
	r.mu.RUnlock()
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return channels
}
