package gateway

import (
	"context"

	"github.com/goliatone/go-messaging-gateway/channels/messenger"
	"github.com/goliatone/go-messaging-gateway/core"
)

// Messenger send operations, each dispatched with its own operation tag and
// the backend reply relayed verbatim.

func (s *Service) SendMessengerText(ctx context.Context, req messenger.SendTextRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelMessenger, req)
}

func (s *Service) SendMessengerAttachment(ctx context.Context, req messenger.SendAttachmentRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelMessenger, req)
}
