package gateway

import (
	"context"

	"github.com/goliatone/go-messaging-gateway/channels/whatsapp"
	"github.com/goliatone/go-messaging-gateway/core"
)

// WhatsApp send operations, each dispatched with its own operation tag and
// the backend reply relayed verbatim.

func (s *Service) SendWhatsAppText(ctx context.Context, req whatsapp.SendTextRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppImage(ctx context.Context, req whatsapp.SendImageRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppVideo(ctx context.Context, req whatsapp.SendVideoRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppAudio(ctx context.Context, req whatsapp.SendAudioRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppDocument(ctx context.Context, req whatsapp.SendDocumentRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppLocation(ctx context.Context, req whatsapp.SendLocationRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppContact(ctx context.Context, req whatsapp.SendContactRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppButtons(ctx context.Context, req whatsapp.SendButtonsRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppList(ctx context.Context, req whatsapp.SendListRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppTemplate(ctx context.Context, req whatsapp.SendTemplateRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) SendWhatsAppTestMessage(ctx context.Context, req whatsapp.SendTestMessageRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) MarkWhatsAppMessageRead(ctx context.Context, req whatsapp.MarkReadRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}

func (s *Service) WhatsAppContactProfile(ctx context.Context, req whatsapp.ContactProfileRequest) (core.ReplyPayload, error) {
	return s.Send(ctx, core.ChannelWhatsApp, req)
}
