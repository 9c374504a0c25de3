package core

import (
	"strings"
)

// Channel identifies an external messaging platform integration.
type Channel string

const (
	ChannelMessenger Channel = "messenger"
	ChannelWhatsApp  Channel = "whatsapp"
)

func (c Channel) String() string {
	return string(c)
}

func (c Channel) Valid() bool {
	switch c {
	case ChannelMessenger, ChannelWhatsApp:
		return true
	default:
		return false
	}
}

func NormalizeChannel(value string) Channel {
	return Channel(strings.TrimSpace(strings.ToLower(value)))
}

// Attachment carries a media reference found in an inbound message. Channels
// without MIME information leave MimeType empty.
type Attachment struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

type UserProfile struct {
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// NormalizedMessage is the canonical representation of an inbound user
// message. Every channel adapter produces this shape regardless of the
// provider's raw payload format.
type NormalizedMessage struct {
	MessageID      string         `json:"messageId"`
	SenderID       string         `json:"senderId"`
	RecipientID    string         `json:"recipientId"`
	Channel        Channel        `json:"channel"`
	Text           string         `json:"text,omitempty"`
	Attachments    []Attachment   `json:"attachments,omitempty"`
	Timestamp      int64          `json:"timestamp"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ConversationID string         `json:"conversationId,omitempty"`
	UserProfile    *UserProfile   `json:"userProfile,omitempty"`
}

func (m NormalizedMessage) Validate() error {
	if strings.TrimSpace(m.MessageID) == "" {
		return validationError("core: message id is required", nil)
	}
	if strings.TrimSpace(m.SenderID) == "" {
		return validationError("core: sender id is required", map[string]any{"message_id": m.MessageID})
	}
	if strings.TrimSpace(m.RecipientID) == "" {
		return validationError("core: recipient id is required", map[string]any{"message_id": m.MessageID})
	}
	if !m.Channel.Valid() {
		return validationError("core: channel is invalid", map[string]any{
			"message_id": m.MessageID,
			"channel":    string(m.Channel),
		})
	}
	if m.Timestamp <= 0 {
		return validationError("core: timestamp is required", map[string]any{"message_id": m.MessageID})
	}
	if strings.TrimSpace(m.Text) == "" && len(m.Attachments) == 0 {
		return validationError("core: message requires text or attachments", map[string]any{
			"message_id": m.MessageID,
		})
	}
	return nil
}

// PostbackEvent is the canonical representation of a structured user action,
// such as a button or menu tap.
type PostbackEvent struct {
	SenderID    string         `json:"senderId"`
	RecipientID string         `json:"recipientId"`
	Channel     Channel        `json:"channel"`
	Payload     string         `json:"payload"`
	Title       string         `json:"title,omitempty"`
	Timestamp   int64          `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (p PostbackEvent) Validate() error {
	if strings.TrimSpace(p.SenderID) == "" {
		return validationError("core: postback sender id is required", nil)
	}
	if strings.TrimSpace(p.RecipientID) == "" {
		return validationError("core: postback recipient id is required", nil)
	}
	if !p.Channel.Valid() {
		return validationError("core: postback channel is invalid", map[string]any{
			"channel": string(p.Channel),
		})
	}
	if strings.TrimSpace(p.Payload) == "" {
		return validationError("core: postback payload is required", nil)
	}
	if p.Timestamp <= 0 {
		return validationError("core: postback timestamp is required", nil)
	}
	return nil
}

type UnitKind string

const (
	UnitKindMessage  UnitKind = "message"
	UnitKindPostback UnitKind = "postback"
)

// Unit is a single canonical event produced by a channel normalizer: either
// a message or a postback, never both.
type Unit struct {
	Kind     UnitKind
	Message  *NormalizedMessage
	Postback *PostbackEvent
}

func MessageUnit(msg NormalizedMessage) Unit {
	return Unit{Kind: UnitKindMessage, Message: &msg}
}

func PostbackUnit(event PostbackEvent) Unit {
	return Unit{Kind: UnitKindPostback, Postback: &event}
}

func (u Unit) Validate() error {
	switch u.Kind {
	case UnitKindMessage:
		if u.Message == nil {
			return validationError("core: message unit has no message", nil)
		}
		return u.Message.Validate()
	case UnitKindPostback:
		if u.Postback == nil {
			return validationError("core: postback unit has no postback", nil)
		}
		return u.Postback.Validate()
	default:
		return validationError("core: unit kind is invalid", map[string]any{"kind": string(u.Kind)})
	}
}

// Payload returns the canonical object carried by the unit, suitable for use
// as a dispatch envelope payload.
func (u Unit) Payload() any {
	switch u.Kind {
	case UnitKindMessage:
		if u.Message != nil {
			return *u.Message
		}
	case UnitKindPostback:
		if u.Postback != nil {
			return *u.Postback
		}
	}
	return nil
}

// VerificationRequest carries the one-time subscription handshake a channel
// provider issues to confirm webhook endpoint ownership.
type VerificationRequest struct {
	Mode        string `json:"mode"`
	Challenge   string `json:"challenge"`
	VerifyToken string `json:"verifyToken"`
}

// SignatureVerificationRequest pairs the exact unparsed request body with
// the provider-supplied signature header value. Signatures are computed over
// raw bytes, never over re-serialized JSON.
type SignatureVerificationRequest struct {
	RawBody   []byte
	Signature string
}

// DispatchEnvelope is the unit sent across the RPC boundary. It is
// constructed per request, never persisted, and owned exclusively by the
// dispatch call that created it.
type DispatchEnvelope struct {
	Operation string `json:"operation"`
	Payload   any    `json:"payload"`
}

func (e DispatchEnvelope) Validate() error {
	if strings.TrimSpace(e.Operation) == "" {
		return validationError("core: envelope operation is required", nil)
	}
	return nil
}

// InboundRequest is what the HTTP transport hands the gateway for a webhook
// delivery: parsed channel tag, header map, and the raw body bytes.
type InboundRequest struct {
	Channel  Channel
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
}

// InboundResult reports the outcome of processing one webhook delivery.
// Replies preserves the input order of the units that were dispatched;
// Dropped counts malformed entries that were skipped before dispatch, and
// Failed counts units whose dispatch did not resolve. A failed unit does
// not abort its siblings.
type InboundResult struct {
	Accepted   bool
	StatusCode int
	Replies    []ReplyPayload
	Dropped    int
	Failed     int
	Metadata   map[string]any
}

// ReplyPayload is an opaque backend reply relayed to the caller unchanged.
type ReplyPayload = []byte
