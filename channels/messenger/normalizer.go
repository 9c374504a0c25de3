package messenger

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-messaging-gateway/core"
)

// Operation tags for the messenger backend. The original platform name is
// kept in the routing strings so downstream workers stay addressable.
const (
	OpWebhookVerify  = "facebook.webhook.verify"
	OpWebhookMessage = "facebook.webhook.message"
	OpHealthCheck    = "facebook.health.check"
	OpMessageText    = "facebook.message.text"
	OpMessageMedia   = "facebook.message.attachment"
)

const webhookObjectPage = "page"

type rawEnvelope struct {
	Object string     `json:"object"`
	Entry  []rawEntry `json:"entry"`
}

type rawEntry struct {
	ID        string     `json:"id"`
	Time      int64      `json:"time"`
	Messaging []rawEvent `json:"messaging"`
}

type rawEvent struct {
	Sender    rawParty     `json:"sender"`
	Recipient rawParty     `json:"recipient"`
	Timestamp int64        `json:"timestamp"`
	Message   *rawMessage  `json:"message"`
	Postback  *rawPostback `json:"postback"`
}

type rawParty struct {
	ID string `json:"id"`
}

type rawMessage struct {
	MID         string          `json:"mid"`
	Text        string          `json:"text"`
	Attachments []rawAttachment `json:"attachments"`
}

type rawAttachment struct {
	Type    string `json:"type"`
	Payload struct {
		URL string `json:"url"`
	} `json:"payload"`
}

type rawPostback struct {
	Payload string `json:"payload"`
	Title   string `json:"title"`
}

// Normalizer translates Messenger platform webhook deliveries into
// canonical units. Messenger attachments carry a type and URL but no MIME
// information; that difference stays inside the attachment shape, never in
// new top-level schema fields.
type Normalizer struct {
	logger core.Logger
}

func New(logger core.Logger) *Normalizer {
	_, logger = glog.Resolve("messenger", nil, logger)
	return &Normalizer{logger: logger}
}

func (n *Normalizer) Channel() core.Channel {
	return core.ChannelMessenger
}

// Normalize parses a delivery and returns a one-pass sequence of canonical
// units in payload order. Events missing required identity fields are
// dropped and logged without aborting their siblings.
func (n *Normalizer) Normalize(raw []byte) (iter.Seq[core.Unit], error) {
	seq, _, err := n.NormalizeWithStats(raw)
	return seq, err
}

// NormalizeWithStats is Normalize with a drop counter that fills in as the
// sequence drains.
func (n *Normalizer) NormalizeWithStats(raw []byte) (iter.Seq[core.Unit], *core.NormalizeStats, error) {
	var payload rawEnvelope
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("messenger: parse webhook payload: %w", err)
	}
	object := strings.TrimSpace(strings.ToLower(payload.Object))
	if object != webhookObjectPage {
		return nil, nil, fmt.Errorf("messenger: unsupported webhook object %q", payload.Object)
	}

	stats := &core.NormalizeStats{}
	seq := func(yield func(core.Unit) bool) {
		for _, entry := range payload.Entry {
			for _, event := range entry.Messaging {
				unit, ok := n.normalizeEvent(entry, event)
				if !ok {
					stats.Dropped++
					continue
				}
				if !yield(unit) {
					return
				}
			}
		}
	}
	return seq, stats, nil
}

func (n *Normalizer) normalizeEvent(entry rawEntry, event rawEvent) (core.Unit, bool) {
	metadata := map[string]any{}
	if strings.TrimSpace(entry.ID) != "" {
		metadata["page_id"] = entry.ID
	}

	switch {
	case event.Message != nil:
		unit := core.MessageUnit(core.NormalizedMessage{
			MessageID:   strings.TrimSpace(event.Message.MID),
			SenderID:    strings.TrimSpace(event.Sender.ID),
			RecipientID: strings.TrimSpace(event.Recipient.ID),
			Channel:     core.ChannelMessenger,
			Text:        event.Message.Text,
			Attachments: normalizeAttachments(event.Message.Attachments),
			Timestamp:   event.Timestamp,
			Metadata:    metadata,
		})
		if err := unit.Validate(); err != nil {
			n.logDropped("message", err)
			return core.Unit{}, false
		}
		return unit, true
	case event.Postback != nil:
		unit := core.PostbackUnit(core.PostbackEvent{
			SenderID:    strings.TrimSpace(event.Sender.ID),
			RecipientID: strings.TrimSpace(event.Recipient.ID),
			Channel:     core.ChannelMessenger,
			Payload:     strings.TrimSpace(event.Postback.Payload),
			Title:       event.Postback.Title,
			Timestamp:   event.Timestamp,
			Metadata:    metadata,
		})
		if err := unit.Validate(); err != nil {
			n.logDropped("postback", err)
			return core.Unit{}, false
		}
		return unit, true
	default:
		n.logDropped("event", fmt.Errorf("messenger: event carries neither message nor postback"))
		return core.Unit{}, false
	}
}

// ExtractSender reports the sender of the first messaging event in the
// delivery.
func (n *Normalizer) ExtractSender(raw []byte) (string, error) {
	event, err := firstEvent(raw)
	if err != nil {
		return "", err
	}
	sender := strings.TrimSpace(event.Sender.ID)
	if sender == "" {
		return "", fmt.Errorf("messenger: sender id is required")
	}
	return sender, nil
}

// ExtractTimestamp reports the timestamp of the first messaging event, in
// epoch milliseconds.
func (n *Normalizer) ExtractTimestamp(raw []byte) (int64, error) {
	event, err := firstEvent(raw)
	if err != nil {
		return 0, err
	}
	if event.Timestamp <= 0 {
		return 0, fmt.Errorf("messenger: timestamp is required")
	}
	return event.Timestamp, nil
}

func firstEvent(raw []byte) (rawEvent, error) {
	var payload rawEnvelope
	if err := json.Unmarshal(raw, &payload); err != nil {
		return rawEvent{}, fmt.Errorf("messenger: parse webhook payload: %w", err)
	}
	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			return event, nil
		}
	}
	return rawEvent{}, fmt.Errorf("messenger: delivery has no messaging events")
}

func normalizeAttachments(raw []rawAttachment) []core.Attachment {
	if len(raw) == 0 {
		return nil
	}
	out := make([]core.Attachment, 0, len(raw))
	for _, attachment := range raw {
		out = append(out, core.Attachment{
			Type: strings.TrimSpace(strings.ToLower(attachment.Type)),
			URL:  strings.TrimSpace(attachment.Payload.URL),
		})
	}
	return out
}

func (n *Normalizer) logDropped(kind string, err error) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Error("dropped malformed unit", "channel", string(core.ChannelMessenger), "kind", kind, "error", err.Error())
}

var (
	_ core.ChannelNormalizer  = (*Normalizer)(nil)
	_ core.StatsNormalizer    = (*Normalizer)(nil)
	_ core.SenderExtractor    = (*Normalizer)(nil)
	_ core.TimestampExtractor = (*Normalizer)(nil)
)
