package whatsapp

import (
	"encoding/json"
	"fmt"
	"iter"
	"strconv"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-messaging-gateway/core"
)

const webhookObjectBusinessAccount = "whatsapp_business_account"

type rawEnvelope struct {
	Object string     `json:"object"`
	Entry  []rawEntry `json:"entry"`
}

type rawEntry struct {
	ID      string      `json:"id"`
	Changes []rawChange `json:"changes"`
}

type rawChange struct {
	Field string   `json:"field"`
	Value rawValue `json:"value"`
}

type rawValue struct {
	MessagingProduct string       `json:"messaging_product"`
	Metadata         rawMetadata  `json:"metadata"`
	Contacts         []rawContact `json:"contacts"`
	Messages         []rawMessage `json:"messages"`
}

type rawMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type rawContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type rawMessage struct {
	From        string          `json:"from"`
	ID          string          `json:"id"`
	Timestamp   string          `json:"timestamp"`
	Type        string          `json:"type"`
	Context     *rawContext     `json:"context"`
	Text        *rawText        `json:"text"`
	Image       *rawMedia       `json:"image"`
	Video       *rawMedia       `json:"video"`
	Audio       *rawMedia       `json:"audio"`
	Document    *rawMedia       `json:"document"`
	Location    *rawLocation    `json:"location"`
	Interactive *rawInteractive `json:"interactive"`
	Button      *rawButton      `json:"button"`
}

type rawContext struct {
	ID string `json:"id"`
}

type rawText struct {
	Body string `json:"body"`
}

type rawMedia struct {
	ID       string `json:"id"`
	Link     string `json:"link"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
}

type rawLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

type rawInteractive struct {
	Type        string    `json:"type"`
	ButtonReply *rawReply `json:"button_reply"`
	ListReply   *rawReply `json:"list_reply"`
}

type rawReply struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type rawButton struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

// Normalizer translates WhatsApp Cloud webhook deliveries into canonical
// units. Media references keep their MIME type inside the attachment shape;
// interactive replies surface as postbacks carrying the reply id.
type Normalizer struct {
	logger core.Logger
}

func New(logger core.Logger) *Normalizer {
	_, logger = glog.Resolve("whatsapp", nil, logger)
	return &Normalizer{logger: logger}
}

func (n *Normalizer) Channel() core.Channel {
	return core.ChannelWhatsApp
}

// Normalize parses a delivery and returns a one-pass sequence of canonical
// units in payload order. Messages missing sender, recipient, or timestamp
// are dropped and logged without aborting their siblings.
func (n *Normalizer) Normalize(raw []byte) (iter.Seq[core.Unit], error) {
	seq, _, err := n.NormalizeWithStats(raw)
	return seq, err
}

// NormalizeWithStats is Normalize with a drop counter that fills in as the
// sequence drains.
func (n *Normalizer) NormalizeWithStats(raw []byte) (iter.Seq[core.Unit], *core.NormalizeStats, error) {
	var payload rawEnvelope
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("whatsapp: parse webhook payload: %w", err)
	}
	object := strings.TrimSpace(strings.ToLower(payload.Object))
	if object != webhookObjectBusinessAccount {
		return nil, nil, fmt.Errorf("whatsapp: unsupported webhook object %q", payload.Object)
	}

	stats := &core.NormalizeStats{}
	seq := func(yield func(core.Unit) bool) {
		for _, entry := range payload.Entry {
			for _, change := range entry.Changes {
				profiles := contactProfiles(change.Value.Contacts)
				for _, message := range change.Value.Messages {
					unit, ok := n.normalizeMessage(change.Value.Metadata, profiles, message)
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
	}
	return seq, stats, nil
}

func (n *Normalizer) normalizeMessage(meta rawMetadata, profiles map[string]*core.UserProfile, message rawMessage) (core.Unit, bool) {
	timestamp := parseEpochSeconds(message.Timestamp)
	sender := strings.TrimSpace(message.From)
	recipient := strings.TrimSpace(meta.PhoneNumberID)

	metadata := map[string]any{
		"phone_number_id": meta.PhoneNumberID,
	}
	if strings.TrimSpace(meta.DisplayPhoneNumber) != "" {
		metadata["display_phone_number"] = meta.DisplayPhoneNumber
	}

	if postback, ok := postbackFrom(message); ok {
		unit := core.PostbackUnit(core.PostbackEvent{
			SenderID:    sender,
			RecipientID: recipient,
			Channel:     core.ChannelWhatsApp,
			Payload:     postback.ID,
			Title:       postback.Title,
			Timestamp:   timestamp,
			Metadata:    metadata,
		})
		if err := unit.Validate(); err != nil {
			n.logDropped("postback", err)
			return core.Unit{}, false
		}
		return unit, true
	}

	text, attachments := contentFrom(message)
	if message.Location != nil {
		metadata["latitude"] = message.Location.Latitude
		metadata["longitude"] = message.Location.Longitude
	}
	conversationID := ""
	if message.Context != nil {
		conversationID = strings.TrimSpace(message.Context.ID)
	}
	unit := core.MessageUnit(core.NormalizedMessage{
		MessageID:      strings.TrimSpace(message.ID),
		SenderID:       sender,
		RecipientID:    recipient,
		Channel:        core.ChannelWhatsApp,
		Text:           text,
		Attachments:    attachments,
		Timestamp:      timestamp,
		Metadata:       metadata,
		ConversationID: conversationID,
		UserProfile:    profiles[sender],
	})
	if err := unit.Validate(); err != nil {
		n.logDropped("message", err)
		return core.Unit{}, false
	}
	return unit, true
}

type postbackReply struct {
	ID    string
	Title string
}

func postbackFrom(message rawMessage) (postbackReply, bool) {
	if message.Interactive != nil {
		if reply := message.Interactive.ButtonReply; reply != nil {
			return postbackReply{ID: strings.TrimSpace(reply.ID), Title: reply.Title}, true
		}
		if reply := message.Interactive.ListReply; reply != nil {
			return postbackReply{ID: strings.TrimSpace(reply.ID), Title: reply.Title}, true
		}
	}
	if message.Button != nil {
		return postbackReply{ID: strings.TrimSpace(message.Button.Payload), Title: message.Button.Text}, true
	}
	return postbackReply{}, false
}

func contentFrom(message rawMessage) (string, []core.Attachment) {
	if message.Text != nil {
		return message.Text.Body, nil
	}
	if caption, attachment, ok := mediaAttachment(message); ok {
		return caption, []core.Attachment{attachment}
	}
	if message.Location != nil {
		text := strings.TrimSpace(message.Location.Name)
		if text == "" {
			text = strings.TrimSpace(message.Location.Address)
		}
		if text == "" {
			text = fmt.Sprintf("%f,%f", message.Location.Latitude, message.Location.Longitude)
		}
		return text, nil
	}
	return "", nil
}

func mediaAttachment(message rawMessage) (string, core.Attachment, bool) {
	var kind string
	var media *rawMedia
	switch {
	case message.Image != nil:
		kind, media = "image", message.Image
	case message.Video != nil:
		kind, media = "video", message.Video
	case message.Audio != nil:
		kind, media = "audio", message.Audio
	case message.Document != nil:
		kind, media = "document", message.Document
	default:
		return "", core.Attachment{}, false
	}
	url := strings.TrimSpace(media.Link)
	if url == "" {
		url = strings.TrimSpace(media.ID)
	}
	return media.Caption, core.Attachment{
		Type:     kind,
		URL:      url,
		MimeType: strings.TrimSpace(media.MimeType),
	}, true
}

func contactProfiles(contacts []rawContact) map[string]*core.UserProfile {
	if len(contacts) == 0 {
		return nil
	}
	profiles := make(map[string]*core.UserProfile, len(contacts))
	for _, contact := range contacts {
		name := strings.TrimSpace(contact.Profile.Name)
		if name == "" {
			continue
		}
		profile := &core.UserProfile{FirstName: name}
		if first, rest, found := strings.Cut(name, " "); found {
			profile.FirstName = first
			profile.LastName = strings.TrimSpace(rest)
		}
		profiles[strings.TrimSpace(contact.WaID)] = profile
	}
	return profiles
}

// ExtractSender reports the sender of the first message in the delivery.
func (n *Normalizer) ExtractSender(raw []byte) (string, error) {
	message, err := firstMessage(raw)
	if err != nil {
		return "", err
	}
	sender := strings.TrimSpace(message.From)
	if sender == "" {
		return "", fmt.Errorf("whatsapp: sender id is required")
	}
	return sender, nil
}

// ExtractTimestamp reports the timestamp of the first message, converted
// from the provider's epoch-second string to epoch milliseconds.
func (n *Normalizer) ExtractTimestamp(raw []byte) (int64, error) {
	message, err := firstMessage(raw)
	if err != nil {
		return 0, err
	}
	timestamp := parseEpochSeconds(message.Timestamp)
	if timestamp <= 0 {
		return 0, fmt.Errorf("whatsapp: timestamp is required")
	}
	return timestamp, nil
}

func firstMessage(raw []byte) (rawMessage, error) {
	var payload rawEnvelope
	if err := json.Unmarshal(raw, &payload); err != nil {
		return rawMessage{}, fmt.Errorf("whatsapp: parse webhook payload: %w", err)
	}
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, message := range change.Value.Messages {
				return message, nil
			}
		}
	}
	return rawMessage{}, fmt.Errorf("whatsapp: delivery has no messages")
}

// parseEpochSeconds converts the Cloud API's epoch-second string into epoch
// milliseconds. Returns 0 on malformed input so validation drops the unit.
func parseEpochSeconds(value string) int64 {
	seconds, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return seconds * 1000
}

func (n *Normalizer) logDropped(kind string, err error) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Error("dropped malformed unit", "channel", string(core.ChannelWhatsApp), "kind", kind, "error", err.Error())
}

var (
	_ core.ChannelNormalizer  = (*Normalizer)(nil)
	_ core.StatsNormalizer    = (*Normalizer)(nil)
	_ core.SenderExtractor    = (*Normalizer)(nil)
	_ core.TimestampExtractor = (*Normalizer)(nil)
)
