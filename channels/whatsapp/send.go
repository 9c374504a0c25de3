package whatsapp

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-messaging-gateway/core"
)

// Backend operation names for the WhatsApp worker.
const (
	OpWebhookVerify  = "whatsapp.webhook.verify"
	OpWebhookMessage = "whatsapp.webhook.message"
	OpHealthCheck    = "whatsapp.health.check"

	OpMessageText     = "whatsapp.message.text"
	OpMessageImage    = "whatsapp.message.image"
	OpMessageVideo    = "whatsapp.message.video"
	OpMessageAudio    = "whatsapp.message.audio"
	OpMessageDocument = "whatsapp.message.document"
	OpMessageLocation = "whatsapp.message.location"
	OpMessageContact  = "whatsapp.message.contact"
	OpMessageButtons  = "whatsapp.message.buttons"
	OpMessageList     = "whatsapp.message.list"
	OpMessageTemplate = "whatsapp.message.template"
	OpMessageMarkRead = "whatsapp.message.mark-read"
	OpMessageTest     = "whatsapp.message.test"
	OpContactProfile  = "whatsapp.contact.profile"
)

// SendTextRequest delivers a plain text message to a WhatsApp number.
type SendTextRequest struct {
	To         string `json:"to"`
	Text       string `json:"text"`
	PreviewURL bool   `json:"previewUrl,omitempty"`
}

func (r SendTextRequest) Operation() string { return OpMessageText }

func (r SendTextRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	if strings.TrimSpace(r.Text) == "" {
		return sendValidationError("whatsapp: text is required")
	}
	return nil
}

// SendMediaRequest is the shared shape for hosted media deliveries. Link is
// required; Caption applies where the Cloud API supports it.
type SendMediaRequest struct {
	To      string `json:"to"`
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

func (r SendMediaRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	if strings.TrimSpace(r.Link) == "" {
		return sendValidationError("whatsapp: media link is required")
	}
	return nil
}

type SendImageRequest struct{ SendMediaRequest }

func (r SendImageRequest) Operation() string { return OpMessageImage }

type SendVideoRequest struct{ SendMediaRequest }

func (r SendVideoRequest) Operation() string { return OpMessageVideo }

type SendAudioRequest struct{ SendMediaRequest }

func (r SendAudioRequest) Operation() string { return OpMessageAudio }

// SendDocumentRequest delivers a hosted document, optionally with the
// filename shown to the recipient.
type SendDocumentRequest struct {
	SendMediaRequest
	Filename string `json:"filename,omitempty"`
}

func (r SendDocumentRequest) Operation() string { return OpMessageDocument }

// SendLocationRequest delivers a map pin.
type SendLocationRequest struct {
	To        string  `json:"to"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

func (r SendLocationRequest) Operation() string { return OpMessageLocation }

func (r SendLocationRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return sendValidationError("whatsapp: latitude is out of range")
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return sendValidationError("whatsapp: longitude is out of range")
	}
	return nil
}

// ContactCard is a single contact entry for SendContactRequest.
type ContactCard struct {
	FormattedName string   `json:"formattedName"`
	FirstName     string   `json:"firstName,omitempty"`
	LastName      string   `json:"lastName,omitempty"`
	Phones        []string `json:"phones,omitempty"`
	Emails        []string `json:"emails,omitempty"`
}

// SendContactRequest shares one or more contact cards.
type SendContactRequest struct {
	To       string        `json:"to"`
	Contacts []ContactCard `json:"contacts"`
}

func (r SendContactRequest) Operation() string { return OpMessageContact }

func (r SendContactRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	if len(r.Contacts) == 0 {
		return sendValidationError("whatsapp: at least one contact is required")
	}
	for _, contact := range r.Contacts {
		if strings.TrimSpace(contact.FormattedName) == "" {
			return sendValidationError("whatsapp: contact formatted name is required")
		}
	}
	return nil
}

// ReplyButton is one tappable choice in an interactive button message. The
// Cloud API caps a message at three buttons.
type ReplyButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SendButtonsRequest delivers an interactive message with reply buttons.
type SendButtonsRequest struct {
	To      string        `json:"to"`
	Body    string        `json:"body"`
	Buttons []ReplyButton `json:"buttons"`
}

func (r SendButtonsRequest) Operation() string { return OpMessageButtons }

func (r SendButtonsRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	if strings.TrimSpace(r.Body) == "" {
		return sendValidationError("whatsapp: body is required")
	}
	if len(r.Buttons) == 0 || len(r.Buttons) > 3 {
		return sendValidationError("whatsapp: between one and three buttons are required")
	}
	for _, button := range r.Buttons {
		if strings.TrimSpace(button.ID) == "" || strings.TrimSpace(button.Title) == "" {
			return sendValidationError("whatsapp: button id and title are required")
		}
	}
	return nil
}

// ListRow is one selectable row inside a list section.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows under an optional section title.
type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

// SendListRequest delivers an interactive list message.
type SendListRequest struct {
	To         string        `json:"to"`
	Body       string        `json:"body"`
	ButtonText string        `json:"buttonText"`
	Sections   []ListSection `json:"sections"`
}

func (r SendListRequest) Operation() string { return OpMessageList }

func (r SendListRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	if strings.TrimSpace(r.Body) == "" {
		return sendValidationError("whatsapp: body is required")
	}
	if strings.TrimSpace(r.ButtonText) == "" {
		return sendValidationError("whatsapp: button text is required")
	}
	if len(r.Sections) == 0 {
		return sendValidationError("whatsapp: at least one section is required")
	}
	for _, section := range r.Sections {
		if len(section.Rows) == 0 {
			return sendValidationError("whatsapp: each section needs at least one row")
		}
		for _, row := range section.Rows {
			if strings.TrimSpace(row.ID) == "" || strings.TrimSpace(row.Title) == "" {
				return sendValidationError("whatsapp: row id and title are required")
			}
		}
	}
	return nil
}

// TemplateParameter is a positional substitution in a template component.
type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// SendTemplateRequest delivers a pre-approved message template.
type SendTemplateRequest struct {
	To           string              `json:"to"`
	TemplateName string              `json:"templateName"`
	LanguageCode string              `json:"languageCode"`
	Parameters   []TemplateParameter `json:"parameters,omitempty"`
}

func (r SendTemplateRequest) Operation() string { return OpMessageTemplate }

func (r SendTemplateRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	if strings.TrimSpace(r.TemplateName) == "" {
		return sendValidationError("whatsapp: template name is required")
	}
	if strings.TrimSpace(r.LanguageCode) == "" {
		return sendValidationError("whatsapp: language code is required")
	}
	return nil
}

// MarkReadRequest flags an inbound message as read.
type MarkReadRequest struct {
	MessageID string `json:"messageId"`
}

func (r MarkReadRequest) Operation() string { return OpMessageMarkRead }

func (r MarkReadRequest) Validate() error {
	if strings.TrimSpace(r.MessageID) == "" {
		return sendValidationError("whatsapp: message id is required")
	}
	return nil
}

// SendTestMessageRequest triggers the backend's canned connectivity test
// message toward a recipient.
type SendTestMessageRequest struct {
	To string `json:"to"`
}

func (r SendTestMessageRequest) Operation() string { return OpMessageTest }

func (r SendTestMessageRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("whatsapp: recipient is required")
	}
	return nil
}

// ContactProfileRequest fetches profile details for a WhatsApp number.
type ContactProfileRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

func (r ContactProfileRequest) Operation() string { return OpContactProfile }

func (r ContactProfileRequest) Validate() error {
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return sendValidationError("whatsapp: phone number is required")
	}
	return nil
}

func sendValidationError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(core.GatewayErrorValidation)
}
