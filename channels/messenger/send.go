package messenger

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-messaging-gateway/core"
)

// SendTextRequest asks the messenger backend to deliver a plain text
// message to a recipient PSID.
type SendTextRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func (r SendTextRequest) Operation() string { return OpMessageText }

func (r SendTextRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("messenger: recipient is required")
	}
	if strings.TrimSpace(r.Text) == "" {
		return sendValidationError("messenger: text is required")
	}
	return nil
}

// SendAttachmentRequest asks the messenger backend to deliver a hosted
// media attachment.
type SendAttachmentRequest struct {
	To   string `json:"to"`
	Type string `json:"type"` // image | video | audio | file
	URL  string `json:"url"`
}

func (r SendAttachmentRequest) Operation() string { return OpMessageMedia }

func (r SendAttachmentRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return sendValidationError("messenger: recipient is required")
	}
	switch strings.TrimSpace(strings.ToLower(r.Type)) {
	case "image", "video", "audio", "file":
	default:
		return sendValidationError("messenger: attachment type is invalid")
	}
	if strings.TrimSpace(r.URL) == "" {
		return sendValidationError("messenger: attachment url is required")
	}
	return nil
}

func sendValidationError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(core.GatewayErrorValidation)
}
