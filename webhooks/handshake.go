package webhooks

import (
	"crypto/subtle"
	"strings"

	"github.com/goliatone/go-messaging-gateway/core"
)

const DefaultSubscribeMode = "subscribe"

// Handshake implements the one-time challenge/response exchange a provider
// issues when a webhook subscription is created. It is stateless across
// calls and never touches the normalization or dispatch path.
type Handshake struct {
	VerifyToken   string
	SubscribeMode string
}

func NewHandshake(verifyToken string) Handshake {
	return Handshake{
		VerifyToken:   strings.TrimSpace(verifyToken),
		SubscribeMode: DefaultSubscribeMode,
	}
}

// Confirm returns the challenge verbatim when the request carries the
// expected subscribe mode and verify token. Any other mode or token is an
// authorization failure, not a processing failure.
func (h Handshake) Confirm(req core.VerificationRequest) (string, error) {
	mode := strings.TrimSpace(req.Mode)
	expectedMode := strings.TrimSpace(h.SubscribeMode)
	if expectedMode == "" {
		expectedMode = DefaultSubscribeMode
	}
	if mode != expectedMode {
		return "", authError("webhooks: handshake mode mismatch", map[string]any{"mode": mode})
	}
	expectedToken := strings.TrimSpace(h.VerifyToken)
	if expectedToken == "" {
		return "", authError("webhooks: verify token is not configured", nil)
	}
	token := strings.TrimSpace(req.VerifyToken)
	if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
		return "", authError("webhooks: verify token mismatch", nil)
	}
	return req.Challenge, nil
}
