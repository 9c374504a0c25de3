package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-messaging-gateway/core"
)

// ChannelWebhookTemplate bundles a channel's signature verifier with the
// header it reads, so gateways can tell whether a delivery carries a
// signature before deciding to verify it.
type ChannelWebhookTemplate struct {
	Channel  core.Channel
	Header   string
	Verifier core.Verifier
}

// HasSignature reports whether the delivery carries this channel's
// signature header.
func (t ChannelWebhookTemplate) HasSignature(req core.InboundRequest) bool {
	return headerValue(req.Headers, t.Header) != ""
}

// HeaderHMACVerifier checks an HMAC-SHA256 signature computed over the raw
// request body. The signature header may carry a fixed scheme prefix
// (e.g. "sha256="), which is stripped before comparison. Comparison is
// constant time; malformed signature strings fail verification, they never
// panic.
type HeaderHMACVerifier struct {
	Header   string
	Prefix   string
	Secret   string
	Encoding string // hex | base64
}

func (v HeaderHMACVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	header := strings.TrimSpace(headerValue(req.Headers, v.Header))
	if header == "" {
		return authError("webhooks: "+strings.TrimSpace(v.Header)+" signature header is required", nil)
	}
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return authError("webhooks: signature secret is required", nil)
	}
	signature := strings.TrimPrefix(header, strings.TrimSpace(v.Prefix))
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return authError("webhooks: signature value is required", nil)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(req.Body)
	expected := mac.Sum(nil)

	switch strings.ToLower(strings.TrimSpace(v.Encoding)) {
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(signature)
		if err != nil {
			return authError("webhooks: decode base64 signature", map[string]any{"cause": err.Error()})
		}
		if subtle.ConstantTimeCompare(decoded, expected) != 1 {
			return authError("webhooks: signature verification failed", nil)
		}
	default:
		decoded, err := hex.DecodeString(signature)
		if err != nil {
			return authError("webhooks: decode hex signature", map[string]any{"cause": err.Error()})
		}
		if subtle.ConstantTimeCompare(decoded, expected) != 1 {
			return authError("webhooks: signature verification failed", nil)
		}
	}
	return nil
}

// VerifySignature is the pure form of the check: it reports whether
// signature is a valid hex HMAC-SHA256 of rawBody under secret, with an
// optional "sha256=" prefix. It never returns an error; malformed input is
// simply false.
func VerifySignature(rawBody []byte, signature string, secret string) bool {
	signature = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if signature == "" || strings.TrimSpace(secret) == "" {
		return false
	}
	decoded, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(rawBody)
	return subtle.ConstantTimeCompare(decoded, mac.Sum(nil)) == 1
}

// NewMessengerWebhookTemplate returns the Messenger platform scheme:
// X-Hub-Signature-256 with a sha256= prefix and hex encoding.
func NewMessengerWebhookTemplate(secret string) ChannelWebhookTemplate {
	return ChannelWebhookTemplate{
		Channel: core.ChannelMessenger,
		Header:  "X-Hub-Signature-256",
		Verifier: HeaderHMACVerifier{
			Header: "X-Hub-Signature-256",
			Prefix: "sha256=",
			Secret: strings.TrimSpace(secret),
		},
	}
}

// NewWhatsAppWebhookTemplate returns the WhatsApp Cloud scheme, which signs
// with the same X-Hub-Signature-256 header as Messenger.
func NewWhatsAppWebhookTemplate(secret string) ChannelWebhookTemplate {
	return ChannelWebhookTemplate{
		Channel: core.ChannelWhatsApp,
		Header:  "X-Hub-Signature-256",
		Verifier: HeaderHMACVerifier{
			Header: "X-Hub-Signature-256",
			Prefix: "sha256=",
			Secret: strings.TrimSpace(secret),
		},
	}
}

func authError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.GatewayErrorAuth)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

var _ core.Verifier = HeaderHMACVerifier{}
