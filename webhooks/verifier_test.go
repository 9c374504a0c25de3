package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/goliatone/go-messaging-gateway/core"
)

func signBody(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHeaderHMACVerifierAcceptsValidSignature(t *testing.T) {
	body := []byte(`{"object":"page","entry":[]}`)
	template := NewMessengerWebhookTemplate("app_secret")
	req := core.InboundRequest{
		Channel: core.ChannelMessenger,
		Body:    body,
		Headers: map[string]string{
			"X-Hub-Signature-256": "sha256=" + signBody("app_secret", body),
		},
	}
	if !template.HasSignature(req) {
		t.Fatalf("expected signature header to be detected")
	}
	if err := template.Verifier.Verify(context.Background(), req); err != nil {
		t.Fatalf("verify signature: %v", err)
	}
}

func TestHeaderHMACVerifierRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"object":"page","entry":[]}`)
	signature := "sha256=" + signBody("app_secret", body)

	tampered := append([]byte(nil), body...)
	tampered[0] ^= 0x01

	template := NewMessengerWebhookTemplate("app_secret")
	req := core.InboundRequest{
		Channel: core.ChannelMessenger,
		Body:    tampered,
		Headers: map[string]string{"X-Hub-Signature-256": signature},
	}
	if err := template.Verifier.Verify(context.Background(), req); err == nil {
		t.Fatalf("expected tampered body to fail verification")
	}
}

func TestHeaderHMACVerifierRejectsMalformedSignature(t *testing.T) {
	body := []byte(`{}`)
	template := NewWhatsAppWebhookTemplate("app_secret")
	cases := []struct {
		name      string
		signature string
	}{
		{"not hex", "sha256=zzzz"},
		{"empty after prefix", "sha256="},
		{"missing header", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.signature != "" {
				headers["X-Hub-Signature-256"] = tc.signature
			}
			req := core.InboundRequest{Channel: core.ChannelWhatsApp, Body: body, Headers: headers}
			if err := template.Verifier.Verify(context.Background(), req); err == nil {
				t.Fatalf("expected malformed signature to fail")
			}
		})
	}
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	body := []byte(`{"to":"+15551234567","text":"hello"}`)
	secret := "shared_secret"
	signature := signBody(secret, body)

	if !VerifySignature(body, signature, secret) {
		t.Fatalf("expected valid signature to verify")
	}
	if !VerifySignature(body, "sha256="+signature, secret) {
		t.Fatalf("expected prefixed signature to verify")
	}

	flippedBody := append([]byte(nil), body...)
	flippedBody[3] ^= 0x01
	if VerifySignature(flippedBody, signature, secret) {
		t.Fatalf("expected flipped body byte to fail")
	}

	flippedSig := []byte(signature)
	if flippedSig[0] == 'a' {
		flippedSig[0] = 'b'
	} else {
		flippedSig[0] = 'a'
	}
	if VerifySignature(body, string(flippedSig), secret) {
		t.Fatalf("expected flipped signature byte to fail")
	}

	if VerifySignature(body, signature, "") {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifySignature(body, "not-hex!", secret) {
		t.Fatalf("expected malformed signature to fail")
	}
}

func TestHeaderValueIsCaseInsensitive(t *testing.T) {
	headers := map[string]string{"x-hub-signature-256": " sha256=abc "}
	if got := headerValue(headers, "X-Hub-Signature-256"); got != "sha256=abc" {
		t.Fatalf("expected trimmed case-insensitive lookup, got %q", got)
	}
}
