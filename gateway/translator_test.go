package gateway

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-messaging-gateway/core"
)

func TestTranslateByTextCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{
			"validation",
			goerrors.New("bad payload", goerrors.CategoryBadInput).WithTextCode(core.GatewayErrorValidation),
			ErrorKindValidation,
		},
		{
			"auth",
			goerrors.New("bad signature", goerrors.CategoryAuth).WithTextCode(core.GatewayErrorAuth),
			ErrorKindAuth,
		},
		{
			"timeout",
			goerrors.New("no reply", goerrors.CategoryOperation).WithTextCode(core.GatewayErrorTimeout),
			ErrorKindTimeout,
		},
		{
			"transport",
			goerrors.New("broker gone", goerrors.CategoryExternal).WithTextCode(core.GatewayErrorTransport),
			ErrorKindTransport,
		},
		{
			"backend",
			goerrors.New("worker failed", goerrors.CategoryExternal).WithTextCode(core.GatewayErrorBackend),
			ErrorKindBackend,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			translated := Translate(tc.err)
			if translated.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, translated.Kind)
			}
			if translated.Message == "" {
				t.Fatal("expected a message")
			}
		})
	}
}

func TestTranslateCategoryFallback(t *testing.T) {
	// Errors tagged elsewhere can carry text codes outside the gateway
	// taxonomy; those fall back to their category.
	cases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"bad input", goerrors.New("odd shape", goerrors.CategoryBadInput).WithTextCode("UPSTREAM_SHAPE"), ErrorKindValidation},
		{"authz", goerrors.New("forbidden", goerrors.CategoryAuthz).WithTextCode("UPSTREAM_FORBIDDEN"), ErrorKindAuth},
		{"external", goerrors.New("downstream", goerrors.CategoryExternal).WithTextCode("UPSTREAM_FAULT"), ErrorKindBackend},
		{"untagged category", goerrors.New("scheduler stalled", goerrors.CategoryOperation).WithTextCode("UPSTREAM_STALL"), ErrorKindTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if translated := Translate(tc.err); translated.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, translated.Kind)
			}
		})
	}
}

func TestTranslateIsTotalOverPlainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"signature wording", errors.New("invalid signature on request"), ErrorKindAuth},
		{"timeout wording", errors.New("operation timeout exceeded"), ErrorKindTimeout},
		{"connection wording", errors.New("connection reset by peer"), ErrorKindTransport},
		{"required wording", errors.New("field to is required"), ErrorKindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			translated := Translate(tc.err)
			if translated.Kind != tc.kind {
				t.Fatalf("expected kind %s for %q, got %s", tc.kind, tc.err, translated.Kind)
			}
		})
	}
}

func TestTranslateCarriesBackendDetail(t *testing.T) {
	err := goerrors.New("dispatch: backend error: recipient not found", goerrors.CategoryExternal).
		WithTextCode(core.GatewayErrorBackend).
		WithMetadata(map[string]any{"detail": "recipient not found"})
	translated := Translate(err)
	if translated.Kind != ErrorKindBackend {
		t.Fatalf("expected BACKEND, got %s", translated.Kind)
	}
	if translated.SourceDetail != "recipient not found" {
		t.Fatalf("expected backend detail preserved, got %q", translated.SourceDetail)
	}
}

func TestErrorStringIncludesKind(t *testing.T) {
	err := Error{Kind: ErrorKindTimeout, Message: "no reply"}
	if err.Error() != "TIMEOUT: no reply" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}
