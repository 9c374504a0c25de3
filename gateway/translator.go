package gateway

import (
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-messaging-gateway/core"
)

// ErrorKind is the outward taxonomy. Every failure the gateway reports
// resolves to exactly one kind.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "VALIDATION"
	ErrorKindAuth       ErrorKind = "AUTH"
	ErrorKindTimeout    ErrorKind = "TIMEOUT"
	ErrorKindTransport  ErrorKind = "TRANSPORT"
	ErrorKindBackend    ErrorKind = "BACKEND"
)

// Error is the translated outward error: a taxonomy kind, a caller-safe
// message, and the source detail for diagnostics.
type Error struct {
	Kind         ErrorKind      `json:"kind"`
	Message      string         `json:"message"`
	SourceDetail string         `json:"sourceDetail,omitempty"`
	StatusCode   int            `json:"statusCode"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (e Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Translate maps any error to the outward shape. It is total: the input is
// first normalized into the gateway error envelope, then mapped by text
// code, falling back on category for errors tagged elsewhere.
func Translate(err error) Error {
	mapped := core.GatewayErrorMapper(err)

	kind := kindForTextCode(mapped.TextCode)
	if kind == "" {
		kind = kindForCategory(mapped.Category)
	}

	translated := Error{
		Kind:       kind,
		Message:    mapped.Message,
		StatusCode: mapped.Code,
		Metadata:   mapped.Metadata,
	}
	if detail, ok := mapped.Metadata["detail"].(string); ok {
		translated.SourceDetail = detail
	} else if full := mapped.Error(); full != mapped.Message {
		translated.SourceDetail = full
	}
	return translated
}

func kindForTextCode(textCode string) ErrorKind {
	switch textCode {
	case core.GatewayErrorValidation:
		return ErrorKindValidation
	case core.GatewayErrorAuth:
		return ErrorKindAuth
	case core.GatewayErrorTimeout:
		return ErrorKindTimeout
	case core.GatewayErrorTransport:
		return ErrorKindTransport
	case core.GatewayErrorBackend:
		return ErrorKindBackend
	}
	return ""
}

func kindForCategory(category goerrors.Category) ErrorKind {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorKindValidation
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorKindAuth
	case goerrors.CategoryExternal:
		return ErrorKindBackend
	}
	return ErrorKindTransport
}
