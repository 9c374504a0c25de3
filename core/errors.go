package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	GatewayErrorValidation = "GATEWAY_VALIDATION"
	GatewayErrorAuth       = "GATEWAY_AUTH"
	GatewayErrorTimeout    = "GATEWAY_TIMEOUT"
	GatewayErrorTransport  = "GATEWAY_TRANSPORT"
	GatewayErrorBackend    = "GATEWAY_BACKEND"
	GatewayErrorInternal   = "GATEWAY_INTERNAL"
)

// GatewayErrorMapper normalizes any error into the gateway error envelope.
// The mapping is total: every error resolves to a category, an HTTP code,
// and one of the gateway text codes.
func GatewayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureGatewayErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "signature"), strings.Contains(msg, "verify token"), strings.Contains(msg, "handshake"):
		return newGatewayError(err.Error(), goerrors.CategoryAuth, GatewayErrorAuth)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return newGatewayError(err.Error(), goerrors.CategoryOperation, GatewayErrorTimeout)
	case strings.Contains(msg, "connection"), strings.Contains(msg, "broker"), strings.Contains(msg, "transport"):
		return newGatewayError(err.Error(), goerrors.CategoryExternal, GatewayErrorTransport)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "malformed"):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorValidation)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureGatewayErrorEnvelope(mapped)
}

func newGatewayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureGatewayErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureGatewayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = gatewayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultGatewayTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultGatewayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return GatewayErrorValidation
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return GatewayErrorAuth
	case goerrors.CategoryExternal:
		return GatewayErrorTransport
	case goerrors.CategoryOperation:
		return GatewayErrorBackend
	default:
		return GatewayErrorInternal
	}
}

func gatewayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	case goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validationError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(GatewayErrorValidation)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
