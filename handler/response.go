package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"welcome-keys/internal/usecase"
)

const (
	headerContentType   = "Content-Type"
	headerCacheControl  = "Cache-Control"
	headerAllowOrigin   = "Access-Control-Allow-Origin"
	headerCorrelationID = "X-Correlation-Id"

	// Published content changes rarely; intermediaries may keep it briefly.
	// Wi-Fi and chat responses must never be stored anywhere.
	cacheBooklet = "public, max-age=120"
	cacheNoStore = "no-store"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// correlationID reuses the caller's id when present (any header casing) and
// mints one otherwise.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, headerCorrelationID) && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return uuid.NewString()
}

func jsonResponse(status int, cacheControl, corrID string, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers: map[string]string{
				headerContentType:   "application/json",
				headerCacheControl:  cacheNoStore,
				headerAllowOrigin:   "*",
				headerCorrelationID: corrID,
			},
			Body: `{"error":"INTERNAL_ERROR","message":""}`,
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			headerContentType:   "application/json",
			headerCacheControl:  cacheControl,
			headerAllowOrigin:   "*",
			headerCorrelationID: corrID,
		},
		Body: string(body),
	}, nil
}

// statusFor maps the usecase taxonomy to HTTP statuses.
func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorNotFound, usecase.ErrorNotPublished, usecase.ErrorNoCredentials:
		return http.StatusNotFound
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicCode collapses NOT_PUBLISHED into NOT_FOUND before anything reaches
// a guest: an unpublished booklet must be indistinguishable from an unknown
// code, including in the machine-readable error field.
func publicCode(code usecase.ErrorCode) usecase.ErrorCode {
	if code == usecase.ErrorNotPublished {
		return usecase.ErrorNotFound
	}
	if code == usecase.ErrorLookupFailed {
		return usecase.ErrorInternal
	}
	return code
}

func guestMessage(code usecase.ErrorCode, locale string) string {
	en := locale == usecase.LocaleEnglish
	switch code {
	case usecase.ErrorInvalidInput:
		if en {
			return "Invalid request."
		}
		return "Requête invalide."
	case usecase.ErrorNotFound, usecase.ErrorNotPublished:
		if en {
			return "Invalid or expired code."
		}
		return "Code invalide ou expiré."
	case usecase.ErrorNoCredentials:
		if en {
			return "This property has no Wi-Fi."
		}
		return "Ce logement ne dispose pas de Wi-Fi."
	case usecase.ErrorRateLimited, usecase.ErrorUpstream:
		if en {
			return "Service temporarily unavailable, try again shortly."
		}
		return "Service temporairement indisponible, réessayez dans un instant."
	default:
		if en {
			return "Something went wrong, please try again."
		}
		return "Une erreur est survenue, veuillez réessayer."
	}
}

// errorFor translates any error into a guest-safe status and body. Raw store
// or provider error text never crosses this boundary.
func errorFor(err error, locale string) (int, errorResponse) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, errorResponse{
			Error:   string(usecase.ErrorInternal),
			Message: guestMessage(usecase.ErrorInternal, locale),
		}
	}
	return statusFor(ucErr.Code), errorResponse{
		Error:   string(publicCode(ucErr.Code)),
		Message: guestMessage(ucErr.Code, locale),
	}
}
