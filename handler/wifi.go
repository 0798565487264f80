package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"welcome-keys/internal/domain"
	"welcome-keys/internal/usecase"
)

// WifiResolver is the resolver surface the Wi-Fi endpoint needs.
type WifiResolver interface {
	ResolveWifiByPin(ctx context.Context, rawCode string) (domain.WifiCredential, error)
}

// WifiHandler serves GET /wifi-by-pin/{code}. Its response carries exactly
// two fields and a no-store directive; guests asking for Wi-Fi never receive
// house rules or emergency contacts incidentally.
type WifiHandler struct {
	resolver WifiResolver
}

func NewWifiHandler(resolver WifiResolver) (*WifiHandler, error) {
	if resolver == nil {
		return nil, errors.New("handler: resolver must not be nil")
	}
	return &WifiHandler{resolver: resolver}, nil
}

type wifiResponse struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

func (h *WifiHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)

	code := event.PathParameters["code"]
	if code == "" {
		status, body := errorFor(usecase.NewInvalidInput("missing_code"), usecase.LocaleFrench)
		return jsonResponse(status, cacheNoStore, corrID, body)
	}

	cred, err := h.resolver.ResolveWifiByPin(ctx, code)
	if err != nil {
		status, body := errorFor(err, usecase.LocaleFrench)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "wifi resolution failed", "correlationId", corrID, "err", err)
		}
		return jsonResponse(status, cacheNoStore, corrID, body)
	}

	return jsonResponse(http.StatusOK, cacheNoStore, corrID, wifiResponse{SSID: cred.SSID, Password: cred.Password})
}
