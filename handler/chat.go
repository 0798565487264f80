package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"welcome-keys/internal/usecase"
)

// ChatAsker is the chat surface the endpoint needs.
type ChatAsker interface {
	Ask(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// ChatHandler serves POST /chat-ask. One request, one answer; nothing
// cached, nothing persisted.
type ChatHandler struct {
	asker ChatAsker
}

func NewChatHandler(asker ChatAsker) (*ChatHandler, error) {
	if asker == nil {
		return nil, errors.New("handler: asker must not be nil")
	}
	return &ChatHandler{asker: asker}, nil
}

type askRequest struct {
	Pin     string `json:"pin"`
	Message string `json:"message"`
	Locale  string `json:"locale"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *ChatHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)

	var req askRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		status, body := errorFor(usecase.NewInvalidInput("malformed_body"), usecase.LocaleFrench)
		return jsonResponse(status, cacheNoStore, corrID, body)
	}

	out, err := h.asker.Ask(ctx, usecase.ChatInput{Pin: req.Pin, Message: req.Message, Locale: req.Locale})
	if err != nil {
		status, body := errorFor(err, usecase.NormalizeLocale(req.Locale))
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "chat ask failed", "correlationId", corrID, "err", err)
		}
		return jsonResponse(status, cacheNoStore, corrID, body)
	}

	return jsonResponse(http.StatusOK, cacheNoStore, corrID, askResponse{Answer: out.Answer})
}
