package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"welcome-keys/internal/usecase"
)

type stubAsker struct {
	out      usecase.ChatOutput
	err      error
	lastIn   usecase.ChatInput
	askCalls int
}

func (s *stubAsker) Ask(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	s.askCalls++
	s.lastIn = in
	if s.err != nil {
		return usecase.ChatOutput{}, s.err
	}
	return s.out, nil
}

func chatEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/chat-ask",
		Body:       body,
	}
}

func TestNewChatHandler_NilAsker(t *testing.T) {
	_, err := NewChatHandler(nil)
	require.Error(t, err)
}

func TestChatHandle_Success(t *testing.T) {
	asker := &stubAsker{out: usecase.ChatOutput{Answer: "Le départ est à 11h00."}}
	h, err := NewChatHandler(asker)
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), chatEvent(`{"pin":"AB12CD","message":"Heure de départ ?","locale":"fr"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "no-store", res.Headers["Cache-Control"])
	require.Equal(t, usecase.ChatInput{Pin: "AB12CD", Message: "Heure de départ ?", Locale: "fr"}, asker.lastIn)

	var body askResponse
	require.NoError(t, json.Unmarshal([]byte(res.Body), &body))
	require.Equal(t, "Le départ est à 11h00.", body.Answer)
}

func TestChatHandle_MalformedBody(t *testing.T) {
	asker := &stubAsker{}
	h, err := NewChatHandler(asker)
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), chatEvent(`{"pin":`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Contains(t, res.Body, `"error":"INVALID_INPUT"`)
	require.Zero(t, asker.askCalls)
}

func TestChatHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        *usecase.Error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty message",
			err:        &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "empty_message"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "unknown pin",
			err:        &usecase.Error{Code: usecase.ErrorNotFound, Reason: "pin_not_active"},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unpublished booklet",
			err:        &usecase.Error{Code: usecase.ErrorNotPublished, Reason: "booklet_not_published"},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "provider rate limited",
			err:        &usecase.Error{Code: usecase.ErrorRateLimited, Reason: "openai_rate_limited"},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
		{
			name:       "provider unavailable",
			err:        &usecase.Error{Code: usecase.ErrorUpstream, Reason: "openai_error"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "UPSTREAM_UNAVAILABLE",
		},
		{
			name:       "config failure",
			err:        &usecase.Error{Code: usecase.ErrorInternal, Reason: "ssm_load_error"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewChatHandler(&stubAsker{err: tc.err})
			require.NoError(t, err)

			res, err := h.Handle(context.Background(), chatEvent(`{"pin":"AB12CD","message":"Bonjour"}`))
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, res.StatusCode)

			var body errorResponse
			require.NoError(t, json.Unmarshal([]byte(res.Body), &body))
			require.Equal(t, tc.wantCode, body.Error)
			require.NotEmpty(t, body.Message)
		})
	}
}

func TestChatHandle_ErrorMessageFollowsLocale(t *testing.T) {
	upstream := &usecase.Error{Code: usecase.ErrorUpstream, Reason: "openai_error"}

	h, err := NewChatHandler(&stubAsker{err: upstream})
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), chatEvent(`{"pin":"AB12CD","message":"Hello","locale":"en"}`))
	require.NoError(t, err)
	require.Contains(t, res.Body, "Service temporarily unavailable")

	res, err = h.Handle(context.Background(), chatEvent(`{"pin":"AB12CD","message":"Bonjour","locale":"nl"}`))
	require.NoError(t, err)
	require.Contains(t, res.Body, "Service temporairement indisponible")
}

func TestChatHandle_CorrelationIDMinted(t *testing.T) {
	h, err := NewChatHandler(&stubAsker{out: usecase.ChatOutput{Answer: "ok"}})
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), chatEvent(`{"pin":"AB12CD","message":"Bonjour"}`))
	require.NoError(t, err)
	require.NotEmpty(t, res.Headers["X-Correlation-Id"])
}
