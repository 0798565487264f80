package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"welcome-keys/internal/domain"
)

type fakeParams struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeParams) GetParameter(_ context.Context, name string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[name]
	if !ok {
		return "", fmt.Errorf("parameter %s not found", name)
	}
	return v, nil
}

type fakeLLM struct {
	chatResponse string
	chatErr      error
	chatModel    string
	chatMessages []domain.ChatMessage

	flagged     bool
	moderateErr error
}

func (f *fakeLLM) Chat(_ context.Context, model string, messages []domain.ChatMessage) (string, error) {
	f.chatModel = model
	f.chatMessages = messages
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chatResponse, nil
}

func (f *fakeLLM) Moderate(_ context.Context, _ string) (bool, error) {
	if f.moderateErr != nil {
		return false, f.moderateErr
	}
	return f.flagged, nil
}

type fakeResolver struct {
	bundle domain.ContentBundle
	err    error
}

func (f *fakeResolver) ResolveByPin(_ context.Context, _ string) (domain.ContentBundle, error) {
	if f.err != nil {
		return domain.ContentBundle{}, f.err
	}
	return f.bundle, nil
}

type statusError struct{ status int }

func (e *statusError) Error() string       { return fmt.Sprintf("upstream status %d", e.status) }
func (e *statusError) HTTPStatusCode() int { return e.status }

func chatFixture() (*fakeParams, *fakeLLM, *fakeResolver) {
	params := &fakeParams{values: map[string]string{
		"/welcome-keys/config/openai_model": "gpt-4o-mini",
	}}
	llm := &fakeLLM{chatResponse: `{"in_scope": true, "answer": "Le départ est à 11h00."}`}
	resolver := &fakeResolver{bundle: domain.ContentBundle{
		Booklet: domain.Booklet{
			ID:             "bk-1",
			PropertyName:   "Les Oliviers",
			CheckOutTime:   "11:00",
			Status:         domain.BookletStatusPublished,
			ChatbotEnabled: true,
		},
		WifiSSID: "LesOliviersGuest",
	}}
	return params, llm, resolver
}

func newChatService(t *testing.T, params ParamGetter, llm LLMClient, resolver BundleResolver) *ChatService {
	t.Helper()
	svc, err := NewChatService(params, llm, resolver, "/welcome-keys", 0)
	require.NoError(t, err)
	return svc
}

func expectChatError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, code, ucErr.Code)
	require.Equal(t, reason, ucErr.Reason)
}

func TestNewChatService_Validation(t *testing.T) {
	params, llm, resolver := chatFixture()

	_, err := NewChatService(nil, llm, resolver, "/welcome-keys", 0)
	require.Error(t, err)
	_, err = NewChatService(params, nil, resolver, "/welcome-keys", 0)
	require.Error(t, err)
	_, err = NewChatService(params, llm, nil, "/welcome-keys", 0)
	require.Error(t, err)
	_, err = NewChatService(params, llm, resolver, "  ", 0)
	require.Error(t, err)
}

func TestNormalizeLocale(t *testing.T) {
	require.Equal(t, LocaleFrench, NormalizeLocale(""))
	require.Equal(t, LocaleFrench, NormalizeLocale("fr"))
	require.Equal(t, LocaleFrench, NormalizeLocale("de"))
	require.Equal(t, LocaleEnglish, NormalizeLocale("en"))
	require.Equal(t, LocaleEnglish, NormalizeLocale(" EN "))
}

func TestAsk_HappyPath(t *testing.T) {
	params, llm, resolver := chatFixture()
	svc := newChatService(t, params, llm, resolver)

	out, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "À quelle heure est le départ ?"})
	require.NoError(t, err)
	require.Equal(t, "Le départ est à 11h00.", out.Answer)
	require.Equal(t, "gpt-4o-mini", llm.chatModel)
}

func TestAsk_MessagesCarryContextButNoHistory(t *testing.T) {
	params, llm, resolver := chatFixture()
	svc := newChatService(t, params, llm, resolver)

	_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Où se garer ?"})
	require.NoError(t, err)

	require.Len(t, llm.chatMessages, 3)
	require.Equal(t, domain.RoleSystem, llm.chatMessages[0].Role)
	require.Equal(t, domain.RoleSystem, llm.chatMessages[1].Role)
	require.Contains(t, llm.chatMessages[1].Content, "Les Oliviers")
	require.Contains(t, llm.chatMessages[1].Content, "Nom du réseau (SSID) : LesOliviersGuest")
	require.Equal(t, domain.RoleUser, llm.chatMessages[2].Role)
	require.Equal(t, "Où se garer ?", llm.chatMessages[2].Content)
}

func TestAsk_PolicyFollowsLocale(t *testing.T) {
	params, llm, resolver := chatFixture()
	svc := newChatService(t, params, llm, resolver)

	_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Parking?", Locale: "en"})
	require.NoError(t, err)
	require.Contains(t, llm.chatMessages[0].Content, "Respond in English.")

	_, err = svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Parking ?", Locale: "pt"})
	require.NoError(t, err)
	require.Contains(t, llm.chatMessages[0].Content, "Respond in French.")
}

func TestAsk_ValidatesMessage(t *testing.T) {
	params, llm, resolver := chatFixture()
	svc := newChatService(t, params, llm, resolver)

	_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "   "})
	expectChatError(t, err, ErrorInvalidInput, "empty_message")

	_, err = svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: strings.Repeat("a", 501)})
	expectChatError(t, err, ErrorInvalidInput, "message_too_long")
}

func TestAsk_ResolverErrorsPropagate(t *testing.T) {
	params, llm, _ := chatFixture()
	resolver := &fakeResolver{err: newError(ErrorNotFound, "pin_not_active", nil)}
	svc := newChatService(t, params, llm, resolver)

	_, err := svc.Ask(context.Background(), ChatInput{Pin: "ZZ00ZZ", Message: "Bonjour"})
	expectChatError(t, err, ErrorNotFound, "pin_not_active")
}

func TestAsk_ChatbotDisabled(t *testing.T) {
	params, llm, resolver := chatFixture()
	resolver.bundle.Booklet.ChatbotEnabled = false
	svc := newChatService(t, params, llm, resolver)

	_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
	expectChatError(t, err, ErrorInvalidInput, "chatbot_disabled")
}

func TestAsk_SSMFailureRetriedNextRequest(t *testing.T) {
	params, llm, resolver := chatFixture()
	params.err = errors.New("ssm down")
	svc := newChatService(t, params, llm, resolver)

	_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
	expectChatError(t, err, ErrorInternal, "ssm_load_error")

	params.err = nil
	out, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Answer)
	require.Equal(t, 2, params.calls)
}

func TestAsk_ModelCachedAcrossRequests(t *testing.T) {
	params, llm, resolver := chatFixture()
	svc := newChatService(t, params, llm, resolver)

	for i := 0; i < 3; i++ {
		_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
		require.NoError(t, err)
	}
	require.Equal(t, 1, params.calls)
}

func TestAsk_ModerationFlaggedReturnsFallback(t *testing.T) {
	params, llm, resolver := chatFixture()
	llm.flagged = true
	svc := newChatService(t, params, llm, resolver)

	out, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "question douteuse"})
	require.NoError(t, err)
	require.Equal(t, fallbackAnswerFR, out.Answer)

	out, err = svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "dubious question", Locale: "en"})
	require.NoError(t, err)
	require.Equal(t, fallbackAnswerEN, out.Answer)
}

func TestAsk_ModerationErrors(t *testing.T) {
	params, llm, resolver := chatFixture()
	llm.moderateErr = &statusError{status: 429}
	svc := newChatService(t, params, llm, resolver)
	_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
	expectChatError(t, err, ErrorRateLimited, "moderation_rate_limited")

	llm.moderateErr = &statusError{status: 500}
	_, err = svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
	expectChatError(t, err, ErrorUpstream, "moderation_error")
}

func TestAsk_CompletionErrors(t *testing.T) {
	params, llm, resolver := chatFixture()
	llm.chatErr = &statusError{status: 429}
	svc := newChatService(t, params, llm, resolver)
	_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
	expectChatError(t, err, ErrorRateLimited, "openai_rate_limited")

	llm.chatErr = errors.New("connection reset")
	_, err = svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
	expectChatError(t, err, ErrorUpstream, "openai_error")
}

func TestAsk_OutOfScopeReturnsFallback(t *testing.T) {
	params, llm, resolver := chatFixture()
	llm.chatResponse = `{"in_scope": false, "answer": ""}`
	svc := newChatService(t, params, llm, resolver)

	out, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Qui a gagné le match ?"})
	require.NoError(t, err)
	require.Equal(t, fallbackAnswerFR, out.Answer)
}

func TestAsk_MalformedModelResponse(t *testing.T) {
	cases := []string{
		"not json",
		`{"in_scope": true, "answer": "ok"} trailing`,
		`{"in_scope": true, "answer": "ok", "extra": 1}`,
		`{"in_scope": true, "answer": "  "}`,
	}
	for _, raw := range cases {
		params, llm, resolver := chatFixture()
		llm.chatResponse = raw
		svc := newChatService(t, params, llm, resolver)

		_, err := svc.Ask(context.Background(), ChatInput{Pin: "AB12CD", Message: "Bonjour"})
		expectChatError(t, err, ErrorUpstream, "openai_malformed_response")
	}
}

func TestParseScopedAnswer(t *testing.T) {
	out, err := parseScopedAnswer(` {"in_scope": true, "answer": "Réponse."} `)
	require.NoError(t, err)
	require.True(t, out.InScope)
	require.Equal(t, "Réponse.", out.Answer)

	out, err = parseScopedAnswer(`{"in_scope": false, "answer": ""}`)
	require.NoError(t, err)
	require.False(t, out.InScope)
}
