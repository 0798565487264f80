package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"welcome-keys/internal/domain"
)

const (
	defaultMaxMessageLen = 500

	LocaleFrench  = "fr"
	LocaleEnglish = "en"
)

// Fallback replies sent verbatim when a question cannot be answered from the
// booklet. Fixed strings, so the front end can also key off them.
const (
	fallbackAnswerFR = "Je n'ai pas cette information dans le livret ; contactez votre conciergerie."
	fallbackAnswerEN = "I don't have this information in the booklet; please contact your concierge."
)

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
	Moderate(ctx context.Context, input string) (bool, error)
}

// BundleResolver is the slice of ResolveService the chat path depends on: a
// guest may only chat against a booklet their PIN resolves.
type BundleResolver interface {
	ResolveByPin(ctx context.Context, rawCode string) (domain.ContentBundle, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ChatService answers one guest question against one booklet's content.
// Server-side the exchange is stateless: the context document is rebuilt on
// every request and no transcript is persisted or sent upstream.
type ChatService struct {
	params        ParamGetter
	llm           LLMClient
	resolver      BundleResolver
	paramPrefix   string
	maxMessageLen int

	cacheMu     sync.RWMutex
	cacheLoaded bool
	model       string
}

type ChatInput struct {
	Pin     string
	Message string
	Locale  string
}

type ChatOutput struct {
	Answer string
}

func NewChatService(p ParamGetter, llm LLMClient, resolver BundleResolver, paramPrefix string, maxMessageLen int) (*ChatService, error) {
	if p == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if resolver == nil {
		return nil, errors.New("usecase: resolver must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessageLen
	}
	return &ChatService{
		params:        p,
		llm:           llm,
		resolver:      resolver,
		paramPrefix:   paramPrefix,
		maxMessageLen: maxMessageLen,
	}, nil
}

// NormalizeLocale defaults unknown values to French, the product's primary
// language.
func NormalizeLocale(locale string) string {
	if strings.EqualFold(strings.TrimSpace(locale), LocaleEnglish) {
		return LocaleEnglish
	}
	return LocaleFrench
}

func fallbackAnswer(locale string) string {
	if locale == LocaleEnglish {
		return fallbackAnswerEN
	}
	return fallbackAnswerFR
}

func (s *ChatService) Ask(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > s.maxMessageLen {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	locale := NormalizeLocale(in.Locale)

	bundle, err := s.resolver.ResolveByPin(ctx, in.Pin)
	if err != nil {
		return ChatOutput{}, err
	}
	if !bundle.Booklet.ChatbotEnabled {
		return ChatOutput{}, newError(ErrorInvalidInput, "chatbot_disabled", nil)
	}

	if err := s.ensureConfig(ctx); err != nil {
		return ChatOutput{}, newError(ErrorInternal, "ssm_load_error", err)
	}

	flagged, err := s.llm.Moderate(ctx, message)
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return ChatOutput{}, newError(ErrorRateLimited, "moderation_rate_limited", err)
		}
		return ChatOutput{}, newError(ErrorUpstream, "moderation_error", err)
	}
	if flagged {
		// Flagged input gets the scoped fallback rather than an error so the
		// widget transcript stays response-symmetric.
		return ChatOutput{Answer: fallbackAnswer(locale)}, nil
	}

	raw, err := s.llm.Chat(ctx, s.cachedModel(), buildChatMessages(AssembleContext(bundle), message, locale))
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return ChatOutput{}, newError(ErrorRateLimited, "openai_rate_limited", err)
		}
		return ChatOutput{}, newError(ErrorUpstream, "openai_error", err)
	}

	decision, err := parseScopedAnswer(raw)
	if err != nil {
		return ChatOutput{}, newError(ErrorUpstream, "openai_malformed_response", err)
	}
	if !decision.InScope {
		return ChatOutput{Answer: fallbackAnswer(locale)}, nil
	}
	return ChatOutput{Answer: decision.Answer}, nil
}

func (s *ChatService) cachedModel() string {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.model
}

// ensureConfig loads the model name from SSM on first use and caches it for
// the process lifetime; a failed load is retried on the next request.
func (s *ChatService) ensureConfig(ctx context.Context) error {
	s.cacheMu.RLock()
	if s.cacheLoaded {
		s.cacheMu.RUnlock()
		return nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return nil
	}

	model, err := s.params.GetParameter(ctx, s.paramPrefix+"/config/openai_model")
	if err != nil {
		return err
	}
	if strings.TrimSpace(model) == "" {
		return errors.New("usecase: openai model parameter is empty")
	}

	s.model = model
	s.cacheLoaded = true
	return nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
