package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"

	"welcome-keys/internal/domain"
)

// State is the widget's visibility state. There is no terminal state; the
// widget can be reopened indefinitely and the transcript only dies with the
// process (a page reload, in browser terms).
type State int

const (
	StateClosed State = iota
	StateOpen
)

var (
	// ErrClosed: Send was called while the widget is closed.
	ErrClosed = errors.New("chatclient: widget is closed")
	// ErrBusy: a request is already in flight; submit stays disabled while
	// Sending so one guest session never has two concurrent turns.
	ErrBusy = errors.New("chatclient: a message is already being sent")
	// ErrEmptyMessage: blank input is rejected before touching the transcript.
	ErrEmptyMessage = errors.New("chatclient: message must not be empty")
)

// Asker is the request pipeline the widget drives; *Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, pin, message, locale string) (string, error)
}

// Widget owns the transcript and the Closed/Open/Sending lifecycle. The user
// message is appended optimistically before the network call resolves, and
// every Sending episode ends with exactly one assistant message: the answer,
// or a localized error line. The transcript therefore always stays
// response-symmetric with requests.
type Widget struct {
	asker  Asker
	pin    string
	locale string

	mu         sync.Mutex
	state      State
	sending    bool
	transcript []domain.ChatMessage
}

// NewWidget creates a closed widget bound to one guest PIN.
func NewWidget(asker Asker, pin, locale string) (*Widget, error) {
	if asker == nil {
		return nil, errors.New("chatclient: asker must not be nil")
	}
	if strings.TrimSpace(pin) == "" {
		return nil, errors.New("chatclient: pin must not be empty")
	}
	if !strings.EqualFold(strings.TrimSpace(locale), localeEnglish) {
		locale = localeFrench
	} else {
		locale = localeEnglish
	}
	return &Widget{asker: asker, pin: pin, locale: locale}, nil
}

// Open shows the widget. Reopening never clears the transcript.
func (w *Widget) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateOpen
}

// Close hides the widget, keeping the transcript intact.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateClosed
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Sending reports whether a request is in flight (submit disabled).
func (w *Widget) Sending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sending
}

// Transcript returns a copy of the in-memory transcript.
func (w *Widget) Transcript() []domain.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.ChatMessage, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// Send submits one guest turn. On failure the returned error describes what
// happened, and the transcript still gains its assistant line, so callers
// may ignore the error entirely and just re-render.
func (w *Widget) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	w.mu.Lock()
	if w.state != StateOpen {
		w.mu.Unlock()
		return "", ErrClosed
	}
	if w.sending {
		w.mu.Unlock()
		return "", ErrBusy
	}
	w.sending = true
	w.transcript = append(w.transcript, domain.ChatMessage{Role: domain.RoleUser, Content: message})
	w.mu.Unlock()

	answer, err := w.asker.Ask(ctx, w.pin, message, w.locale)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sending = false
	if err != nil {
		w.transcript = append(w.transcript, domain.ChatMessage{
			Role:    domain.RoleAssistant,
			Content: w.errorLine(err),
		})
		return "", err
	}
	w.transcript = append(w.transcript, domain.ChatMessage{Role: domain.RoleAssistant, Content: answer})
	return answer, nil
}

func (w *Widget) errorLine(err error) string {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.GuestMessage(w.locale)
	}
	if w.locale == localeEnglish {
		return "Something went wrong, please try again."
	}
	return "Une erreur est survenue, veuillez réessayer."
}
