package chatclient

import "fmt"

// Kind classifies a failed Sending episode for retry and messaging purposes.
type Kind int

const (
	// KindTimeout: the 12s attempt budget elapsed and the request was aborted.
	KindTimeout Kind = iota + 1
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork
	// KindHTTP: the server answered with a non-200 status.
	KindHTTP
	// KindProtocol: a 200 response whose body could not be used.
	KindProtocol
)

// retryableStatuses are the only failures worth another attempt; everything
// else surfaces immediately.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// Error is the terminal failure of one Send.
type Error struct {
	Kind   Kind
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "chatclient: attempt timed out"
	case KindNetwork:
		return fmt.Sprintf("chatclient: network failure: %v", e.Err)
	case KindHTTP:
		return fmt.Sprintf("chatclient: server returned status %d (%s)", e.Status, e.Code)
	default:
		return fmt.Sprintf("chatclient: unusable response: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether another attempt may help. Timeouts and network
// failures are deliberately not retried from the widget.
func (e *Error) Retryable() bool {
	return e.Kind == KindHTTP && retryableStatuses[e.Status]
}

// GuestMessage renders the localized transcript line for this failure.
func (e *Error) GuestMessage(locale string) string {
	en := locale == localeEnglish
	switch e.Kind {
	case KindTimeout:
		if en {
			return "The request took too long, please try again."
		}
		return "La demande a pris trop de temps, veuillez réessayer."
	case KindNetwork:
		if en {
			return "Please check your internet connection."
		}
		return "Vérifiez votre connexion internet."
	case KindHTTP:
		switch {
		case e.Status == 404:
			if en {
				return "Invalid or expired code."
			}
			return "Code invalide ou expiré."
		case e.Status >= 400 && e.Status < 500 && e.Status != 429:
			if en {
				return "Your message could not be sent."
			}
			return "Votre message n'a pas pu être envoyé."
		}
	}
	if en {
		return "Service temporarily unavailable, try again shortly."
	}
	return "Service temporairement indisponible, réessayez dans un instant."
}
