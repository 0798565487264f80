// Package chatclient is the Go model of the guest chat widget: a small
// open/closed state machine over an in-memory transcript, and the bounded
// retry pipeline it uses to talk to the chat endpoint.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	localeFrench  = "fr"
	localeEnglish = "en"
)

const (
	// attemptTimeout bounds each attempt; exceeding it aborts the in-flight
	// request and surfaces immediately.
	attemptTimeout = 12 * time.Second
	// maxAttempts is the total attempt budget for retryable statuses.
	maxAttempts = 3
	// backoffUnit is multiplied by the attempt number: 800ms, then 1600ms.
	backoffUnit = 800 * time.Millisecond
)

type askRequest struct {
	Pin     string `json:"pin"`
	Message string `json:"message"`
	Locale  string `json:"locale,omitempty"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client posts one guest turn to the chat endpoint with the widget's
// timeout/retry policy. At most one request is in flight per widget; the
// widget enforces that, not the client.
type Client struct {
	endpoint   string
	httpClient *http.Client

	// Seams for tests; real widgets never touch these.
	sleep          func(time.Duration)
	attemptTimeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the given chat-ask endpoint URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("chatclient: endpoint must not be empty")
	}
	c := &Client{
		endpoint:       endpoint,
		httpClient:     &http.Client{},
		sleep:          time.Sleep,
		attemptTimeout: attemptTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ask runs up to three attempts for retryable HTTP statuses (429, 500, 502,
// 503, 504) with linear backoff between them. Timeouts, network failures and
// other 4xx surface after a single attempt.
func (c *Client) Ask(ctx context.Context, pin, message, locale string) (string, error) {
	for attempt := 1; ; attempt++ {
		answer, err := c.attempt(ctx, pin, message, locale)
		if err == nil {
			return answer, nil
		}

		var clientErr *Error
		if !errors.As(err, &clientErr) {
			return "", err
		}
		if !clientErr.Retryable() || attempt >= maxAttempts {
			return "", err
		}
		c.sleep(backoffUnit * time.Duration(attempt))
	}
}

func (c *Client) attempt(ctx context.Context, pin, message, locale string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	body, err := json.Marshal(askRequest{Pin: pin, Message: message, Locale: locale})
	if err != nil {
		return "", &Error{Kind: KindProtocol, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindProtocol, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
			return "", &Error{Kind: KindTimeout, Err: err}
		}
		return "", &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: fmt.Errorf("read response: %w", err)}
	}

	if res.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return "", &Error{Kind: KindHTTP, Status: res.StatusCode, Code: eb.Error}
	}

	var out askResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &Error{Kind: KindProtocol, Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.TrimSpace(out.Answer) == "" {
		return "", &Error{Kind: KindProtocol, Err: errors.New("empty answer")}
	}
	return out.Answer, nil
}
