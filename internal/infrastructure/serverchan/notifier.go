package serverchan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ManuscriptTracker/internal/ports"
)

const (
	// DefaultEndpoint is the ServerChan "Turbo" API host.
	DefaultEndpoint = "https://sctapi.ftqq.com"

	// PlaceholderKey is the template value that means "not configured".
	PlaceholderKey = "your_sendkey_here"
)

var (
	// ErrNotConfigured is returned when no usable send key is set.
	ErrNotConfigured = errors.New("serverchan send key is not configured")
	// ErrRejected is returned when the API answers with a non-zero code.
	ErrRejected = errors.New("serverchan rejected the message")
)

// Notifier pushes messages to WeChat through ServerChan.
type Notifier struct {
	sendKey  string
	endpoint string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// Configured reports whether key is a real send key.
func Configured(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderKey
}

// NewNotifier builds a notifier; an empty endpoint means DefaultEndpoint.
func NewNotifier(sendKey, endpoint string) *Notifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Notifier{
		sendKey:  strings.TrimSpace(sendKey),
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   resty.New().SetTimeout(10 * time.Second),
	}
}

// Name identifies the channel inside the registry.
func (n *Notifier) Name() string {
	return "serverchan"
}

type response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r response) message() string {
	if r.Message == "" {
		return "unknown error"
	}
	return r.Message
}

// Send posts title and markdown body; only code 0 counts as delivered.
func (n *Notifier) Send(ctx context.Context, title, body string) error {
	if !Configured(n.sendKey) {
		return ErrNotConfigured
	}

	var out, failure response
	res, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"title": title,
			"desp":  body,
		}).
		SetResult(&out).
		SetError(&failure).
		Post(fmt.Sprintf("%s/%s.send", n.endpoint, n.sendKey))
	if err != nil {
		return fmt.Errorf("post serverchan: %w", err)
	}

	if !res.IsSuccess() {
		if failure.Code != 0 {
			return fmt.Errorf("%w: %s: code %d: %s", ErrRejected, res.Status(), failure.Code, failure.message())
		}
		return fmt.Errorf("serverchan returned %s", res.Status())
	}
	if ct := res.Header().Get("Content-Type"); !strings.Contains(ct, "json") {
		return fmt.Errorf("serverchan returned %s with content type %q", res.Status(), ct)
	}
	if out.Code != 0 {
		return fmt.Errorf("%w: code %d: %s", ErrRejected, out.Code, out.message())
	}

	return nil
}
