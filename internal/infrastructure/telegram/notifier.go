package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ManuscriptTracker/internal/ports"
)

// DefaultAPIBase is the public Bot API host.
const DefaultAPIBase = "https://api.telegram.org"

// ErrMisconfigured is returned when the bot token or chat is missing.
var ErrMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier; an empty apiBase
// means DefaultAPIBase.
func NewNotifier(botToken, chatID, apiBase string) *Notifier {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  strings.TrimRight(apiBase, "/"),
		client:   resty.New().SetTimeout(5 * time.Second),
	}
}

// Name identifies the channel inside the registry.
func (n *Notifier) Name() string {
	return "telegram"
}

// Send posts the title and body as one Markdown message.
func (n *Notifier) Send(ctx context.Context, title, body string) error {
	if n.botToken == "" || n.chatID == "" {
		return ErrMisconfigured
	}

	text := body
	if title != "" {
		text = title + "\n\n" + body
	}

	res, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    n.chatID,
			"text":       text,
			"parse_mode": "Markdown",
		}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken))
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if !res.IsSuccess() {
		return fmt.Errorf("telegram error: %s", res.Status())
	}

	return nil
}
