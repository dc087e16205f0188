package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"ManuscriptTracker/internal/domain"
	"ManuscriptTracker/internal/ports"
)

var tracer = otel.Tracer("ManuscriptTracker/portal")

var (
	// ErrInvalidCredentials means the portal answered but did not authenticate.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrForeignSession is returned for sessions not created by this Client.
	ErrForeignSession = errors.New("session was not created by the portal client")
)

// Client talks to the manuscript portal. It implements the session manager,
// the category discoverer and the table extractor.
type Client struct {
	opts    Options
	base    *url.URL
	logger  *slog.Logger
	limiter *rate.Limiter
}

var (
	_ ports.SessionManager     = (*Client)(nil)
	_ ports.CategoryDiscoverer = (*Client)(nil)
	_ ports.TableExtractor     = (*Client)(nil)
)

// NewClient validates the base URL and fills unset options with defaults.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	opts = opts.withDefaults()

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		opts:    opts,
		base:    base,
		logger:  logger,
		limiter: newLimiter(opts.RequestsPerSecond),
	}, nil
}

// Session is an authenticated cookie-bearing client for one account.
type Session struct {
	account    domain.Account
	http       *resty.Client
	journalURL *url.URL
}

// Account returns the account the session was opened for.
func (s *Session) Account() domain.Account {
	return s.account
}

// JournalURL is the journal-scoped base, always ending with a slash.
func (s *Session) JournalURL() string {
	return s.journalURL.String()
}

// MainMenuURL is the author landing page listing the categories.
func (s *Session) MainMenuURL() string {
	return s.resolve("AuthorMainMenu.aspx")
}

func (s *Session) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return s.journalURL.String() + ref
	}
	return s.journalURL.ResolveReference(u).String()
}

func (c *Client) journalURL(account domain.Account) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + url.PathEscape(account.ShortName) + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return &u
}

// Login posts the credentials and retries transient failures according to
// the configured policy. A rejected login is never retried.
func (c *Client) Login(ctx context.Context, account domain.Account) (ports.Session, error) {
	ctx, span := tracer.Start(ctx, "portal:Login", trace.WithAttributes(
		attribute.String("journal", account.ShortName),
	))
	defer span.End()

	journal := c.journalURL(account)
	loginURL := journal.String() + "LoginAction.ashx"

	c.logger.Info("logging in", "journal", account.DisplayName(), "username", account.Username)

	var session *Session
	err := c.opts.Retry.Run(ctx, func(attempt int) error {
		s, err := c.attemptLogin(ctx, account, journal, loginURL)
		if err != nil {
			return err
		}
		session = s
		return nil
	}, func(attempt int, err error) {
		c.logger.Warn("login attempt failed, retrying",
			"journal", account.ShortName,
			"attempt", attempt,
			"retry_in", c.opts.Retry.Delay,
			"error", err,
		)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		if errors.Is(err, ErrInvalidCredentials) {
			c.logger.Error("login rejected, check the account", "journal", account.ShortName, "username", account.Username)
		} else {
			c.logger.Error("all login attempts failed", "journal", account.ShortName, "username", account.Username, "error", err)
		}
		return nil, fmt.Errorf("login %s: %w", account.ShortName, err)
	}

	c.logger.Info("login succeeded", "journal", account.ShortName, "username", account.Username)
	return session, nil
}

func (c *Client) attemptLogin(ctx context.Context, account domain.Account, journal *url.URL, loginURL string) (*Session, error) {
	httpClient, err := c.newHTTPClient()
	if err != nil {
		return nil, Permanent(err)
	}

	res, err := httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": account.Username,
			"password": account.Password,
		}).
		Post(loginURL)
	if err != nil {
		return nil, fmt.Errorf("post login: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("login returned %s", res.Status())
	}
	if !strings.Contains(res.String(), c.opts.SuccessMarker) {
		return nil, Permanent(ErrInvalidCredentials)
	}

	return &Session{account: account, http: httpClient, journalURL: journal}, nil
}

func (c *Client) session(s ports.Session) (*Session, error) {
	session, ok := s.(*Session)
	if !ok || session == nil || session.http == nil {
		return nil, ErrForeignSession
	}
	return session, nil
}
