package ports

import (
	"context"
	"time"

	"ManuscriptTracker/internal/domain"
)

// Session is an authenticated portal client bound to one account.
type Session interface {
	Account() domain.Account
}

// SessionManager performs the login handshake for an account.
type SessionManager interface {
	Login(ctx context.Context, account domain.Account) (Session, error)
}

// CategoryDiscoverer lists the non-empty manuscript categories of a session.
type CategoryDiscoverer interface {
	Discover(ctx context.Context, session Session) ([]domain.CategoryLink, error)
}

// TableExtractor turns one detail page into raw records. It never fails;
// anomalies surface as an empty result and a log line.
type TableExtractor interface {
	Extract(ctx context.Context, session Session, pageURL, refererURL string) []domain.RawRecord
}

// Notifier delivers a finished digest to a notification channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, title, body string) error
}

// Scheduler controls when tracking passes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
