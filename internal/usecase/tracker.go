package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"ManuscriptTracker/internal/domain"
	"ManuscriptTracker/internal/ports"
	"ManuscriptTracker/internal/resolver"
)

// TrackerDeps wires the portal adapters and notification channels into the tracker.
type TrackerDeps struct {
	Sessions   ports.SessionManager
	Discoverer ports.CategoryDiscoverer
	Extractor  ports.TableExtractor
	Notifiers  []ports.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

// Tracker drives every account through login, discovery and extraction,
// strictly one request at a time.
type Tracker struct {
	sessions   ports.SessionManager
	discoverer ports.CategoryDiscoverer
	extractor  ports.TableExtractor
	notifiers  []ports.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewTracker constructs the orchestration component.
func NewTracker(deps TrackerDeps) *Tracker {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		sessions:   deps.Sessions,
		discoverer: deps.Discoverer,
		extractor:  deps.Extractor,
		notifiers:  deps.Notifiers,
		logger:     logger,
		now:        now,
	}
}

// Run tracks all accounts in order and hands the digest to the notifiers.
// Failures stay inside the account they happened in.
func (t *Tracker) Run(ctx context.Context, accounts []domain.Account) domain.RunReport {
	report := domain.RunReport{StartedAt: t.now()}

	for _, account := range accounts {
		report.Results = append(report.Results, t.track(ctx, account))
	}

	t.logSummary(report)

	digest := BuildDigest(report.Results, report.StartedAt)
	report.Delivered = t.deliver(ctx, digest)
	return report
}

func (t *Tracker) track(ctx context.Context, account domain.Account) (result domain.AccountResult) {
	result = domain.AccountResult{Account: account, State: domain.StateIdle}
	logger := t.logger.With("journal", account.ShortName)

	defer func() {
		if r := recover(); r != nil {
			result.State = domain.StateFailed
			result.Err = fmt.Errorf("panic while tracking %s: %v", account.ShortName, r)
			logger.Error("account pass aborted", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if account.IsPlaceholder() {
		logger.Warn("skipping unconfigured account", "username", account.Username)
		t.enter(logger, &result, domain.StateSkipped)
		return result
	}
	if err := ctx.Err(); err != nil {
		result.Err = err
		t.enter(logger, &result, domain.StateFailed)
		return result
	}

	logger.Info("tracking account", "journal_name", account.DisplayName(), "username", account.Username)

	t.enter(logger, &result, domain.StateLoggingIn)
	session, err := t.sessions.Login(ctx, account)
	if err != nil {
		result.Err = err
		t.enter(logger, &result, domain.StateFailed)
		return result
	}

	t.enter(logger, &result, domain.StateDiscovering)
	links, err := t.discoverer.Discover(ctx, session)
	if err != nil {
		logger.Error("category discovery failed", "error", err)
		result.Err = err
		t.enter(logger, &result, domain.StateFailed)
		return result
	}
	result.Categories = len(links)

	for _, link := range links {
		t.enter(logger, &result, domain.StateExtracting)
		raws := t.extractor.Extract(ctx, session, link.URL, link.Referer)
		logger.Debug("category extracted", "category", link.Name, "count", link.Count, "records", len(raws))

		for _, raw := range raws {
			record := resolver.NormalizeRecord(raw, account.DisplayName(), t.now())
			t.explainMisses(logger, raw)
			logger.Info("manuscript",
				"title", truncate(record.Title, 50),
				"number", record.ManuscriptNumber,
				"status", record.CurrentStatus,
				"status_date", record.StatusDate,
			)
			result.Records = append(result.Records, record)
		}
	}

	if len(result.Records) == 0 {
		logger.Info("no manuscripts found", "categories", result.Categories)
	} else {
		logger.Info("manuscripts found", "count", len(result.Records), "categories", result.Categories)
	}
	t.enter(logger, &result, domain.StateDone)
	return result
}

func (t *Tracker) enter(logger *slog.Logger, result *domain.AccountResult, next domain.AccountState) {
	if result.State == next {
		return
	}
	logger.Debug("account state", "from", result.State, "to", next)
	result.State = next
}

func (t *Tracker) explainMisses(logger *slog.Logger, raw domain.RawRecord) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, field := range resolver.Unresolved(raw) {
		header, score := resolver.Closest(raw, field)
		logger.Debug("field not found in headers",
			"field", field,
			"headers", raw.Headers(),
			"closest", header,
			"similarity", fmt.Sprintf("%.2f", score),
		)
	}
}

func (t *Tracker) logSummary(report domain.RunReport) {
	records := report.Records()
	if len(records) == 0 {
		t.logger.Warn("no manuscripts collected",
			"accounts", len(report.Results),
			"skipped", report.Count(domain.StateSkipped),
			"failed", report.Count(domain.StateFailed),
		)
		return
	}

	for _, rec := range records {
		t.logger.Info("summary",
			"captured_at", rec.CapturedAt.Format("2006-01-02 15:04"),
			"journal", rec.Journal,
			"number", rec.ManuscriptNumber,
			"status", rec.CurrentStatus,
			"status_date", rec.StatusDate,
		)
	}
	t.logger.Info("run finished",
		"records", len(records),
		"accounts", len(report.Results),
		"done", report.Count(domain.StateDone),
		"skipped", report.Count(domain.StateSkipped),
		"failed", report.Count(domain.StateFailed),
	)
}

// deliver sends the digest to every channel; an empty body sends nothing.
func (t *Tracker) deliver(ctx context.Context, digest Digest) bool {
	if strings.TrimSpace(digest.Body) == "" {
		t.logger.Debug("digest is empty, nothing to deliver")
		return false
	}
	if len(t.notifiers) == 0 {
		t.logger.Warn("no notification channel configured, digest not delivered")
		return false
	}

	delivered := false
	for _, n := range t.notifiers {
		if err := send(ctx, n, digest); err != nil {
			t.logger.Error("notification failed", "channel", n.Name(), "error", err)
			continue
		}
		t.logger.Info("notification sent", "channel", n.Name())
		delivered = true
	}
	return delivered
}

// send shields the remaining channels from a notifier that panics.
func send(ctx context.Context, n ports.Notifier, digest Digest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier %s panicked: %v", n.Name(), r)
		}
	}()
	return n.Send(ctx, digest.Title, digest.Body)
}
