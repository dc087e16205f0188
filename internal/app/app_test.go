package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ManuscriptTracker/internal/config"
	"ManuscriptTracker/internal/domain"
	"ManuscriptTracker/internal/infrastructure/scheduler"
)

const menuPage = `<html><body>
<fieldset class="datatablecontainer">
  <div class="main_menu_item"><a href="Processing.aspx">Submissions Being Processed</a> <span class="count">(1)</span></div>
  <div class="main_menu_item"><a href="Revise.aspx">Submissions Needing Revision</a> <span class="count">(0)</span></div>
</fieldset>
</body></html>`

const processingPage = `<html><body>
<table id="datatable">
  <thead><tr><th>Action</th><th>Manuscript Number</th><th>Title</th><th>Initial Date Submitted</th><th>Status Date</th><th>Current Status</th></tr></thead>
  <tbody>
    <tr><td><a href="ViewDoc.aspx?docid=777">View</a></td><td>JRNL-D-26-00042</td><td>Sequential scraping in practice</td><td>Sep 01, 2026</td><td>Oct 02, 2026</td><td>Under Review</td></tr>
  </tbody>
</table>
</body></html>`

type pushed struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	paths  []string
}

func newPortal(t *testing.T, push *pushed) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/JRNL/LoginAction.ashx", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("password") != "secret" {
			fmt.Fprint(w, "<html>login failed</html>")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "ok", Path: "/"})
		fmt.Fprint(w, `<script>location='Default.aspx?pg=AuthorMainMenu.aspx'</script>`)
	})
	mux.HandleFunc("/JRNL/AuthorMainMenu.aspx", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("ASP.NET_SessionId"); err != nil || c.Value != "ok" {
			http.Error(w, "login required", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, menuPage)
	})
	mux.HandleFunc("/JRNL/Processing.aspx", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, processingPage)
	})
	mux.HandleFunc("/push/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		push.mu.Lock()
		push.paths = append(push.paths, r.URL.Path)
		push.titles = append(push.titles, r.PostForm.Get("title"))
		push.bodies = append(push.bodies, r.PostForm.Get("desp"))
		push.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":0,"message":""}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		Accounts: []domain.Account{
			{ShortName: "JRNL", FullName: "Journal of Tests", Username: "author", Password: "secret"},
			{ShortName: "JRNL", FullName: "Template Journal", Username: "your_username", Password: "x"},
			{ShortName: "JRNL", FullName: "Wrong Password", Username: "author", Password: "nope"},
		},
		Portal: config.PortalConfig{
			BaseURL: baseURL,
			Timeout: 2 * time.Second,
			Retry:   config.RetryConfig{Attempts: 1},
		},
		Notifications: config.NotificationConfig{
			Channels:   []string{"serverchan", "telegram"},
			ServerChan: config.ServerChanConfig{SendKey: "SCTKEY", Endpoint: baseURL + "/push"},
		},
		Schedule: config.ScheduleConfig{Interval: time.Hour},
	}
}

func TestRunTracksAccountsAndPushesDigest(t *testing.T) {
	t.Parallel()

	push := &pushed{}
	srv := newPortal(t, push)

	application, err := New(testConfig(srv.URL), nil)
	require.NoError(t, err)

	report := application.Run(context.Background())

	require.Len(t, report.Results, 3)
	require.Equal(t, domain.StateDone, report.Results[0].State)
	require.Equal(t, domain.StateSkipped, report.Results[1].State)
	require.Equal(t, domain.StateFailed, report.Results[2].State)

	records := report.Records()
	require.Len(t, records, 1)
	require.Equal(t, "JRNL-D-26-00042", records[0].ManuscriptNumber)
	require.Equal(t, "Sep 01, 2026", records[0].SubmissionDate)
	require.Equal(t, "Under Review", records[0].CurrentStatus)
	require.Equal(t, "777", records[0].DocID)

	require.True(t, report.Delivered)
	push.mu.Lock()
	defer push.mu.Unlock()
	require.Equal(t, []string{"/push/SCTKEY.send"}, push.paths)
	require.Contains(t, push.bodies[0], "### Journal of Tests")
	require.Contains(t, push.bodies[0], "Sequential scraping in practice")
	require.Contains(t, push.titles[0], "Manuscript tracking results")
}

func TestWatchRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	push := &pushed{}
	srv := newPortal(t, push)

	application, err := New(testConfig(srv.URL), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	reports := make(chan domain.RunReport, 1)
	done := make(chan error, 1)
	go func() {
		done <- application.Watch(ctx, func(r domain.RunReport) {
			select {
			case reports <- r:
			default:
			}
		})
	}()

	select {
	case r := <-reports:
		require.Len(t, r.Records(), 1)
	case <-time.After(5 * time.Second):
		t.Fatal("first pass did not run")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(testConfig("not-a-url"), nil)
	require.Error(t, err)
}

func TestPortalOptions(t *testing.T) {
	t.Parallel()

	opts := PortalOptions(config.PortalConfig{
		BaseURL:           "https://example.test",
		Retry:             config.RetryConfig{Attempts: 4, Delay: time.Second},
		PageSize:          50,
		RequestsPerSecond: 2,
		CloudflareBypass:  true,
	})
	require.Equal(t, 4, opts.Retry.Attempts)
	require.Equal(t, time.Second, opts.Retry.Delay)
	require.Equal(t, 50, opts.PageSize)
	require.True(t, opts.CloudflareBypass)
}

func TestWatchRejectsInvalidCronSpec(t *testing.T) {
	t.Parallel()

	cfg := testConfig("https://portal.example.test")
	cfg.Schedule.Cron = "sometimes"
	application, err := New(cfg, nil)
	require.NoError(t, err)

	err = application.Watch(context.Background(), nil)
	require.ErrorIs(t, err, scheduler.ErrInvalidSchedule)
}
