package portal

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ManuscriptTracker/internal/domain"
)

const testJournal = "JRNL"

// fakePortal mimics the handful of Editorial Manager pages the client touches.
type fakePortal struct {
	t      *testing.T
	server *httptest.Server

	mu      sync.Mutex
	hits    map[string]int
	queries map[string][]string
	headers map[string]http.Header

	login func(w http.ResponseWriter, r *http.Request)
	pages map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()

	fp := &fakePortal{
		t:       t,
		hits:    map[string]int{},
		queries: map[string][]string{},
		headers: map[string]http.Header{},
		pages:   map[string]func(http.ResponseWriter, *http.Request){},
	}
	fp.login = fp.acceptLogin
	fp.server = httptest.NewServer(http.HandlerFunc(fp.serve))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakePortal) serve(w http.ResponseWriter, r *http.Request) {
	fp.mu.Lock()
	fp.hits[r.URL.Path]++
	fp.queries[r.URL.Path] = append(fp.queries[r.URL.Path], r.URL.RawQuery)
	fp.headers[r.URL.Path] = r.Header.Clone()
	fp.mu.Unlock()

	if r.URL.Path == "/"+testJournal+"/LoginAction.ashx" {
		fp.login(w, r)
		return
	}
	if page, ok := fp.pages[r.URL.Path]; ok {
		if c, err := r.Cookie("ASP.NET_SessionId"); err != nil || c.Value != "authenticated" {
			http.Error(w, "session expired", http.StatusForbidden)
			return
		}
		page(w, r)
		return
	}
	http.NotFound(w, r)
}

func (fp *fakePortal) acceptLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("username") != "author" || r.PostForm.Get("password") != "secret" {
		_, _ = w.Write([]byte(`<html><body>Login failed. Please try again.</body></html>`))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "authenticated", Path: "/"})
	_, _ = w.Write([]byte(`<script>window.location='Default.aspx?pg=AuthorMainMenu.aspx'</script>`))
}

func (fp *fakePortal) page(name, body string) {
	fp.pages["/"+testJournal+"/"+name] = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func (fp *fakePortal) hitCount(name string) int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.hits["/"+testJournal+"/"+name]
}

func (fp *fakePortal) queriesFor(name string) []string {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]string(nil), fp.queries["/"+testJournal+"/"+name]...)
}

func (fp *fakePortal) headerFor(name string) http.Header {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.headers["/"+testJournal+"/"+name]
}

func (fp *fakePortal) url(name string) string {
	return fp.server.URL + "/" + testJournal + "/" + name
}

func (fp *fakePortal) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(Options{
		BaseURL: fp.server.URL,
		Timeout: 2 * time.Second,
		Retry:   RetryPolicy{Attempts: 3, Delay: time.Millisecond},
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func testAccount() domain.Account {
	return domain.Account{
		ShortName: testJournal,
		FullName:  "Journal of Tests",
		Username:  "author",
		Password:  "secret",
	}
}
