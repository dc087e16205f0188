package portal

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the Editorial Manager host shared by every journal.
	DefaultBaseURL = "https://www.editorialmanager.com"

	// DefaultSuccessMarker only appears in the body served to an authenticated author.
	DefaultSuccessMarker = "Default.aspx?pg=AuthorMainMenu.aspx"

	// DefaultTimeout bounds every single request, login included.
	DefaultTimeout = 20 * time.Second

	// MaxPageSize is the largest page size requested from a paginated table.
	MaxPageSize = 500
)

// DefaultHeaders mimic a desktop browser; the portal is less eager to
// challenge requests that look like one.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"Accept-Language":           "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
	}
}

// Options configures a portal Client. Headers are merged over
// DefaultHeaders; an empty value removes a default header.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	Retry         RetryPolicy
	Headers       map[string]string
	SuccessMarker string
	// PageSize is requested when a table offers a page-size selector.
	PageSize int
	// RequestsPerSecond throttles outgoing requests; zero disables throttling.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport with browser-like TLS settings.
	CloudflareBypass bool
}

// DefaultOptions returns the settings used against the production portal.
func DefaultOptions() Options {
	return Options{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		Retry:         DefaultRetryPolicy(),
		Headers:       DefaultHeaders(),
		SuccessMarker: DefaultSuccessMarker,
		PageSize:      MaxPageSize,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.BaseURL == "" {
		o.BaseURL = def.BaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.Retry.Attempts <= 0 {
		o.Retry.Attempts = def.Retry.Attempts
	}
	if o.Retry.Delay < 0 {
		o.Retry.Delay = 0
	}
	o.Headers = mergeHeaders(def.Headers, o.Headers)
	if o.SuccessMarker == "" {
		o.SuccessMarker = def.SuccessMarker
	}
	if o.PageSize <= 0 || o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}

func mergeHeaders(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range override {
		k = http.CanonicalHeaderKey(k)
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}
