// Package httprequest performs blocking GET and POST requests through the
// web adapter's synchronous fetch.
//
// A Request carries a timeout and an optional progress callback. Requests
// can be routed through a CORS proxy by prefixing the target URL, which
// is what a browser-hosted core needs to reach servers that do not send
// CORS headers. Failures are logged and returned as ErrNetwork or a
// *StatusError matching ErrStatus.
package httprequest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/dshills/webshim/internal/logging"
	"github.com/dshills/webshim/internal/webadapter"
)

// DefaultCORSProxy is the proxy prefix used by WithDefaultCORSProxy.
const DefaultCORSProxy = "https://cors-proxy.htmldriven.com/?url="

// Errors returned by requests.
var (
	// ErrNetwork indicates the transfer did not complete.
	ErrNetwork = errors.New("a network error occurred")

	// ErrStatus indicates a completed transfer with a disallowed status.
	ErrStatus = errors.New("unexpected status")
)

// StatusError reports a disallowed response status.
type StatusError struct {
	Status int
	Body   []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("got status %d", e.Status)
	}
	return fmt.Sprintf("got status %d and body\n%s", e.Status, e.Body)
}

// Is matches ErrStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// AllowedReturnCodes selects which statuses count as success.
type AllowedReturnCodes uint8

const (
	// OkOnly accepts only 200.
	OkOnly AllowedReturnCodes = iota
	// All accepts any completed transfer.
	All
)

// Headers maps header names to values. Headers are sent in name order.
type Headers map[string]string

// ProgressFunc observes a transfer. Returning false aborts it.
type ProgressFunc func(dlNow, dlTotal, ulNow, ulTotal float64) bool

// Fetcher is the synchronous transport a Request uses.
type Fetcher interface {
	FetchSync(ctx context.Context, r webadapter.FetchRequest) webadapter.FetchResult
}

// Request issues blocking HTTP requests.
type Request struct {
	timeout   time.Duration
	progress  ProgressFunc
	corsProxy string
	fetcher   Fetcher
	log       *logging.Logger
}

// Option configures a Request.
type Option func(*Request)

// WithCORSProxy prefixes every URL with proxy.
func WithCORSProxy(proxy string) Option {
	return func(r *Request) {
		r.corsProxy = proxy
	}
}

// WithDefaultCORSProxy routes requests through DefaultCORSProxy.
func WithDefaultCORSProxy() Option {
	return WithCORSProxy(DefaultCORSProxy)
}

// WithFetcher replaces the transport.
func WithFetcher(f Fetcher) Option {
	return func(r *Request) {
		r.fetcher = f
	}
}

// WithLogger sets the logger for failures.
func WithLogger(l *logging.Logger) Option {
	return func(r *Request) {
		r.log = l
	}
}

// New creates a Request. progress may be nil.
func New(timeout time.Duration, progress ProgressFunc, opts ...Option) *Request {
	r := &Request{
		timeout:  timeout,
		progress: progress,
		log:      logging.Default().Child("http"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		r.fetcher = webadapter.NewFetcher(webadapter.WithFetchLogger(r.log))
	}
	return r
}

// EscapeComponent escapes s for use inside a URL query value.
func (r *Request) EscapeComponent(s string) string {
	return webadapter.EncodeURIComponent(s)
}

// Get fetches url.
func (r *Request) Get(ctx context.Context, url string, headers Headers, codes AllowedReturnCodes) ([]byte, error) {
	return r.fetch(ctx, http.MethodGet, url, headers, nil, codes)
}

// Post sends payload to url.
func (r *Request) Post(ctx context.Context, url string, payload []byte, headers Headers, codes AllowedReturnCodes) ([]byte, error) {
	if payload == nil {
		payload = []byte{}
	}
	return r.fetch(ctx, http.MethodPost, url, headers, payload, codes)
}

func (r *Request) fetch(ctx context.Context, method, url string, headers Headers, payload []byte, codes AllowedReturnCodes) ([]byte, error) {
	fr := webadapter.FetchRequest{
		Method:  method,
		URL:     r.corsProxy + url,
		Headers: sortedHeaders(headers),
		Timeout: r.timeout,
		Payload: payload,
	}
	if r.progress != nil {
		ulTotal := float64(len(payload))
		fr.Progress = func(loaded, total float64) bool {
			return !r.progress(loaded, total, ulTotal, ulTotal)
		}
	}

	res := r.fetcher.FetchSync(ctx, fr)
	if !res.OK() {
		r.log.Errorf("Failed to %s %s: %v", method, url, ErrNetwork)
		return nil, fmt.Errorf("%s %s: %w", method, url, ErrNetwork)
	}

	if codes == All || res.Status == http.StatusOK {
		return res.Body, nil
	}

	serr := &StatusError{Status: res.Status, Body: res.Body}
	r.log.Errorf("Failed to %s %s: fetch sent but %v", method, url, serr)
	return nil, fmt.Errorf("%s %s: %w", method, url, serr)
}

func sortedHeaders(h Headers) []webadapter.Header {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]webadapter.Header, len(names))
	for i, name := range names {
		out[i] = webadapter.Header{Name: name, Value: h[name]}
	}
	return out
}
