package webadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/imroc/req/v3"

	"github.com/dshills/webshim/internal/logging"
)

// StatusFailed is the status of a fetch that did not complete.
const StatusFailed = -1

// Header is one request header.
type Header struct {
	Name  string
	Value string
}

// ProgressFunc observes transfer progress. Returning true aborts the
// transfer. total is 0 when the size is unknown.
type ProgressFunc func(loaded, total float64) (abort bool)

// FetchRequest describes a synchronous HTTP request.
type FetchRequest struct {
	Method  string
	URL     string
	Headers []Header

	// Timeout bounds the whole transfer. Zero means no timeout.
	Timeout time.Duration

	// Payload is the request body. Nil sends no body.
	Payload []byte

	Progress ProgressFunc
}

// FetchResult is the outcome of a fetch.
type FetchResult struct {
	// Status is the HTTP status, or StatusFailed.
	Status int

	// Body is the response body when Status is not StatusFailed.
	Body []byte
}

// OK reports whether the transfer completed.
func (r FetchResult) OK() bool {
	return r.Status != StatusFailed
}

// Fetcher performs synchronous fetches.
type Fetcher struct {
	client *req.Client
	log    *logging.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchLogger sets the logger for transfer failures.
func WithFetchLogger(l *logging.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = l
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.client.SetUserAgent(ua)
	}
}

// NewFetcher creates a fetcher. Timeouts are applied per request.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		// Bodies are returned as received, whatever charset they declare.
		client: req.C().SetTimeout(0).DisableAutoDecode(),
		log:    logging.Default().Child("fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFetcher = NewFetcher()

// FetchSync performs r with the default fetcher.
func FetchSync(ctx context.Context, r FetchRequest) FetchResult {
	return defaultFetcher.FetchSync(ctx, r)
}

// FetchSync performs r and blocks until the response body has been read,
// the transfer fails, or the progress callback aborts it.
func (f *Fetcher) FetchSync(ctx context.Context, r FetchRequest) FetchResult {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	request := f.client.R().SetContext(ctx)
	for _, h := range r.Headers {
		request.SetHeader(h.Name, h.Value)
	}
	if r.Payload != nil {
		request.SetBodyBytes(r.Payload)
	}

	resp, err := request.Send(method, r.URL)
	if err != nil {
		f.log.Debugf("%s %s failed: %v", method, r.URL, err)
		return FetchResult{Status: StatusFailed}
	}
	if resp.Response == nil {
		return FetchResult{Status: StatusFailed}
	}

	body, err := resp.ToBytes()
	if err != nil {
		f.log.Debugf("%s %s: reading body: %v", method, r.URL, err)
		return FetchResult{Status: StatusFailed}
	}
	if body == nil {
		body = []byte{}
	}

	// The transfer is synchronous, so progress is reported once, at the end.
	if r.Progress != nil {
		total := float64(resp.ContentLength)
		if total < 0 {
			total = 0
		}
		if r.Progress(float64(len(body)), total) {
			f.log.Debugf("%s %s aborted by progress callback", method, r.URL)
			return FetchResult{Status: StatusFailed}
		}
	}

	return FetchResult{Status: resp.StatusCode, Body: body}
}
