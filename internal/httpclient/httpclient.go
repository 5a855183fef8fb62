// Package httpclient builds the resty client shared by every vendor
// package: default headers from a vendorconst.Profile, an optional cookie
// jar for web-variant sessions, and the single invariant every vendor call
// must respect — a request carries either a form body or a query string,
// never both.
package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	verrors "mangavault/pkg/errors"
)

// Options configures a per-vendor client.
type Options struct {
	BaseURL    string
	UserAgent  string
	HashHeader string
	Timeout    time.Duration
	// Proxy, if set, is used for every outgoing request (http(s):// or
	// socks5://). Empty means no proxy.
	Proxy string
	// WithCookieJar enables an in-memory cookie jar, for web-variant
	// vendor sessions that rely on Set-Cookie/Cookie round trips.
	WithCookieJar bool
}

// New builds a resty.Client configured per Options.
func New(opts Options) (*resty.Client, error) {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(timeoutOrDefault(opts.Timeout))

	if opts.HashHeader != "" {
		client.SetHeader(opts.HashHeader, "")
	}

	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	if opts.WithCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, verrors.ErrInternal.Wrap(err)
		}
		client.SetCookieJar(jar)
	}

	return client, nil
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Request is a vendor-call description: exactly one of Form or Query may
// be set, per the mutual-exclusion invariant every vendor client must
// respect (a signed request is signed over one parameter set, not two).
type Request struct {
	Method string
	Path   string
	Form   map[string]string
	Query  map[string]string
	Header map[string]string
}

// Do validates Request's invariant, builds and executes it against client.
func Do(ctx context.Context, client *resty.Client, req Request) (*http.Response, error) {
	if len(req.Form) > 0 && len(req.Query) > 0 {
		return nil, verrors.ErrAmbiguousRequestBody
	}

	r := client.R().SetContext(ctx)

	if len(req.Header) > 0 {
		r.SetHeaders(req.Header)
	}
	if len(req.Form) > 0 {
		r.SetFormData(req.Form)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, verrors.ErrTransport.Wrap(err)
	}

	return respToHTTP(resp), nil
}

// respToHTTP adapts a resty.Response to the stdlib *http.Response shape
// that internal/envelope parses, so envelope stays resty-agnostic.
func respToHTTP(resp *resty.Response) *http.Response {
	raw := resp.RawResponse
	raw.Body = io.NopCloser(bytes.NewReader(resp.Body()))
	if raw.Request == nil {
		raw.Request = &http.Request{URL: &url.URL{}}
		if u, err := url.Parse(resp.Request.URL); err == nil {
			raw.Request.URL = u
		}
	}
	return raw
}
