// Package backend forwards the portal's thin routes to the backend API that
// owns accounts, submissions, claims and generated PDFs.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mrs-ressorts/portail/auth"
	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/i18n"
	"github.com/mrs-ressorts/portail/internal/middleware"
	"go.uber.org/zap"
)

// ErrUpstream wraps every failure to reach the backend.
var ErrUpstream = errors.New("backend unavailable")

// Recorder counts forwarded requests.
type Recorder interface {
	ObserveUpstream(route string, status int)
}

// Request headers copied to the backend.
var forwardRequestHeaders = []string{
	"Accept",
	"Content-Type",
}

// Response headers copied back to the browser.
var forwardResponseHeaders = []string{
	"Content-Type",
	"Content-Disposition",
	"Content-Length",
	"Cache-Control",
	"Set-Cookie",
}

// Client calls the backend API.
type Client struct {
	base *url.URL
	http *http.Client
	rec  Recorder
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithRecorder reports forwarded requests.
func WithRecorder(rec Recorder) Option { return func(c *Client) { c.rec = rec } }

// WithLogger sets the logger used for upstream failures.
func WithLogger(log *zap.Logger) Option { return func(c *Client) { c.log = log } }

// New parses baseURL, e.g. "http://backend:5000".
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request is one call to the backend.
type Request struct {
	Method string
	// Path is relative to the backend base URL and already escaped.
	Path          string
	Query         url.Values
	Body          io.Reader
	ContentLength int64
	Header        http.Header
	// Token is sent as a Bearer credential when set.
	Token string
	// Route labels the call in metrics.
	Route string
}

// Do sends req. A response is returned for every HTTP status; only
// transport failures are errors, wrapped in ErrUpstream. The caller closes
// the body.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	u := c.base.JoinPath(req.Path)
	u.RawQuery = req.Query.Encode()

	hreq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if req.Token != "" {
		hreq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.ContentLength > 0 {
		hreq.ContentLength = req.ContentLength
	}

	resp, err := c.http.Do(hreq)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if c.rec != nil {
		c.rec.ObserveUpstream(req.Route, status)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstream, req.Method, req.Path, err)
	}
	return resp, nil
}

// RequestFrom builds a backend request carrying the incoming method, query,
// body, selected headers, negotiated language and token.
func RequestFrom(r *http.Request, path string) Request {
	h := http.Header{}
	for _, k := range forwardRequestHeaders {
		if v := r.Header.Values(k); len(v) > 0 {
			h[k] = v
		}
	}
	h.Set("Accept-Language", i18n.LangFrom(r.Context()))
	if id := middleware.RequestIDFrom(r.Context()); id != "" {
		h.Set(middleware.RequestIDHeader, id)
	}
	return Request{
		Method:        r.Method,
		Path:          path,
		Query:         r.URL.Query(),
		Body:          r.Body,
		ContentLength: r.ContentLength,
		Header:        h,
		Token:         auth.TokenFromRequest(r),
		Route:         r.Pattern,
	}
}

// Forward relays r to path and streams the answer back.
func (c *Client) Forward(w http.ResponseWriter, r *http.Request, path string) {
	resp, err := c.Do(r.Context(), RequestFrom(r, path))
	if err != nil {
		c.Fail(w, r, err)
		return
	}
	defer resp.Body.Close()
	CopyResponse(w, resp)
}

// CopyHeaders copies the forwarded response headers of resp, except the
// ones listed in skip.
func CopyHeaders(w http.ResponseWriter, resp *http.Response, skip ...string) {
	for _, k := range forwardResponseHeaders {
		if slices.Contains(skip, k) {
			continue
		}
		for _, v := range resp.Header.Values(k) {
			w.Header().Add(k, v)
		}
	}
}

// CopyResponse writes the status, selected headers and body of resp.
func CopyResponse(w http.ResponseWriter, resp *http.Response) {
	CopyHeaders(w, resp)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// Fail answers 502 for an upstream error.
func (c *Client) Fail(w http.ResponseWriter, r *http.Request, err error) {
	c.log.Error("backend request failed",
		zap.String("request_id", middleware.RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	httpx.JSONError(w, http.StatusBadGateway, i18n.T(i18n.LangFrom(r.Context()), "upstream_unavailable"), nil)
}

// Ping checks that the backend answers at all.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/health", Route: "health"})
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}
