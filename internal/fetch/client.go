package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// getExtensions lists path extensions fetched with GET. Everything else is
// probed with HEAD so the crawler never downloads large binaries it cannot
// parse anyway; an empty extension also gets GET since it is usually a
// page or a directory index.
var getExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".php":  true,
	".js":   true,
	".css":  true,
	".json": true,
	".xml":  true,
	".svg":  true,
	".txt":  true,
}

// Response is the outcome of a single fetch.
// Done is true only for a 2xx response; StatusCode is still recorded for
// other HTTP statuses, and stays zero when no response was received at all
// (connection error, timeout).
type Response struct {
	// Done reports whether the request completed with a 2xx status.
	Done bool

	// StatusCode is the HTTP status code, or 0 for transport failures.
	StatusCode int

	// ContentType is the response Content-Type, "error" for transport
	// failures, "unknown" when the server sent none.
	ContentType string

	// Body is the response body. Empty for HEAD requests and failures.
	Body string

	// Headers holds the response headers.
	Headers http.Header
}

// Client performs HTTP fetches for the crawl engine.
// It implements the engine's fetch contract: method selection by path
// extension, per-request timeout, cookies, and a pluggable User-Agent
// policy.
//
// Design decision: a struct holding the http.Client rather than free
// functions because client configuration (redirects, pooling, timeouts)
// should be consistent across all workers, and tests can swap the
// transport.
type Client struct {
	hc          *http.Client
	cookies     map[string]string
	headers     map[string]string
	agent       AgentPolicy
	timeout     time.Duration
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithCookies sets cookie name/value pairs sent with every request.
func WithCookies(cookies map[string]string) Option {
	return func(c *Client) {
		c.cookies = cookies
	}
}

// WithHeaders sets extra request headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithAgentPolicy sets the User-Agent selection policy.
func WithAgentPolicy(policy AgentPolicy) Option {
	return func(c *Client) {
		c.agent = policy
	}
}

// WithMaxBodySize limits the response body size read per request.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithHTTPClient replaces the underlying http.Client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// New creates a fetch Client. The default client follows redirects,
// reuses connections across workers, and carries a cookie jar so session
// cookies set by the server persist for the rest of the crawl.
func New(opts ...Option) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c := &Client{
		hc:          &http.Client{Jar: jar},
		agent:       FixedAgent(DefaultUserAgent),
		timeout:     10 * time.Second,
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests the URL and returns the response record. It never
// returns an error; failures are encoded in the Response so that the
// caller records them as a failed page without aborting the worker.
func (c *Client) Fetch(ctx context.Context, rawURL string) *Response {
	result := &Response{
		ContentType: "error",
		Headers:     http.Header{},
	}

	method := http.MethodHead
	if useGET(rawURL) {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return result
	}

	req.Header.Set("User-Agent", c.agent.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.ContentType = resp.Header.Get("Content-Type")
	if result.ContentType == "" {
		result.ContentType = "unknown"
	}

	if method == http.MethodGet {
		body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
		if err != nil {
			return result
		}
		result.Body = string(body)
	}

	result.Done = resp.StatusCode >= 200 && resp.StatusCode < 300
	return result
}

// useGET reports whether the URL's path extension is textual/markup/empty,
// in which case the body is worth downloading.
func useGET(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return ext == "" || getExtensions[ext]
}
