package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"

	DefaultProbeTimeout    = 5 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
	DefaultMaxBodySize     = 64 << 20
	DefaultRequestsPerSec  = 4
	DefaultBurst           = 4
)

// Response is a fully read HTTP response.
type Response struct {
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsPDF reports whether the Content-Type header names a PDF.
func (r *Response) IsPDF() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "application/pdf")
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher issues rate limited HTTP requests. Safe for concurrent use.
type Fetcher struct {
	client          *http.Client
	userAgent       string
	limiter         *rate.Limiter
	probeTimeout    time.Duration
	downloadTimeout time.Duration
	maxBodySize     int64
	logger          *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithHTTPClient replaces the underlying client. Its Timeout is ignored in
// favor of per-request deadlines.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client == nil {
			return fmt.Errorf("%w: nil client", ErrInvalidOption)
		}
		f.client = client
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) error {
		if ua == "" {
			return fmt.Errorf("%w: empty user agent", ErrInvalidOption)
		}
		f.userAgent = ua
		return nil
	}
}

// WithRateLimit sets the sustained request rate and burst. A non-positive
// rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(f *Fetcher) error {
		if perSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return nil
		}
		if burst < 1 {
			return fmt.Errorf("%w: burst must be at least 1", ErrInvalidOption)
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithProbeTimeout sets the timeout for classification probes.
func WithProbeTimeout(d time.Duration) Option {
	return func(f *Fetcher) error {
		if d <= 0 {
			return fmt.Errorf("%w: probe timeout must be positive", ErrInvalidOption)
		}
		f.probeTimeout = d
		return nil
	}
}

// WithDownloadTimeout sets the timeout for content downloads.
func WithDownloadTimeout(d time.Duration) Option {
	return func(f *Fetcher) error {
		if d <= 0 {
			return fmt.Errorf("%w: download timeout must be positive", ErrInvalidOption)
		}
		f.downloadTimeout = d
		return nil
	}
}

// WithMaxBodySize caps how many bytes are read from a body.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) error {
		if n <= 0 {
			return fmt.Errorf("%w: max body size must be positive", ErrInvalidOption)
		}
		f.maxBodySize = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		f.logger = logger
		return nil
	}
}

// New creates a Fetcher.
func New(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:          &http.Client{},
		userAgent:       DefaultUserAgent,
		limiter:         rate.NewLimiter(rate.Limit(DefaultRequestsPerSec), DefaultBurst),
		probeTimeout:    DefaultProbeTimeout,
		downloadTimeout: DefaultDownloadTimeout,
		maxBodySize:     DefaultMaxBodySize,
		logger:          slog.Default().With("component", "fetch"),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Head issues a HEAD probe, following redirects.
func (f *Fetcher) Head(ctx context.Context, url string) (*Response, error) {
	return f.do(ctx, http.MethodHead, url, f.probeTimeout)
}

// Probe issues a GET with the probe timeout. Non-2xx responses are
// returned without error.
func (f *Fetcher) Probe(ctx context.Context, url string) (*Response, error) {
	return f.do(ctx, http.MethodGet, url, f.probeTimeout)
}

// Download issues a GET with the download timeout. Non-2xx responses are
// reported as ErrStatus.
func (f *Fetcher) Download(ctx context.Context, url string) (*Response, error) {
	resp, err := f.do(ctx, http.MethodGet, url, f.downloadTimeout)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, url)
	}
	return resp, nil
}

// Text converts a markup body to UTF-8 using the declared charset.
func (r *Response) Text() (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func (f *Fetcher) do(ctx context.Context, method, url string, timeout time.Duration) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("request failed", "method", method, "url", url, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, f.maxBodySize)
	}

	f.logger.Debug("request complete",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start))

	return &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
