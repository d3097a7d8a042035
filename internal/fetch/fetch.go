// Package fetch turns a job posting URL or file into plain job description text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jonathan/resume-rag/internal/observability"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one page download or browser render.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every HTTP request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeRAG/1.0)"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 5 << 20

// Error represents an error while fetching a job posting.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// RenderFunc renders a page in a browser and returns its HTML.
type RenderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Fetcher downloads job postings and extracts their description text.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	render    RenderFunc
	logger    *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout sets the per-page timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithBrowser enables the headless browser fallback for pages whose static
// HTML carries too little text. Passing nil disables it.
func WithBrowser(render RenderFunc) Option {
	return func(f *Fetcher) { f.render = render }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = observability.OrNop(logger) }
}

// New creates a Fetcher. The browser fallback is off unless WithBrowser is given.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// IsURL reports whether s looks like an http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve returns the job description named by source: a URL is fetched and
// its description extracted, anything else is read as a text file.
func (f *Fetcher) Resolve(ctx context.Context, source string) (string, error) {
	if IsURL(source) {
		return f.JobText(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("job description file %s is empty", source)
	}
	return text, nil
}

// JobText downloads a job posting and extracts its description. When the
// static page yields less than MinContentLength characters and a browser is
// configured, the page is rendered and extracted again.
func (f *Fetcher) JobText(ctx context.Context, rawURL string) (string, error) {
	html, err := f.get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	platform := DetectPlatform(rawURL)
	text, err := ExtractText(html, platform)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to parse HTML", Cause: err}
	}

	if NeedsBrowser(text) && f.render != nil {
		f.logger.Info("static page too short, rendering in browser",
			zap.String("url", rawURL),
			zap.Int("chars", len(text)))
		rendered, rerr := f.render(ctx, rawURL, f.timeout)
		if rerr != nil {
			f.logger.Warn("browser render failed, using static text", zap.Error(rerr))
		} else if rtext, xerr := ExtractText(rendered, platform); xerr == nil && len(rtext) > len(text) {
			text = rtext
		}
	}

	if text == "" {
		return "", &Error{URL: rawURL, Message: "no job description text found"}
	}
	f.logger.Debug("job description fetched",
		zap.String("url", rawURL),
		zap.String("platform", string(platform)),
		zap.Int("chars", len(text)))
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, error) {
	if !IsURL(rawURL) {
		return "", &Error{URL: rawURL, Message: "invalid URL"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}
