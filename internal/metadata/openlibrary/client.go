// Package openlibrary is a rate-limited client for the Open Library search API.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ghiridhars/ebook-organizer/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public Open Library endpoint.
	DefaultBaseURL = "https://openlibrary.org"

	defaultTimeout   = 10 * time.Second
	defaultInterval  = 100 * time.Millisecond
	defaultUserAgent = "EbookOrganizer/1.0"

	defaultRetryAfter = 5 * time.Second
	maxRetryAfter     = time.Minute

	searchFields = "title,author_name,subject"
)

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Interval  time.Duration // minimum spacing between requests, negative disables
	UserAgent string
}

// Client queries Open Library, waiting on a per-host limiter before each call.
type Client struct {
	http      *http.Client
	baseURL   string
	host      string
	userAgent string
	limiter   *ratelimit.HostLimiter
	logger    *slog.Logger
}

// New creates a client.
func New(logger *slog.Logger, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Interval == 0 {
		opts.Interval = defaultInterval
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid open library base url %q", opts.BaseURL)
	}

	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		host:      u.Host,
		userAgent: opts.UserAgent,
		limiter:   ratelimit.NewHostLimiter(opts.Interval),
		logger:    logger,
	}, nil
}

// Search returns the best match for title, optionally narrowed by author.
// It returns ErrNotFound when the index has no document.
func (c *Client) Search(ctx context.Context, title, author string) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return nil, wrapError("search", "", ErrBadRequest)
	}

	terms := []string{"title:" + title}
	if author != "" {
		terms = append(terms, "author:"+author)
	}
	q := strings.Join(terms, " ")

	query := url.Values{}
	query.Set("q", q)
	query.Set("fields", searchFields)
	query.Set("limit", "1")

	body, err := c.doRequest(ctx, "/search.json", query)
	if err != nil {
		return nil, wrapError("search", q, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", q, fmt.Errorf("parse response: %w", err))
	}
	if len(resp.Docs) == 0 {
		return nil, wrapError("search", q, ErrNotFound)
	}

	return resp.Docs[0].book(), nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("open library request", "path", path, "q", query.Get("q"))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		wait := retryAfter(resp.Header.Get("Retry-After"))
		c.limiter.Pause(c.host, wait)
		c.logger.Warn("open library rate limited", "retry_after", wait)
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// retryAfter reads a Retry-After header given in seconds, falling back to
// defaultRetryAfter and capping at maxRetryAfter.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return defaultRetryAfter
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}
