// Package openlibrary queries the Open Library search and works APIs and
// normalizes the results into catalog-shaped records.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/hoanghai1803/booker/internal/apperr"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultCoversURL = "https://covers.openlibrary.org/b"
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "Booker/1.0 (+https://github.com/hoanghai1803/booker)"

	defaultLimit   = 10
	maxLimit       = 100
	minQueryLength = 2
	maxBodyBytes   = 4 << 20
	minBurst       = 10
)

var searchFields = strings.Join([]string{
	"key", "title", "author_name", "first_publish_year", "number_of_pages_median",
	"isbn", "cover_i", "publisher", "subject",
}, ",")

// keyPattern matches provider keys such as /works/OL45804W or /books/OL7353617M.
var keyPattern = regexp.MustCompile(`^/[a-z]+/OL[0-9]+[A-Z]$`)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL           string
	CoversURL         string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Client talks to Open Library. Calls are independent: each carries its own
// deadline. Throttling is off unless RequestsPerSecond is set.
type Client struct {
	http      *http.Client
	baseURL   string
	coversURL string
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CoversURL == "" {
		opts.CoversURL = DefaultCoversURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = max(minBurst, int(math.Ceil(opts.RequestsPerSecond)))
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &userAgentTransport{base: base, userAgent: opts.UserAgent},
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		coversURL: strings.TrimRight(opts.CoversURL, "/"),
		timeout:   opts.Timeout,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// userAgentTransport wraps an http.RoundTripper to identify the application
// on every request, as Open Library asks API clients to do.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(req)
}

// Search queries the provider and returns normalized results in provider
// order. A query shorter than two characters is a validation error. Zero
// matches is an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, apperr.Validation("search query must be at least %d characters long", minQueryLength)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	var resp searchResponse
	if err := c.getJSON(ctx, "/search.json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Docs))
	for i := range resp.Docs {
		results = append(results, c.normalizeDoc(&resp.Docs[i]))
	}
	return results, nil
}

// GetDetails fetches the detailed record for a provider key such as
// "/works/OL45804W".
func (c *Client) GetDetails(ctx context.Context, key string) (*Details, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}

	var raw detailsResponse
	if err := c.getJSON(ctx, key+".json", &raw); err != nil {
		return nil, err
	}
	d := c.normalizeDetails(&raw)
	if d.Key == "" {
		d.Key = key
	}
	return d, nil
}

// LookupISBN fetches the edition record for an ISBN-10 or ISBN-13.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*Details, error) {
	normalized := NormalizeISBN(isbn)
	if len(normalized) != 10 && len(normalized) != 13 {
		return nil, apperr.Validation("isbn %q must have 10 or 13 digits", isbn)
	}

	var raw detailsResponse
	if err := c.getJSON(ctx, "/isbn/"+normalized+".json", &raw); err != nil {
		return nil, err
	}
	d := c.normalizeDetails(&raw)
	d.ISBN = normalized
	return d, nil
}

// getJSON performs a single rate-limited GET bounded by the client timeout
// and decodes the body into dest. No retries are attempted.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Timeout("open library request timed out", fmt.Errorf("rate limit wait: %w", err))
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperr.Internal("failed to build request", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("open library request failed", "url", reqURL, "error", err)
		return classify(ctx, err)
	}
	defer resp.Body.Close()

	slog.Debug("open library request",
		"url", reqURL,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/isbn/") {
			return apperr.NotFound("no book found for that isbn")
		}
		return apperr.Upstream("open library request failed",
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dest); err != nil {
		return classify(ctx, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// classify turns a transport failure into a timeout or upstream error.
func classify(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.Timeout("open library request timed out", err)
	}
	return apperr.Upstream("open library request failed", err)
}

// NormalizeKey validates a provider key and adds a missing leading slash.
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key != "" && !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	if !keyPattern.MatchString(key) {
		return "", apperr.Validation("invalid open library key %q", key)
	}
	return key, nil
}

// NormalizeISBN strips separators and an optional "ISBN" prefix.
func NormalizeISBN(isbn string) string {
	isbn = strings.ToUpper(strings.TrimSpace(isbn))
	isbn = strings.TrimPrefix(isbn, "ISBN")
	isbn = strings.TrimPrefix(isbn, ":")
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == 'X' {
			return r
		}
		return -1
	}, isbn)
}
