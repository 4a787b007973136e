// Package searchad is the signed gateway to the Naver SearchAd API. Every
// upstream call in the system funnels through Client.Call.
package searchad

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bidpilot/internal/metrics"
)

// DefaultBaseURL is the production upstream endpoint.
const DefaultBaseURL = "https://api.searchad.naver.com"

const (
	requestTimeout = 10 * time.Second
	maxAttempts    = 5
	retryDelayUnit = 500 * time.Millisecond

	// Business code the upstream returns when a resource with the same
	// name already exists (duplicate ad group name and the like).
	codeDuplicateName = 3710

	maxSnippet = 500
)

var (
	// ErrRateLimited is returned once the bounded 429 retries are exhausted.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrConflict marks the upstream's "already exists" rejection, which
	// callers may resolve by looking up and reusing the existing resource.
	ErrConflict = errors.New("resource already exists upstream")
)

// APIError is a non-200 upstream response that is not a rate limit.
type APIError struct {
	Status  int
	Code    int
	Title   string
	Snippet string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("upstream error %d (code %d): %s", e.Status, e.Code, e.Title)
	}
	return fmt.Sprintf("upstream error %d: %s", e.Status, e.Snippet)
}

// Is lets errors.Is(err, ErrConflict) match duplicate-name rejections.
func (e *APIError) Is(target error) bool {
	if target == ErrConflict {
		return e.Code == codeDuplicateName ||
			strings.Contains(strings.ToLower(e.Title), "exist")
	}
	return false
}

// Credentials is the injected capability for one upstream account.
type Credentials struct {
	APIKey     string
	SecretKey  string
	CustomerID string
}

// Valid reports whether all three parts are present.
func (c Credentials) Valid() bool {
	return c.APIKey != "" && c.SecretKey != "" && c.CustomerID != ""
}

// Client issues signed requests for one set of credentials. It holds no
// mutable state, so a single value is safe for concurrent use across
// pipelines.
type Client struct {
	creds   Credentials
	baseURL string
	http    *http.Client
}

// New creates a client against the given base URL (DefaultBaseURL if empty).
func New(creds Credentials, baseURL string) *Client {
	return NewWithHTTPClient(creds, baseURL, &http.Client{Timeout: requestTimeout})
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client,
// mainly for tests pointing at a fake upstream.
func NewWithHTTPClient(creds Credentials, baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{creds: creds, baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// sign builds the request signature. The signed message covers the path
// only — the upstream ignores the query string when verifying, and sending
// a signature that includes it fails, so the query is appended to the URL
// after signing.
func (c *Client) sign(timestamp, method, path string) string {
	mac := hmac.New(sha256.New, []byte(c.creds.SecretKey))
	fmt.Fprintf(mac, "%s.%s.%s", timestamp, method, path)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Call issues one signed request and returns the raw JSON body of a 200
// response. 429s are retried with a linearly increasing delay; any other
// failure is returned as an error after logging, never panicked.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	// Preserve the signing quirk even if a caller passes query parameters
	// inside the path.
	path = strings.SplitN(path, "?", 2)[0]

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, retryable, err := c.do(ctx, method, path, reqURL, payload)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		metrics.RecordUpstreamRetry()
		delay := time.Duration(attempt) * retryDelayUnit
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// do performs a single attempt. The second return value reports whether the
// failure is worth retrying (rate limits only).
func (c *Client) do(ctx context.Context, method, path, reqURL string, payload []byte) (json.RawMessage, bool, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, false, err
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-API-KEY", c.creds.APIKey)
	req.Header.Set("X-Customer", c.creds.CustomerID)
	req.Header.Set("X-Signature", c.sign(timestamp, method, path))

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(pathLabel(path), "error")
		slog.Error("upstream request failed", "method", method, "path", path, "error", err)
		return nil, false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	metrics.RecordUpstreamRequest(pathLabel(path), strconv.Itoa(resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return raw, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("%s %s: %w", method, path, ErrRateLimited)
	default:
		apiErr := &APIError{Status: resp.StatusCode, Snippet: snippet(raw)}
		var parsed struct {
			Code  int    `json:"code"`
			Title string `json:"title"`
		}
		if json.Unmarshal(raw, &parsed) == nil {
			apiErr.Code = parsed.Code
			apiErr.Title = parsed.Title
		}
		slog.Error("upstream rejected request",
			"method", method, "path", path,
			"status", resp.StatusCode, "response", apiErr.Snippet)
		return nil, false, apiErr
	}
}

// pathLabel collapses a path to its first two segments so per-entity ids
// don't explode metric cardinality.
func pathLabel(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[0] + "/" + parts[1]
	}
	return "/" + parts[0]
}

func snippet(raw []byte) string {
	if len(raw) > maxSnippet {
		raw = raw[:maxSnippet]
	}
	return string(raw)
}
