// Package paylane is a client for the PayLane REST API.
//
// Every operation is a JSON request sent with HTTP Basic authentication to
// a fixed path. Transport failures and a small set of HTTP status codes are
// returned as errors; everything else, including declined payments, comes
// back as a decoded Response whose "success" field tells the outcome.
package paylane

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://direct.paylane.com/rest/"

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPut:    {},
	http.MethodPost:   {},
	http.MethodDelete: {},
}

// maxResponseBytes caps a response body after decompression.
const maxResponseBytes = 16 << 20

var errResponseTooLarge = errors.New("response body exceeds size limit")

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	observer CallObserver

	sslVerify atomic.Bool
	success   atomic.Bool

	mu         sync.Mutex
	transports map[bool]http.RoundTripper
}

// New constructs a Client authenticating as username/password against
// DefaultBaseURL unless WithBaseURL says otherwise.
func New(username, password string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		username:   username,
		password:   password,
		http:       &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		transports: make(map[bool]http.RoundTripper, 2),
	}
	c.sslVerify.Store(true)

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSSLVerify toggles TLS peer verification for all subsequent calls.
// Only disable it against test endpoints with self-signed certificates.
func (c *Client) SetSSLVerify(verify bool) {
	c.sslVerify.Store(verify)
}

func (c *Client) SSLVerify() bool {
	return c.sslVerify.Load()
}

// IsSuccess reports whether the most recent call returned a truthy
// "success" field. Goroutines sharing a Client should use Response.Success
// on their own result instead.
func (c *Client) IsSuccess() bool {
	return c.success.Load()
}

// Call sends params as JSON to baseURL+path with the given method. The
// method is matched case-insensitively against GET, PUT, POST and DELETE.
func (c *Client) Call(ctx context.Context, path, method string, params Params) (Response, error) {
	return c.call(ctx, "", path, method, params)
}

func (c *Client) call(ctx context.Context, operation, path, method string, params Params) (Response, error) {
	c.success.Store(false)

	rec := CallRecord{
		ID:        uuid.New(),
		Operation: operation,
		Method:    strings.ToUpper(method),
		Path:      path,
		StartedAt: time.Now(),
	}
	logger := c.logger.With(
		"call_id", rec.ID.String(),
		"operation", operation,
		"method", rec.Method,
		"path", path,
	)

	if _, ok := allowedMethods[rec.Method]; !ok {
		logger.Warn("request method is not supported by the API, sending anyway")
	}

	logger.Debug("calling API")
	resp, status, err := c.send(ctx, logger, rec.Method, path, params)

	rec.StatusCode = status
	rec.Err = err
	rec.Success = err == nil && resp.Success()
	rec.Duration = time.Since(rec.StartedAt)

	if rec.Success {
		c.success.Store(true)
	}
	c.finish(ctx, logger, rec)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, logger *slog.Logger, method, path string, params Params) (Response, int, error) {
	if params == nil {
		params = Params{}
	}
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshalling params: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate")
	httpReq.SetBasicAuth(c.username, c.password)

	httpResp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, 0, &ServerConnectionError{BaseURL: c.baseURL, Err: err}
	}
	defer httpResp.Body.Close()

	if callErr, ok := newHTTPCallError(httpResp.StatusCode); ok {
		return nil, httpResp.StatusCode, callErr
	}

	body, err := readBody(httpResp)
	if err != nil {
		return nil, httpResp.StatusCode, &ServerConnectionError{BaseURL: c.baseURL, Err: err}
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.Warn("response body is not a JSON object", "status", httpResp.StatusCode, "error", err)
		return nil, httpResp.StatusCode, nil
	}

	return resp, httpResp.StatusCode, nil
}

func (c *Client) finish(ctx context.Context, logger *slog.Logger, rec CallRecord) {
	recordMetrics(rec)

	if rec.Err != nil {
		logger.Error("API call failed",
			"status", rec.StatusCode,
			"duration", rec.Duration,
			"error", rec.Err,
		)
	} else {
		logger.Debug("API call completed",
			"status", rec.StatusCode,
			"success", rec.Success,
			"duration", rec.Duration,
		)
	}

	if c.observer != nil {
		c.observer.ObserveCall(ctx, rec)
	}
}

// httpClient returns a shallow copy of the configured client whose
// transport matches the current TLS verification flag. Redirects are
// returned to the caller, never followed: a redirect would resend the
// payload and credentials to another URL.
func (c *Client) httpClient() *http.Client {
	hc := *c.http
	hc.Transport = c.transportFor(c.sslVerify.Load())
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &hc
}

func (c *Client) transportFor(verify bool) http.RoundTripper {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rt, ok := c.transports[verify]; ok {
		return rt
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	t, ok := base.(*http.Transport)
	if !ok {
		return base
	}

	t = t.Clone()
	if t.TLSClientConfig == nil {
		t.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	t.TLSClientConfig.InsecureSkipVerify = !verify //nolint:gosec // opt-in via SetSSLVerify(false)

	c.transports[verify] = t
	return t
}

// readBody drains the response and undoes the content encoding requested
// through Accept-Encoding.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("error opening gzip body: %w", err)
		}
		defer zr.Close()
		return readLimited(zr)
	case "deflate":
		return inflate(raw)
	default:
		return raw, nil
	}
}

// inflate accepts both zlib-wrapped and raw deflate streams; servers send either.
func inflate(raw []byte) ([]byte, error) {
	if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
		defer zr.Close()
		return readLimited(zr)
	}
	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()
	return readLimited(fr)
}

func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxResponseBytes {
		return nil, errResponseTooLarge
	}
	return b, nil
}
