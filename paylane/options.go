package paylane

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithBaseURL points the client at a different API root, e.g. a sandbox.
// Operation paths are appended verbatim, so the URL should end with "/".
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return errors.New("base url cannot be empty")
		}
		c.baseURL = baseURL
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client. If its Transport is an
// *http.Transport (or nil), TLS verification still follows SetSSLVerify;
// any other RoundTripper is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout bounds the total time of a single request. It applies
// regardless of where WithHTTPClient appears in the option list. Prefer
// context deadlines for per-call limits.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithObserver registers a hook that receives a CallRecord after every call.
func WithObserver(o CallObserver) Option {
	return func(c *Client) error {
		c.observer = o
		return nil
	}
}

// WithSSLVerify sets the initial TLS peer verification flag. Equivalent to
// calling SetSSLVerify right after New.
func WithSSLVerify(verify bool) Option {
	return func(c *Client) error {
		c.sslVerify.Store(verify)
		return nil
	}
}
