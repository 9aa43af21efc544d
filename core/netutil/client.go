package netutil

import (
	"net"
	"net/http"
	"time"
)

// ClientOptions tunes NewHTTPClient. Zero values fall back to the defaults
// used for Telegram API calls.
type ClientOptions struct {
	// Timeout bounds the whole request including body upload; negative disables it.
	Timeout time.Duration
	// ResponseHeaderTimeout bounds the wait for response headers; negative disables it.
	ResponseHeaderTimeout time.Duration
	// Retries is the number of extra attempts for transient network errors.
	Retries int
	Backoff time.Duration
}

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
	defaultResponseTimeout = 5 * time.Second
	defaultClientTimeout   = 30 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultRetryBackoff    = 2 * time.Second
)

// NewHTTPClient returns an HTTP client with bounded dial/TLS timeouts and an
// optional retry layer for idempotent requests.
func NewHTTPClient(opts ClientOptions) *http.Client {
	headerTimeout := opts.ResponseHeaderTimeout
	switch {
	case headerTimeout == 0:
		headerTimeout = defaultResponseTimeout
	case headerTimeout < 0:
		headerTimeout = 0
	}
	timeout := opts.Timeout
	switch {
	case timeout == 0:
		timeout = defaultClientTimeout
	case timeout < 0:
		timeout = 0
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Retries > 0 {
		backoff := opts.Backoff
		if backoff <= 0 {
			backoff = defaultRetryBackoff
		}
		rt = &retryTransport{base: rt, maxRetries: opts.Retries, backoff: backoff}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		curr := req
		if attempt > 0 {
			// Bodies that cannot be replayed are attempted once.
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			curr = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				curr.Body = body
			}
			timer := time.NewTimer(t.backoff * time.Duration(attempt))
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}
		}

		resp, err := t.base.RoundTrip(curr)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !ShouldRetry(err) {
			break
		}
	}
	return nil, lastErr
}
