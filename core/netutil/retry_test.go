package netutil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"canceled", context.Canceled, false},
		{"dial", dial, true},
		{"wrapped dial", &url.Error{Op: "Post", URL: "http://x", Err: dial}, true},
		{"timeout", &url.Error{Op: "Post", URL: "http://x", Err: timeoutErr{}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}

type flakyTransport struct {
	calls atomic.Int32
	fails int32
	next  http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
	}
	return f.next.RoundTrip(req)
}

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	flaky := &flakyTransport{fails: 2, next: http.DefaultTransport}
	rt := &retryTransport{base: flaky, maxRetries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestNewHTTPClientWithoutRetries(t *testing.T) {
	c := NewHTTPClient(ClientOptions{Timeout: -1, ResponseHeaderTimeout: -1})
	assert.Zero(t, c.Timeout)
	_, isRetry := c.Transport.(*retryTransport)
	assert.False(t, isRetry)
}
