package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/core/netutil"
)

// DefaultEndpoint is the Vercel deployments API.
const DefaultEndpoint = "https://api.vercel.com/v13/deployments"

const maxResponseBody = 1 << 20

// APIError is a non-2xx answer from the deployment service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deployment api: status %d: %s", e.StatusCode, e.Body)
}

// Code returns the HTTP status; routers log it as err_code.
func (e *APIError) Code() string {
	return fmt.Sprintf("HTTP_%d", e.StatusCode)
}

// ClientConfig configures Client.
type ClientConfig struct {
	Endpoint string
	Token    string
	// Timeout bounds one upload; zero keeps the HTTP client default.
	Timeout time.Duration
}

// Client uploads archives to a Vercel-compatible deployments endpoint.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient returns a Client. Uploads are not retried.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		http: netutil.NewHTTPClient(netutil.ClientOptions{
			Timeout:               cfg.Timeout,
			ResponseHeaderTimeout: -1,
		}),
	}
}

type deploymentResponse struct {
	URL string `json:"url"`
}

// Upload posts the archive as the deployment named name and returns the
// host reported by the service.
func (c *Client) Upload(ctx context.Context, archive, name string) (string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return "", errors.Wrap(err, "open archive")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", errors.Wrap(err, "stat archive")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parse endpoint")
	}
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), f)
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.ContentLength = info.Size()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/zip")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "post deployment")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", errors.Wrap(err, "read deployment response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out deploymentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errors.Wrap(err, "decode deployment response")
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", errors.New("deployment response has no url")
	}
	return out.URL, nil
}

// PublicURL turns the host returned by the service into an https URL.
func PublicURL(host string) string {
	host = strings.TrimSpace(host)
	if strings.HasPrefix(host, "https://") || strings.HasPrefix(host, "http://") {
		return host
	}
	return "https://" + host
}
