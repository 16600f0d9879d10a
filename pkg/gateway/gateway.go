package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// RequestTimeout bounds every round trip to the remote service. The gateway
// never retries; retry policy, if any, belongs to the caller.
const RequestTimeout = 10 * time.Second

// Credential is the shared-secret pair attached to every request. The remote
// service does not use per-request signing, so the channel carries the secret
// as-is on each call.
type Credential struct {
	Key    string
	Secret string
}

// RemoteError is returned for every failed call. Status 0 means the transport
// failed before any HTTP status was received (timeout, connection refused).
type RemoteError struct {
	Status  int
	Message string
	RawBody string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return "transport error: " + e.Message
	}
	return fmt.Sprintf("remote error (HTTP %d): %s", e.Status, e.Message)
}

// Client issues authenticated JSON requests against one remote service.
// It holds no state across calls beyond the fixed credential.
type Client struct {
	baseURL string
	cred    Credential
	http    *http.Client
}

func New(baseURL string, cred Credential) *Client {
	return NewWithHTTPClient(baseURL, cred, &http.Client{Timeout: RequestTimeout})
}

// NewWithHTTPClient allows callers to supply a custom transport (proxy, test
// server). The timeout is forced regardless of what the caller configured.
func NewWithHTTPClient(baseURL string, cred Credential, hc *http.Client) *Client {
	hc.Timeout = RequestTimeout
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cred:    cred,
		http:    hc,
	}
}

// Do performs one request and returns the raw response body. Any failure,
// transport or remote, comes back as *RemoteError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &RemoteError{Message: "encode request body: " + err.Error()}
		}
		reader = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &RemoteError{Message: err.Error()}
	}
	req.Header.Set("X-API-Key", c.cred.Key)
	req.Header.Set("X-API-Secret", c.cred.Secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Message: "read response body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{
			Status:  resp.StatusCode,
			Message: errorMessage(raw, resp.StatusCode),
			RawBody: string(raw),
		}
	}

	return raw, nil
}

// errorMessage extracts the remote-supplied message from an error body,
// degrading to the HTTP status text when no such field is present.
func errorMessage(raw []byte, status int) string {
	for _, field := range []string{"error", "message"} {
		if v := gjson.GetBytes(raw, field); v.Exists() && v.Str != "" {
			return v.Str
		}
	}
	return http.StatusText(status)
}
