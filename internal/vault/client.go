package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is the remote store interface the tree model talks to.
// Paths are normalized slash-joined strings without leading or trailing
// separators; the empty string is never passed.
type Client interface {
	// List returns the child names of a folder path, in server order.
	// Folder children carry a trailing "/".
	List(ctx context.Context, path string) ([]string, error)

	// Read returns the key/value mapping stored at a leaf path.
	Read(ctx context.Context, path string) (map[string]string, error)

	// Write replaces the mapping stored at a leaf path.
	Write(ctx context.Context, path string, data map[string]string) error

	// Delete removes the entry at a path.
	Delete(ctx context.Context, path string) error
}

const (
	tokenHeader    = "X-Vault-Token"
	requestTimeout = 10 * time.Second
)

// HTTPClient talks to a Vault KV v1 API over HTTP.
type HTTPClient struct {
	http *retryablehttp.Client
	base string // "<addr>/v1"

	mu    sync.RWMutex
	token string
}

// NewHTTPClient creates a client for the given server address and token.
func NewHTTPClient(addr, token string) (*HTTPClient, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", addr, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server address %q: missing http(s) scheme", addr)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = requestTimeout
	rc.RetryMax = 2
	rc.Logger = nil

	return &HTTPClient{
		http:  rc,
		base:  strings.TrimRight(u.String(), "/") + "/v1",
		token: token,
	}, nil
}

// SetToken swaps the auth token. Used when the token file changes on disk.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// response mirrors the Vault API envelope. Data shape depends on the request.
type response struct {
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Errors    []string        `json:"errors"`
	Warnings  []string        `json:"warnings"`
}

// List implements Client.
func (c *HTTPClient) List(ctx context.Context, path string) ([]string, error) {
	raw, err := c.do(ctx, "LIST", "list", path, nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &Error{Kind: KindOther, Op: "list", Path: path, Err: err}
	}
	return data.Keys, nil
}

// Read implements Client.
func (c *HTTPClient) Read(ctx context.Context, path string) (map[string]string, error) {
	raw, err := c.do(ctx, http.MethodGet, "read", path, nil)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &Error{Kind: KindOther, Op: "read", Path: path, Err: err}
	}
	secret := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			secret[k] = s
		} else {
			secret[k] = fmt.Sprint(v)
		}
	}
	return secret, nil
}

// Write implements Client.
func (c *HTTPClient) Write(ctx context.Context, path string, data map[string]string) error {
	body, err := json.Marshal(data)
	if err != nil {
		return &Error{Kind: KindOther, Op: "write", Path: path, Err: err}
	}
	_, err = c.do(ctx, http.MethodPost, "write", path, body)
	return err
}

// Delete implements Client.
func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, "delete", path, nil)
	return err
}

// do issues one request and maps the outcome onto the error taxonomy.
// Write-shaped calls return a nil data payload on success.
func (c *HTTPClient) do(ctx context.Context, method, op, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.base+"/"+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindOther, Op: op, Path: path, Err: err}
	}
	c.mu.RLock()
	req.Header.Set(tokenHeader, c.token)
	c.mu.RUnlock()
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		kind := KindUnreachable
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = KindCancelled
		}
		return nil, &Error{Kind: kind, Op: op, Path: path, Err: err}
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Kind: KindOther, Op: op, Path: path, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &Error{
			Kind:    kindForStatus(res.StatusCode),
			Op:      op,
			Path:    path,
			Message: apiErrorMessage(payload, res.StatusCode),
		}
	}

	if len(payload) == 0 {
		return nil, nil
	}
	var envelope response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, &Error{Kind: KindOther, Op: op, Path: path, Err: err}
	}
	if method == http.MethodGet || method == "LIST" {
		if len(envelope.Data) == 0 {
			return nil, &Error{Kind: KindNotFound, Op: op, Path: path, Message: "response contained no data"}
		}
	}
	return envelope.Data, nil
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return KindPermissionDenied
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUnreachable
	default:
		return KindOther
	}
}

// apiErrorMessage extracts the server's error strings from a failure body.
func apiErrorMessage(payload []byte, status int) string {
	var envelope response
	if err := json.Unmarshal(payload, &envelope); err == nil && len(envelope.Errors) > 0 {
		return strings.Join(envelope.Errors, "; ")
	}
	return fmt.Sprintf("server returned status %d", status)
}
