package remote

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
)

// Client implements Store over an RTDB-style JSON REST tree.
//
// Every node of the tree is addressable as {base}/{path}.json; GET returns
// the subtree, PATCH merges children, PUT replaces a node, DELETE removes
// it. An auth token, when configured, is passed as a query parameter.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a remote store client for the given database URL.
// The token may be empty for public-read access paths.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetTree implements Store.GetTree.
func (c *Client) GetTree(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	// An absent subtree is returned as JSON null.
	if len(data) == 0 || string(data) == "null" {
		return map[string]json.RawMessage{}, nil
	}

	var tree map[string]json.RawMessage
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode tree at %s: %w", path, err)
	}
	return tree, nil
}

// UpdateTree implements Store.UpdateTree using a multi-key PATCH.
func (c *Client) UpdateTree(ctx context.Context, path string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	body, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal batch for %s: %w", path, err)
	}
	if _, err := c.doRequest(ctx, http.MethodPatch, path, body); err != nil {
		return err
	}
	return nil
}

// Put implements Store.Put.
func (c *Client) Put(ctx context.Context, path string, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", path, err)
	}
	if _, err := c.doRequest(ctx, http.MethodPut, path, body); err != nil {
		return err
	}
	return nil
}

// Delete implements Store.Delete.
func (c *Client) Delete(ctx context.Context, path string) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, path, nil); err != nil {
		return err
	}
	return nil
}

// doRequest performs one REST call against the tree.
// Transport errors are wrapped in ErrOffline; HTTP-level errors are not,
// since reaching the server means we are online.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, strings.Trim(path, "/"))
	if c.token != "" {
		u += "?auth=" + url.QueryEscape(c.token)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrOffline, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrOffline, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("remote store denied %s %s: %s", method, path, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote store error on %s %s: %s", method, path, resp.Status)
	}

	return data, nil
}
