// Package search is the client for the section search collaborator.
//
// The agent asks for a search through a function call; the raw call
// arguments are forwarded to the backend's search endpoint and the JSON
// result is serialized back into the function call output verbatim.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Client queries the search endpoint rooted at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a search client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a search with the function call arguments and returns the
// result JSON, indented, for the function call output. Malformed argument
// JSON is repaired before sending; model output is not always well formed.
func (c *Client) Search(ctx context.Context, arguments string) (string, error) {
	args := strings.TrimSpace(arguments)
	if args != "" && !json.Valid([]byte(args)) {
		fixed, err := jsonrepair.JSONRepair(args)
		if err != nil {
			return "", fmt.Errorf("unrepairable arguments %q: %w", args, err)
		}
		args = fixed
	}

	u := fmt.Sprintf("%s/audiobot/search_sections?%s", c.baseURL, url.Values{"query": {args}}.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("search failed: %d: %s", resp.StatusCode, string(body))
	}

	var result interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode search result: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
