package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultRealtimeURL is the default endpoint for the SDP offer/answer
// exchange.
const DefaultRealtimeURL = "https://api.openai.com/v1/realtime"

// SessionClient requests session credentials from the application backend.
type SessionClient struct {
	baseURL    string
	httpClient *http.Client
}

// SessionOption configures the SessionClient.
type SessionOption func(*SessionClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) SessionOption {
	return func(c *SessionClient) {
		c.httpClient = client
	}
}

// NewSessionClient creates a client for the session endpoint rooted at
// baseURL (e.g. "https://api.example.com").
func NewSessionClient(baseURL string, opts ...SessionOption) *SessionClient {
	c := &SessionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sessionResponse is the response from the session creation endpoint.
type sessionResponse struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	Model        string `json:"model"`
	ExpiresAt    int64  `json:"expires_at"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// CreateSession exchanges the session settings for a short-lived credential.
// A 5xx response yields a retryable *Error; any other non-2xx status is
// terminal.
func (c *SessionClient) CreateSession(ctx context.Context, instructions, voice string) (string, error) {
	reqBody := map[string]interface{}{
		"instructions": instructions,
		"voice":        voice,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/audiobot/session", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &Error{
			Code:       "session_creation_failed",
			Message:    fmt.Sprintf("failed to create session: %s", string(body)),
			HTTPStatus: resp.StatusCode,
		}
	}

	var sessResp sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sessResp); err != nil {
		return "", err
	}
	if sessResp.ClientSecret.Value == "" {
		return "", &Error{
			Code:    "session_creation_failed",
			Message: "response carried no client secret",
		}
	}

	return sessResp.ClientSecret.Value, nil
}

// exchangeSDP posts the local SDP offer to the realtime endpoint and returns
// the remote answer. The credential authorizes exactly one exchange.
func exchangeSDP(ctx context.Context, httpClient *http.Client, baseURL, model, credential, sdp string) (string, error) {
	url := fmt.Sprintf("%s?model=%s", baseURL, model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader([]byte(sdp)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &Error{
			Code:       "sdp_exchange_failed",
			Message:    fmt.Sprintf("failed to exchange SDP: %s", string(body)),
			HTTPStatus: resp.StatusCode,
		}
	}

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(answer), nil
}
