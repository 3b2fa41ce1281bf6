package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/audiobot/session" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sess_1","client_secret":{"value":"tok_123","expires_at":1}}`))
	}))
	defer server.Close()

	c := NewSessionClient(server.URL)
	token, err := c.CreateSession(context.Background(), "be helpful", VoiceCoral)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if token != "tok_123" {
		t.Errorf("token = %q, want tok_123", token)
	}
	if gotBody["instructions"] != "be helpful" || gotBody["voice"] != VoiceCoral {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestCreateSessionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewSessionClient(server.URL)
	_, err := c.CreateSession(context.Background(), "", VoiceAlloy)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsRetryable(err) {
		t.Errorf("5xx should be retryable: %v", err)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreateSessionClientErrorIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	c := NewSessionClient(server.URL)
	_, err := c.CreateSession(context.Background(), "", VoiceAlloy)
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsRetryable(err) {
		t.Errorf("4xx must not be retryable: %v", err)
	}
}

func TestCreateSessionMissingSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"sess_1"}`))
	}))
	defer server.Close()

	c := NewSessionClient(server.URL)
	if _, err := c.CreateSession(context.Background(), "", VoiceAlloy); err == nil {
		t.Fatal("expected an error for a response without a client secret")
	}
}

func TestExchangeSDP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok_123" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/sdp" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if r.URL.Query().Get("model") != DefaultModel {
			t.Errorf("model = %q", r.URL.Query().Get("model"))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("v=0 answer"))
	}))
	defer server.Close()

	answer, err := exchangeSDP(context.Background(), http.DefaultClient, server.URL, DefaultModel, "tok_123", "v=0 offer")
	if err != nil {
		t.Fatalf("exchangeSDP failed: %v", err)
	}
	if answer != "v=0 answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestExchangeSDPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad sdp", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := exchangeSDP(context.Background(), http.DefaultClient, server.URL, DefaultModel, "tok", "sdp")
	if err == nil {
		t.Fatal("expected an error")
	}
}
