package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	// Test default host
	client := NewClient("")
	if client.host != "https://discord.com" {
		t.Errorf("Expected default host to be https://discord.com, got %s", client.host)
	}
	if client.httpClient == nil {
		t.Error("Expected httpClient to be initialized")
	}

	// Test custom host with trailing slash trimmed
	client = NewClient("https://discord.example.com/")
	if client.host != "https://discord.example.com" {
		t.Errorf("Expected host to be https://discord.example.com, got %s", client.host)
	}
}

func TestClient_AuthorizeURL(t *testing.T) {
	client := NewClient("https://discord.com")

	url := client.AuthorizeURL("test-client", "https://example.com/callback", "identify email guilds")

	expectedParts := []string{
		"https://discord.com/oauth2/authorize",
		"client_id=test-client",
		"redirect_uri=https%3A%2F%2Fexample.com%2Fcallback",
		"response_type=code",
		"scope=identify+email+guilds",
	}
	for _, part := range expectedParts {
		if !strings.Contains(url, part) {
			t.Errorf("URL missing expected part %q. Full URL: %s", part, url)
		}
	}
}

func TestClient_AuthorizeURL_Deterministic(t *testing.T) {
	client := NewClient("https://discord.com")

	first := client.AuthorizeURL("test-client", "https://example.com/callback", "identify email guilds")
	second := client.AuthorizeURL("test-client", "https://example.com/callback", "identify email guilds")

	if first != second {
		t.Errorf("AuthorizeURL is not deterministic:\n%s\n%s", first, second)
	}
}

func TestClient_ExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/oauth2/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-123" || pass != "hunter2" {
			t.Errorf("missing or wrong basic auth: %q %q", user, pass)
		}
		if got := r.FormValue("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q, want authorization_code", got)
		}
		if got := r.FormValue("code"); got != "one-time-code" {
			t.Errorf("code = %q, want one-time-code", got)
		}
		if got := r.FormValue("redirect_uri"); got != "https://example.com/callback" {
			t.Errorf("redirect_uri = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-abc",
			"refresh_token": "refresh-def",
			"token_type":    "Bearer",
			"expires_in":    604800,
			"scope":         "identify email guilds",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	token, err := client.ExchangeCode(context.Background(), "client-123", "hunter2", "one-time-code", "https://example.com/callback")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if token.AccessToken != "access-abc" {
		t.Errorf("AccessToken = %q", token.AccessToken)
	}
	if token.RefreshToken != "refresh-def" {
		t.Errorf("RefreshToken = %q", token.RefreshToken)
	}
	if token.TokenType != "Bearer" {
		t.Errorf("TokenType = %q", token.TokenType)
	}
	if token.ExpiresIn != 604800 {
		t.Errorf("ExpiresIn = %d", token.ExpiresIn)
	}
	if token.Scope != "identify email guilds" {
		t.Errorf("Scope = %q", token.Scope)
	}
}

func TestClient_ExchangeCode_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	token, err := client.ExchangeCode(context.Background(), "client-123", "wrong", "stale-code", "https://example.com/callback")
	if token != nil {
		t.Error("expected nil token on remote error")
	}

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected *RemoteError, got %T: %v", err, err)
	}
	if remoteErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", remoteErr.StatusCode)
	}
	if !strings.Contains(remoteErr.Body, "invalid_grant") {
		t.Errorf("Body = %q, want upstream body preserved", remoteErr.Body)
	}
}

func TestClient_ExchangeCode_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL)
	_, err := client.ExchangeCode(context.Background(), "client-123", "hunter2", "code", "https://example.com/callback")
	if err == nil {
		t.Fatal("expected a transport error")
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		t.Errorf("transport failures must not be *RemoteError, got %v", remoteErr)
	}
}

func TestClient_FetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/users/@me" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-abc" {
			t.Errorf("Authorization = %q, want Bearer access-abc", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "80351110224678912",
			"username": "nelly",
			"email":    "nelly@example.com",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	user, err := client.FetchIdentity(context.Background(), "access-abc")
	if err != nil {
		t.Fatalf("FetchIdentity() error = %v", err)
	}

	if user.ID != "80351110224678912" {
		t.Errorf("ID = %q", user.ID)
	}
	if user.Username != "nelly" {
		t.Errorf("Username = %q", user.Username)
	}
	if user.Email != "nelly@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
}

func TestClient_FetchIdentity_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("missing scope"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	user, err := client.FetchIdentity(context.Background(), "access-abc")
	if user != nil {
		t.Error("expected nil user on remote error")
	}

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected *RemoteError, got %T: %v", err, err)
	}
	if remoteErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", remoteErr.StatusCode)
	}
}
