// Package provider implements the remote Discord OAuth2 client: building the
// consent URL, exchanging an authorization code for a token, and resolving
// the authenticated user.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-training/discord-oauth/pkg/core"

	"golang.org/x/oauth2"
)

const (
	defaultHost    = "https://discord.com"
	requestTimeout = 10 * time.Second
)

// RemoteError reports a non-2xx response from the provider. Expected failure
// modes (rejected code, bad credentials) surface as this value so callers can
// inspect the upstream status explicitly; transport failures remain plain
// wrapped errors.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("discord returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to a Discord-compatible OAuth2 API.
type Client struct {
	host       string
	httpClient *http.Client
}

// NewClient creates a Discord client for the given host.
// An empty host defaults to https://discord.com.
func NewClient(host string) *Client {
	if host == "" {
		host = defaultHost
	}
	return &Client{
		host: strings.TrimRight(host, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// AuthorizeURL builds the consent-screen URL for the given client id,
// redirect URI, and space-delimited scopes. Pure and deterministic: identical
// inputs yield byte-identical URLs.
func (c *Client) AuthorizeURL(clientID, redirectURI, scopes string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      core.SplitScopes(scopes),
		Endpoint: oauth2.Endpoint{
			AuthURL: c.host + "/oauth2/authorize",
		},
	}
	// No state parameter: callers are expected to layer CSRF protection at
	// the deployment boundary if required.
	return cfg.AuthCodeURL("")
}

// ExchangeCode exchanges an authorization code for a token via
// POST /api/oauth2/token with basic authentication. A non-2xx response is
// returned as *RemoteError carrying the upstream status and body.
func (c *Client) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*core.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(clientID, clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token core.Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	return &token, nil
}

// FetchIdentity resolves the authenticated user via GET /api/users/@me with
// a bearer token. A non-2xx response is returned as *RemoteError; callers
// treat any failure as identity-absent.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*core.User, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/users/@me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user identity: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var user core.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user identity: %w", err)
	}
	return &user, nil
}
