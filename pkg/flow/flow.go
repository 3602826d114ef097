// Package flow drives the authorization-code exchange: entry, token
// exchange, scope validation, best-effort identity resolution, and the
// mapping of every failure path to a typed outcome.
package flow

import (
	"context"
	"errors"

	"github.com/go-training/discord-oauth/pkg/config"
	"github.com/go-training/discord-oauth/pkg/core"
	"github.com/go-training/discord-oauth/pkg/provider"
)

// OutcomeKind tags the terminal state of one flow invocation.
type OutcomeKind string

const (
	// OutcomeRedirectToAuthorize means no code was supplied; the caller
	// should redirect the user to the consent screen.
	OutcomeRedirectToAuthorize OutcomeKind = "redirect_to_authorize"
	// OutcomeConfigurationError means required deployment secrets are missing.
	OutcomeConfigurationError OutcomeKind = "configuration_error"
	// OutcomeExchangeFailed means the provider rejected the code or the call
	// never reached it.
	OutcomeExchangeFailed OutcomeKind = "exchange_failed"
	// OutcomeScopesMissing means the user granted fewer scopes than required.
	OutcomeScopesMissing OutcomeKind = "scopes_missing"
	// OutcomeSuccess means the exchange completed with all required scopes.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeUnexpectedError covers any fault outside the handled paths.
	OutcomeUnexpectedError OutcomeKind = "unexpected_error"
)

// Outcome is the single value one invocation produces; it fully determines
// the HTTP response. Only the fields relevant to Kind are populated.
type Outcome struct {
	Kind           OutcomeKind
	AuthorizeURL   string
	Message        string
	UpstreamStatus int
	UpstreamBody   string
	Required       []string
	Granted        []string
	Missing        []string
	Token          *core.Token
	User           *core.User
}

// Provider is the remote OAuth2 client the flow drives. Satisfied by
// *provider.Client.
type Provider interface {
	AuthorizeURL(clientID, redirectURI, scopes string) string
	ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*core.Token, error)
	FetchIdentity(ctx context.Context, accessToken string) (*core.User, error)
}

// Flow orchestrates one authorization-code exchange per Run call. It holds
// no per-request state and is safe for concurrent use.
type Flow struct {
	cfg      config.Config
	provider Provider
}

// New creates a Flow with the given configuration and provider.
func New(cfg config.Config, p Provider) *Flow {
	return &Flow{cfg: cfg, provider: p}
}

// Run executes the state machine for a single request. code is the raw
// `code` query parameter; empty means the user has not been to the consent
// screen yet. Run never panics: unexpected faults downgrade to
// OutcomeUnexpectedError with a generic message.
func (f *Flow) Run(ctx context.Context, code string) (out Outcome) {
	logger := core.LoggerFromCtx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Flow panicked", "panic", r)
			out = Outcome{
				Kind:         OutcomeUnexpectedError,
				Message:      "an unexpected error occurred, please try again",
				AuthorizeURL: f.authorizeURL(),
			}
		}
	}()

	if code == "" {
		if err := f.cfg.Validate(); err != nil {
			logger.Error("Incomplete configuration", "error", err)
			return Outcome{
				Kind:    OutcomeConfigurationError,
				Message: err.Error(),
			}
		}
		return Outcome{
			Kind:         OutcomeRedirectToAuthorize,
			AuthorizeURL: f.authorizeURL(),
		}
	}

	token, err := f.provider.ExchangeCode(ctx, f.cfg.ClientID, f.cfg.ClientSecret, code, f.cfg.RedirectURI)
	if err != nil {
		failure := Outcome{
			Kind:         OutcomeExchangeFailed,
			Message:      "token exchange failed",
			AuthorizeURL: f.authorizeURL(),
		}
		var remoteErr *provider.RemoteError
		if errors.As(err, &remoteErr) {
			failure.UpstreamStatus = remoteErr.StatusCode
			failure.UpstreamBody = remoteErr.Body
			logger.Error("Token exchange rejected", "upstream_status", remoteErr.StatusCode)
		} else {
			failure.Message = "could not reach the identity provider"
			logger.Error("Token exchange transport failure", "error", err)
		}
		return failure
	}

	granted := core.NewScopeSet(token.Scope)
	if missing := core.MissingScopes(f.cfg.RequiredScopes, granted); len(missing) > 0 {
		logger.Warn("Required scopes not granted",
			"required", f.cfg.RequiredScopes,
			"granted", token.Scope,
			"missing", missing,
		)
		return Outcome{
			Kind:         OutcomeScopesMissing,
			Required:     core.SplitScopes(f.cfg.RequiredScopes),
			Granted:      core.SplitScopes(token.Scope),
			Missing:      missing,
			AuthorizeURL: f.authorizeURL(),
		}
	}

	// Identity lookup is best-effort and never aborts a successful exchange.
	user, err := f.provider.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		logger.Debug("Identity lookup failed, continuing without user", "error", err)
		user = nil
	}

	logger.Info("Authorization flow completed",
		"scope", token.Scope,
		"user", user.Redacted(),
	)
	return Outcome{
		Kind:  OutcomeSuccess,
		Token: token,
		User:  user,
	}
}

func (f *Flow) authorizeURL() string {
	return f.provider.AuthorizeURL(f.cfg.ClientID, f.cfg.RedirectURI, f.cfg.RequiredScopes)
}
