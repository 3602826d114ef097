package core

// redactedPlaceholder replaces secret values in loggable copies.
const redactedPlaceholder = "[REDACTED]"

// Token represents the token response returned by the provider's
// /oauth2/token endpoint. It lives for the duration of a single request and
// is never persisted.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"` // Optional, may not be present in all responses
	TokenType    string `json:"token_type"`              // e.g., "Bearer"
	ExpiresIn    int64  `json:"expires_in,omitempty"`    // Duration in seconds
	Scope        string `json:"scope,omitempty"`         // Space-delimited granted scopes
}

// Redacted returns a copy safe for logging: both token secrets are masked,
// the receiver is left untouched. Returns nil for a nil token.
func (t *Token) Redacted() *Token {
	if t == nil {
		return nil
	}
	out := *t
	if out.AccessToken != "" {
		out.AccessToken = redactedPlaceholder
	}
	if out.RefreshToken != "" {
		out.RefreshToken = redactedPlaceholder
	}
	return &out
}

// User represents the authenticated end user as reported by the provider's
// /users/@me endpoint.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Redacted returns a copy safe for logging with the email masked.
// Returns nil for a nil user.
func (u *User) Redacted() *User {
	if u == nil {
		return nil
	}
	out := *u
	if out.Email != "" {
		out.Email = redactedPlaceholder
	}
	return &out
}
