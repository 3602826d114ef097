package core

import "context"

// FlowRecord captures the observable outcome of a single authorization-code
// exchange. It holds only non-sensitive correlating fields; tokens and user
// email are never copied into it.
type FlowRecord struct {
	ID             string   `json:"id"`
	Outcome        string   `json:"outcome"`
	UpstreamStatus int      `json:"upstream_status,omitempty"`
	RequiredScopes []string `json:"required_scopes,omitempty"`
	GrantedScopes  []string `json:"granted_scopes,omitempty"`
	MissingScopes  []string `json:"missing_scopes,omitempty"`
	UserID         string   `json:"user_id,omitempty"`
	Username       string   `json:"username,omitempty"`
	CreatedAt      int64    `json:"created_at"`
}

// AuditStore defines the interface for recording and listing flow outcomes.
type AuditStore interface {
	SaveRecord(ctx context.Context, record *FlowRecord) error
	GetRecord(ctx context.Context, id string) (*FlowRecord, error)
	ListRecords(ctx context.Context, limit int) ([]*FlowRecord, error)
}
