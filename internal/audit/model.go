// Package audit keeps a tamper-evident trail of administrative actions.
// Each entry stores the hash of its predecessor, so edits or deletions in
// the middle of the log break the chain.
package audit

import "time"

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entity types.
const (
	EntityArticle = "article"
	EntityUser    = "user"
	EntityStats   = "stats"
)

// Actions.
const (
	ActionCreateArticle = "create_article"
	ActionUpdateArticle = "update_article"
	ActionDeleteArticle = "delete_article"
	ActionListUsers     = "list_users"
	ActionViewStats     = "view_stats"
)

// Entry is a stored audit record.
type Entry struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	RequestID  string    `json:"request_id,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// PreviousHash is the hex SHA-256 of the preceding entry, empty for the first.
	PreviousHash string `json:"previous_hash,omitempty"`
}

// LogEntry is the input for recording an entry.
type LogEntry struct {
	UserID     int64
	EntityType string
	EntityID   string
	Action     string
	Outcome    string
	RequestID  string
	IPAddress  string
	UserAgent  string
}
