package agent

import (
	"cs-agent-be/pkg/access"
)

// TurnContext is the resolved, immutable identity and scope for a single
// exchange. It is built once per request and passed by value; tools never
// mutate it.
type TurnContext struct {
	ConversationID string
	SessionID      string
	UserID         string
	TenantID       string
	UserName       string
	UserEmail      string
	UserRole       string
	AccessToken    string

	Scope  access.Scope
	Filter access.Filter

	// Message is the raw user input for this turn.
	Message string
}
