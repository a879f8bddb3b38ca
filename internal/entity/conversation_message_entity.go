package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationMessage is one row of the durable message log. Two rows are
// written per turn (user + assistant); within a turn the assistant row's
// CreatedAt is strictly greater than the user row's.
type ConversationMessage struct {
	Id             uuid.UUID
	ConversationId string
	TenantId       string
	UserId         string
	SenderType     string // "user" | "assistant"
	Content        string
	ToolCalls      []string // tool names invoked while producing this message
	TotalTokens    int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
}
