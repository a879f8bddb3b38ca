package store

// ConversationState is the ephemeral per-conversation memory kept between
// requests. It is a cache, not a source of truth; losing it only means a
// summary may be regenerated.
type ConversationState struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	TenantID       string `json:"tenant_id"`
	SummarySent    bool   `json:"summary_sent"`
	LastUserMsg    string `json:"last_user_msg"`
	TurnCount      int    `json:"turn_count"`
}
