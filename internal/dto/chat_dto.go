package dto

import "time"

// SendChatRequest is the POST /chat body. conversationId wins over sessionId
// when both are present; at least one is required.
type SendChatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationId string `json:"conversationId"`
	SessionId      string `json:"sessionId"`
	UserId         string `json:"userId"`
	TenantId       string `json:"tenantId"`
	UserRole       string `json:"userRole"`
	UserName       string `json:"userName"`
	UserEmail      string `json:"userEmail"`
	AccessToken    string `json:"accessToken"`
}

type SendChatResponse struct {
	Output         string `json:"output"`
	ConversationId string `json:"conversationId"`
	SessionId      string `json:"sessionId"`
	TotalTokens    int    `json:"totalTokens"`
}

// CallerIdentity is what the JWT middleware extracted from the request.
// Explicit body fields take priority over these.
type CallerIdentity struct {
	UserId      string
	UserName    string
	UserEmail   string
	UserRole    string
	AccessToken string
}

// SessionEvalRequest triggers a retrospective evaluation of a conversation.
type SessionEvalRequest struct {
	SessionId string `json:"sessionId" validate:"required"`
	UserId    string `json:"userId"`
}

// SessionEvalResponse acknowledges the scheduled review; the verdict is
// written to the eval store under RunId once the judge finishes.
type SessionEvalResponse struct {
	RunId          string `json:"runId"`
	ConversationId string `json:"conversationId"`
	Kind           string `json:"kind"`
	Status         string `json:"status"`
}

// SessionEvalResultResponse is the stored verdict for one scheduled review.
// Status is "pending" until the judge has recorded the run.
type SessionEvalResultResponse struct {
	RunId          string  `json:"runId"`
	ConversationId string  `json:"conversationId,omitempty"`
	Kind           string  `json:"kind"`
	Status         string  `json:"status"`
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
	Reasoning      string  `json:"reasoning,omitempty"`
}

// PublishTurnMessage is the internal pipeline payload emitted after every
// finished exchange and consumed by the post-turn worker.
type PublishTurnMessage struct {
	ConversationId string    `json:"conversation_id"`
	SessionId      string    `json:"session_id"`
	UserId         string    `json:"user_id"`
	TenantId       string    `json:"tenant_id"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
	UserRole       string    `json:"user_role"`
	AccessToken    string    `json:"access_token"`
	Message        string    `json:"message"`
	Output         string    `json:"output"`
	TotalTokens    int       `json:"total_tokens"`
	ToolCalls      []string  `json:"tool_calls"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}
