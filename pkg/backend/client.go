package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HistoryMessage is one prior exchange attached to ticket payloads.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TicketPayload mirrors the backend's ticket intake schema.
type TicketPayload struct {
	ConversationId      string                 `json:"conversationId"`
	UserId              string                 `json:"userId"`
	TenantId            string                 `json:"tenantId"`
	SessionId           string                 `json:"sessionId"`
	Title               string                 `json:"title"`
	Description         string                 `json:"description"`
	Summary             string                 `json:"summary"`
	UserName            string                 `json:"userName"`
	UserEmail           string                 `json:"userEmail"`
	ConversationHistory []HistoryMessage       `json:"conversationHistory"`
	Timestamp           string                 `json:"timestamp"`
	Metadata            map[string]interface{} `json:"metadata"`
}

// SummaryPayload mirrors the backend's conversation-close schema.
type SummaryPayload struct {
	ConversationId string `json:"conversationId"`
	UserId         string `json:"userId"`
	TenantId       string `json:"tenantId"`
	SessionId      string `json:"sessionId"`
	Topic          string `json:"topic"`
	Description    string `json:"description"`
	Summary        string `json:"summary"`
	UserName       string `json:"userName"`
	UserEmail      string `json:"userEmail"`
	MessageCount   int    `json:"messageCount"`
	ClosedAt       string `json:"closedAt"`
	LastMessageAt  string `json:"lastMessageAt"`
}

// TurnMessage is one side of a synced turn.
type TurnMessage struct {
	SenderType string `json:"senderType"`
	Content    string `json:"content"`
}

// MessagesPayload mirrors the backend's per-turn message sync schema.
type MessagesPayload struct {
	ConversationId string        `json:"conversationId"`
	UserId         string        `json:"userId"`
	TenantId       string        `json:"tenantId"`
	SessionId      string        `json:"sessionId"`
	UserName       string        `json:"userName"`
	UserEmail      string        `json:"userEmail"`
	Timestamp      string        `json:"timestamp"`
	Messages       []TurnMessage `json:"messages"`
}

// Client talks to the external ticketing/conversation backend. Every call is
// a single POST with a bounded timeout; callers decide how to degrade when
// it fails. Nothing here retries.
type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateTicket files a support ticket. accessToken is the end user's bearer
// token, forwarded as-is.
func (c *Client) CreateTicket(ctx context.Context, accessToken string, payload *TicketPayload) error {
	return c.post(ctx, "/ticket", accessToken, payload)
}

// SaveSummary records a conversation-close summary.
func (c *Client) SaveSummary(ctx context.Context, accessToken string, payload *SummaryPayload) error {
	return c.post(ctx, "/conversation", accessToken, payload)
}

// SyncMessages pushes one completed turn (user + assistant message pair).
func (c *Client) SyncMessages(ctx context.Context, accessToken string, payload *MessagesPayload) error {
	return c.post(ctx, "/messages", accessToken, payload)
}

func (c *Client) post(ctx context.Context, path, accessToken string, payload interface{}) error {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(payloadJson))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.APIKey)

	res, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("backend returned %d: %s", res.StatusCode, string(body))
	}

	return nil
}
