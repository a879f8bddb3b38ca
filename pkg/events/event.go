package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTurnCompletedEvent is emitted after every finished chat exchange, once
// both message rows are persisted.
func NewTurnCompletedEvent(conversationId, userId, tenantId string, totalTokens int, toolCalls []string) Event {
	return BaseEvent{
		Type: "TURN_COMPLETED",
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"user_id":         userId,
			"tenant_id":       tenantId,
			"total_tokens":    totalTokens,
			"tool_calls":      toolCalls,
		},
		OccurredAt: time.Now(),
	}
}

// NewTicketCreatedEvent is emitted when the agent successfully files a ticket.
func NewTicketCreatedEvent(conversationId, userId, title string) Event {
	return BaseEvent{
		Type: "TICKET_CREATED",
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"user_id":         userId,
			"title":           title,
		},
		OccurredAt: time.Now(),
	}
}

// NewEvalCompletedEvent is emitted after an evaluation run is recorded.
func NewEvalCompletedEvent(conversationId, kind string, score float64, passed bool) Event {
	return BaseEvent{
		Type: "EVAL_COMPLETED",
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"kind":            kind,
			"score":           score,
			"passed":          passed,
		},
		OccurredAt: time.Now(),
	}
}
