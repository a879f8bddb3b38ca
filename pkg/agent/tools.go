package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/backend"
	"cs-agent-be/pkg/events"
	"cs-agent-be/pkg/knowledge"
	"cs-agent-be/pkg/llm"
	"cs-agent-be/pkg/store"
)

// KnowledgeSearcher is the retrieval surface the search tool needs.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, filter access.Filter, limit int) ([]knowledge.Chunk, error)
}

// TicketBackend is the slice of the external backend the tools call.
type TicketBackend interface {
	CreateTicket(ctx context.Context, accessToken string, payload *backend.TicketPayload) error
	SaveSummary(ctx context.Context, accessToken string, payload *backend.SummaryPayload) error
}

// StateStore tracks per-conversation flags across turns.
type StateStore interface {
	Get(conversationID string) (*store.ConversationState, bool)
	Save(state *store.ConversationState)
}

// AnswerValidator schedules a ground-truth accuracy check. Fire-and-forget;
// the tool acknowledges immediately.
type AnswerValidator interface {
	ScheduleValidation(conversationId, userId, query, answer string)
}

// EventSink publishes domain events to the event bus. May be nil when the
// bus is unavailable; publishing is best-effort.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

// Toolset executes the capabilities exposed to the model. Every execution
// returns a plain string for the model to read; failures are reported inside
// that string ("FAILURE: ...") so the loop keeps going instead of aborting
// the exchange.
type Toolset struct {
	searcher  KnowledgeSearcher
	backend   TicketBackend
	provider  llm.LLMProvider
	states    StateStore
	validator AnswerValidator
	events    EventSink
	log       logger.ILogger
}

func NewToolset(
	searcher KnowledgeSearcher,
	ticketBackend TicketBackend,
	provider llm.LLMProvider,
	states StateStore,
	validator AnswerValidator,
	eventSink EventSink,
	log logger.ILogger,
) *Toolset {
	return &Toolset{
		searcher:  searcher,
		backend:   ticketBackend,
		provider:  provider,
		states:    states,
		validator: validator,
		events:    eventSink,
		log:       log,
	}
}

// Specs declares the tools offered on every chat call.
func (t *Toolset) Specs() []llm.ToolSpec {
	return []llm.ToolSpec{
		{
			Name:        constant.ToolSearchDocumentation,
			Description: "Search the documentation knowledge base for information relevant to the user's question. Use this for any technical question.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search query derived from the user's question",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        constant.ToolCreateSupportTicket,
			Description: "Create a support ticket once the user has confirmed the details. Call this immediately after confirmation.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Short ticket title",
					},
					"main_issue": map[string]interface{}{
						"type":        "string",
						"description": "One-line statement of the core problem",
					},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "Summary of the conversation so far",
					},
				},
				"required": []string{"title"},
			},
		},
		{
			Name:        constant.ToolValidateWithTruth,
			Description: "Check a drafted answer against the curated reference material. Returns immediately; the check runs in the background.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The user question being answered",
					},
					"answer": map[string]interface{}{
						"type":        "string",
						"description": "The drafted answer to validate",
					},
				},
				"required": []string{"query", "answer"},
			},
		},
		{
			Name:        constant.ToolSaveSummary,
			Description: "Save a closing summary of the conversation. Call this when the user indicates the issue is resolved. Do not ask the user for the summary fields.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "Optional pre-written summary; derived automatically when omitted",
					},
					"topic": map[string]interface{}{
						"type":        "string",
						"description": "Optional conversation topic",
					},
					"main_issue": map[string]interface{}{
						"type":        "string",
						"description": "Optional main issue statement",
					},
				},
			},
		},
	}
}

// Execute dispatches one tool call. history is the chat transcript up to and
// including the current user message; the summary tool derives its fields
// from it when the model supplies none.
func (t *Toolset) Execute(ctx context.Context, turn TurnContext, call llm.ToolCall, history []llm.Message) string {
	switch call.Name {
	case constant.ToolSearchDocumentation:
		return t.searchDocumentation(ctx, turn, call.Args)
	case constant.ToolCreateSupportTicket:
		return t.createSupportTicket(ctx, turn, call.Args, history)
	case constant.ToolSaveSummary:
		return t.saveConversationSummary(ctx, turn, call.Args, history)
	case constant.ToolValidateWithTruth:
		return t.validateAnswer(turn, call.Args)
	default:
		return fmt.Sprintf("FAILURE: unknown tool '%s'", call.Name)
	}
}

func (t *Toolset) searchDocumentation(ctx context.Context, turn TurnContext, args map[string]interface{}) string {
	query := stringArg(args, "query")
	if query == "" {
		query = turn.Message
	}

	chunks, err := t.searcher.Search(ctx, query, turn.Filter, knowledge.DefaultLimit)
	if err != nil {
		t.log.Error("agent", "documentation search failed", map[string]interface{}{
			"conversation_id": turn.ConversationID,
			"error":           err.Error(),
		})
		return "FAILURE: documentation search is temporarily unavailable."
	}

	if len(chunks) == 0 {
		return constant.NothingFoundMessage
	}

	return knowledge.GroundingContext(chunks)
}

func (t *Toolset) validateAnswer(turn TurnContext, args map[string]interface{}) string {
	query := stringArg(args, "query")
	answer := stringArg(args, "answer")
	if query == "" || answer == "" {
		return "FAILURE: both query and answer are required."
	}

	t.validator.ScheduleValidation(turn.ConversationID, turn.UserID, query, answer)

	return "SUCCESS: Validation scheduled. Continue helping the user; results are recorded separately."
}

func (t *Toolset) createSupportTicket(ctx context.Context, turn TurnContext, args map[string]interface{}, history []llm.Message) string {
	title := stringArg(args, "title")
	if title == "" {
		return "FAILURE: a ticket title is required."
	}
	mainIssue := stringArg(args, "main_issue")
	if mainIssue == "" {
		mainIssue = title
	}
	summary := stringArg(args, "summary")
	if summary == "" {
		summary = mainIssue
	}

	payload := &backend.TicketPayload{
		ConversationId:      turn.ConversationID,
		UserId:              turn.UserID,
		TenantId:            turn.TenantID,
		SessionId:           turn.SessionID,
		Title:               title,
		Description:         mainIssue,
		Summary:             summary,
		UserName:            turn.UserName,
		UserEmail:           turn.UserEmail,
		ConversationHistory: toHistoryMessages(history),
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		Metadata: map[string]interface{}{
			"userRole": turn.UserRole,
		},
	}

	if err := t.backend.CreateTicket(ctx, turn.AccessToken, payload); err != nil {
		t.log.Error("agent", "ticket creation failed", map[string]interface{}{
			"conversation_id": turn.ConversationID,
			"error":           err.Error(),
		})
		return "FAILURE: the ticket could not be created. Apologize and ask the user to try again later."
	}

	t.log.Info("agent", "support ticket created", map[string]interface{}{
		"conversation_id": turn.ConversationID,
		"title":           title,
	})

	if t.events != nil {
		event := events.NewTicketCreatedEvent(turn.ConversationID, turn.UserID, title)
		if err := t.events.Publish(ctx, event); err != nil {
			t.log.Warn("agent", "failed to publish ticket event", map[string]interface{}{
				"conversation_id": turn.ConversationID,
				"error":           err.Error(),
			})
		}
	}

	return fmt.Sprintf("SUCCESS: Support ticket '%s' has been created. Inform the user.", title)
}

func (t *Toolset) saveConversationSummary(ctx context.Context, turn TurnContext, args map[string]interface{}, history []llm.Message) string {
	if state, found := t.states.Get(turn.ConversationID); found && state.SummarySent {
		return "SUCCESS: A summary was already saved for this conversation."
	}

	summary := stringArg(args, "summary")
	topic := stringArg(args, "topic")
	mainIssue := stringArg(args, "main_issue")

	// The model rarely fills these in; deriving them here keeps the burden
	// off the user.
	if summary == "" || topic == "" {
		derived, err := t.deriveSummary(ctx, history)
		if err != nil {
			t.log.Error("agent", "summary derivation failed", map[string]interface{}{
				"conversation_id": turn.ConversationID,
				"error":           err.Error(),
			})
			if summary == "" {
				return "FAILURE: the summary could not be generated."
			}
		} else {
			if summary == "" {
				summary = derived.Summary
			}
			if topic == "" {
				topic = derived.Topic
			}
			if mainIssue == "" {
				mainIssue = derived.MainIssue
			}
		}
	}
	if topic == "" {
		topic = "Customer support conversation"
	}

	now := time.Now().UTC().Format(time.RFC3339)
	payload := &backend.SummaryPayload{
		ConversationId: turn.ConversationID,
		UserId:         turn.UserID,
		TenantId:       turn.TenantID,
		SessionId:      turn.SessionID,
		Topic:          topic,
		Description:    mainIssue,
		Summary:        summary,
		UserName:       turn.UserName,
		UserEmail:      turn.UserEmail,
		MessageCount:   len(history),
		ClosedAt:       now,
		LastMessageAt:  now,
	}

	if err := t.backend.SaveSummary(ctx, turn.AccessToken, payload); err != nil {
		t.log.Error("agent", "summary save failed", map[string]interface{}{
			"conversation_id": turn.ConversationID,
			"error":           err.Error(),
		})
		return "FAILURE: the conversation summary could not be saved."
	}

	state, found := t.states.Get(turn.ConversationID)
	if !found {
		state = &store.ConversationState{
			ConversationID: turn.ConversationID,
			UserID:         turn.UserID,
			TenantID:       turn.TenantID,
		}
	}
	state.SummarySent = true
	t.states.Save(state)

	return "SUCCESS: Conversation summary saved. Thank the user and close the conversation."
}

// SaveSummaryDirect runs the summary capability outside the model loop, for
// the post-turn pipeline when the model skipped its closing duty. Fields are
// always derived; there is no model-supplied input here.
func (t *Toolset) SaveSummaryDirect(ctx context.Context, turn TurnContext, history []llm.Message) string {
	return t.saveConversationSummary(ctx, turn, nil, history)
}

type derivedSummary struct {
	Summary   string `json:"summary"`
	Topic     string `json:"topic"`
	MainIssue string `json:"main_issue"`
}

func (t *Toolset) deriveSummary(ctx context.Context, history []llm.Message) (*derivedSummary, error) {
	prompt := constant.SummaryDerivationPromptV1 + renderTranscript(history)

	res, err := t.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, err
	}

	var derived derivedSummary
	if err := json.Unmarshal([]byte(StripJSONFences(res.Content)), &derived); err != nil {
		return nil, fmt.Errorf("parse summary response: %w", err)
	}
	if derived.Summary == "" {
		return nil, fmt.Errorf("model returned an empty summary")
	}
	return &derived, nil
}

// StripJSONFences removes a surrounding markdown code fence so the body can
// be unmarshalled. Models add these despite instructions not to.
func StripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func renderTranscript(history []llm.Message) string {
	var sb strings.Builder
	for _, msg := range history {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func toHistoryMessages(history []llm.Message) []backend.HistoryMessage {
	out := make([]backend.HistoryMessage, 0, len(history))
	for _, msg := range history {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		out = append(out, backend.HistoryMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return out
}

func stringArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
