package service

import (
	"context"
	"encoding/json"
	"time"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/dto"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/unitofwork"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/agent"
	"cs-agent-be/pkg/events"
	"cs-agent-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

// IChatService runs the synchronous part of a chat exchange. Side effects
// (message log, backend sync, evals) travel through the pipeline topic and
// never delay the reply.
type IChatService interface {
	SendChat(ctx context.Context, caller dto.CallerIdentity, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

// EventPublisher is the NATS surface the chat service needs. May be nil when
// the bus is down; turn events are best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	resolver         *access.Resolver
	runner           *agent.Runner
	publisherService IPublisherService
	eventPublisher   EventPublisher
	historyRuns      int
	log              logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	resolver *access.Resolver,
	runner *agent.Runner,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	historyRuns int,
	log logger.ILogger,
) IChatService {
	if historyRuns <= 0 {
		historyRuns = 10
	}
	return &chatService{
		uowFactory:       uowFactory,
		resolver:         resolver,
		runner:           runner,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		historyRuns:      historyRuns,
		log:              log,
	}
}

func (cs *chatService) SendChat(ctx context.Context, caller dto.CallerIdentity, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	// conversationId wins over sessionId; the two name the same stream for
	// legacy callers.
	conversationId := req.ConversationId
	if conversationId == "" {
		conversationId = req.SessionId
	}
	if conversationId == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "conversationId or sessionId is required")
	}

	turn := cs.buildTurnContext(conversationId, caller, req)

	history, err := cs.loadHistory(ctx, conversationId)
	if err != nil {
		// A cold start beats a refused request.
		cs.log.Error("chat", "history load failed, continuing without it", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
		history = nil
	}

	startedAt := time.Now()
	result, err := cs.runner.Run(ctx, turn, history)
	if err != nil {
		cs.log.Error("chat", "agent run failed", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
		return nil, fiber.NewError(fiber.StatusBadGateway, "The assistant is temporarily unavailable")
	}
	completedAt := time.Now()

	output := agent.AppendTokenTrailer(result.Output, result.TotalTokens)

	cs.publishTurn(turn, output, result, startedAt, completedAt)

	if cs.eventPublisher != nil {
		event := events.NewTurnCompletedEvent(conversationId, turn.UserID, turn.TenantID,
			result.TotalTokens, result.ToolCallsInvoked)
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			cs.log.Warn("chat", "failed to publish turn event", map[string]interface{}{
				"conversation_id": conversationId,
				"error":           err.Error(),
			})
		}
	}

	return &dto.SendChatResponse{
		Output:         output,
		ConversationId: conversationId,
		SessionId:      req.SessionId,
		TotalTokens:    result.TotalTokens,
	}, nil
}

func (cs *chatService) buildTurnContext(conversationId string, caller dto.CallerIdentity, req *dto.SendChatRequest) agent.TurnContext {
	userId := firstNonEmpty(req.UserId, caller.UserId)
	userName := firstNonEmpty(req.UserName, caller.UserName)
	userEmail := firstNonEmpty(req.UserEmail, caller.UserEmail)
	userRole := firstNonEmpty(req.UserRole, caller.UserRole)
	tenantId := firstNonEmpty(req.TenantId, constant.DefaultTenantID)

	scope := cs.resolver.Resolve(userRole)

	return agent.TurnContext{
		ConversationID: conversationId,
		SessionID:      req.SessionId,
		UserID:         userId,
		TenantID:       tenantId,
		UserName:       userName,
		UserEmail:      userEmail,
		UserRole:       userRole,
		AccessToken:    firstNonEmpty(caller.AccessToken, req.AccessToken),
		Scope:          scope,
		Filter:         access.BuildFilter(scope),
		Message:        req.Message,
	}
}

func (cs *chatService) loadHistory(ctx context.Context, conversationId string) ([]llm.Message, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ConversationMessageRepository().
		FindRecentByConversation(ctx, conversationId, cs.historyRuns*2)
	if err != nil {
		return nil, err
	}

	return toLLMHistory(messages), nil
}

func (cs *chatService) publishTurn(turn agent.TurnContext, output string, result *agent.Result, startedAt, completedAt time.Time) {
	payload := dto.PublishTurnMessage{
		ConversationId: turn.ConversationID,
		SessionId:      turn.SessionID,
		UserId:         turn.UserID,
		TenantId:       turn.TenantID,
		UserName:       turn.UserName,
		UserEmail:      turn.UserEmail,
		UserRole:       turn.UserRole,
		AccessToken:    turn.AccessToken,
		Message:        turn.Message,
		Output:         output,
		TotalTokens:    result.TotalTokens,
		ToolCalls:      result.ToolCallsInvoked,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		cs.log.Error("chat", "failed to marshal turn payload", map[string]interface{}{
			"conversation_id": turn.ConversationID,
			"error":           err.Error(),
		})
		return
	}

	if err := cs.publisherService.Publish(context.Background(), payloadJson); err != nil {
		cs.log.Error("chat", "failed to publish turn to pipeline", map[string]interface{}{
			"conversation_id": turn.ConversationID,
			"error":           err.Error(),
		})
	}
}

func toLLMHistory(messages []*entity.ConversationMessage) []llm.Message {
	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.SenderType == constant.SenderTypeAssistant {
			role = "assistant"
		}
		history = append(history, llm.Message{
			Role:    role,
			Content: agent.StripTokenTrailer(msg.Content),
		})
	}
	return history
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
