package dispatch

import (
	"context"
	"time"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/unitofwork"
	"cs-agent-be/pkg/agent"
	"cs-agent-be/pkg/backend"
	"cs-agent-be/pkg/eval"
	"cs-agent-be/pkg/llm"
	"cs-agent-be/pkg/store"

	"github.com/google/uuid"
)

// Turn is one finished exchange handed to the post-turn pipeline.
type Turn struct {
	Context agent.TurnContext
	// Output is the final user-facing reply, token trailer included.
	Output           string
	TotalTokens      int
	ToolCallsInvoked []string
	StartedAt        time.Time
	CompletedAt      time.Time
}

// TurnSyncer pushes finished turns to the external backend.
type TurnSyncer interface {
	SyncMessages(ctx context.Context, accessToken string, payload *backend.MessagesPayload) error
}

// SummarySaver runs the summary capability outside the model loop.
type SummarySaver interface {
	SaveSummaryDirect(ctx context.Context, turn agent.TurnContext, history []llm.Message) string
}

// StateStore tracks per-conversation flags across turns.
type StateStore interface {
	Get(conversationID string) (*store.ConversationState, bool)
	Save(state *store.ConversationState)
}

// Dispatcher runs the side effects of a finished turn: persist the message
// log, sync the turn to the backend, and catch a missed closing summary.
// Steps are isolated; one failing or panicking never stops the others, and
// nothing here reaches the user.
type Dispatcher struct {
	uowFactory unitofwork.RepositoryFactory
	syncer     TurnSyncer
	summaries  SummarySaver
	states     StateStore
	log        logger.ILogger
}

func NewDispatcher(
	uowFactory unitofwork.RepositoryFactory,
	syncer TurnSyncer,
	summaries SummarySaver,
	states StateStore,
	log logger.ILogger,
) *Dispatcher {
	return &Dispatcher{
		uowFactory: uowFactory,
		syncer:     syncer,
		summaries:  summaries,
		states:     states,
		log:        log,
	}
}

// Dispatch runs every post-turn step in order.
func (d *Dispatcher) Dispatch(ctx context.Context, turn *Turn) {
	d.runStep(ctx, turn, "persist_messages", d.persistMessages)
	d.runStep(ctx, turn, "sync_backend", d.syncBackend)
	d.runStep(ctx, turn, "closing_summary", d.closingSummary)
	d.runStep(ctx, turn, "update_state", d.updateState)
}

func (d *Dispatcher) runStep(ctx context.Context, turn *Turn, name string, step func(ctx context.Context, turn *Turn) error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("dispatch", "step panicked", map[string]interface{}{
				"step":            name,
				"conversation_id": turn.Context.ConversationID,
				"panic":           rec,
			})
		}
	}()

	if err := step(ctx, turn); err != nil {
		d.log.Error("dispatch", "step failed", map[string]interface{}{
			"step":            name,
			"conversation_id": turn.Context.ConversationID,
			"error":           err.Error(),
		})
	}
}

// persistMessages writes the turn's two rows in one transaction. The
// assistant timestamp is forced strictly after the user timestamp so
// chronological reads never interleave a turn, and a partial turn (user row
// without its reply) never lands in the log.
func (d *Dispatcher) persistMessages(ctx context.Context, turn *Turn) error {
	userTs := turn.StartedAt
	assistantTs := turn.CompletedAt
	if !assistantTs.After(userTs) {
		assistantTs = userTs.Add(time.Millisecond)
	}

	messages := []*entity.ConversationMessage{
		{
			Id:             uuid.New(),
			ConversationId: turn.Context.ConversationID,
			TenantId:       turn.Context.TenantID,
			UserId:         turn.Context.UserID,
			SenderType:     constant.SenderTypeUser,
			Content:        turn.Context.Message,
			CreatedAt:      userTs,
		},
		{
			Id:             uuid.New(),
			ConversationId: turn.Context.ConversationID,
			TenantId:       turn.Context.TenantID,
			UserId:         turn.Context.UserID,
			SenderType:     constant.SenderTypeAssistant,
			Content:        turn.Output,
			ToolCalls:      turn.ToolCallsInvoked,
			TotalTokens:    turn.TotalTokens,
			CreatedAt:      assistantTs,
		},
	}

	uow := d.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ConversationMessageRepository().CreateBulk(ctx, messages); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (d *Dispatcher) syncBackend(ctx context.Context, turn *Turn) error {
	payload := &backend.MessagesPayload{
		ConversationId: turn.Context.ConversationID,
		UserId:         turn.Context.UserID,
		TenantId:       turn.Context.TenantID,
		SessionId:      turn.Context.SessionID,
		UserName:       turn.Context.UserName,
		UserEmail:      turn.Context.UserEmail,
		Timestamp:      turn.CompletedAt.UTC().Format(time.RFC3339),
		Messages: []backend.TurnMessage{
			{SenderType: constant.SenderTypeUser, Content: turn.Context.Message},
			{SenderType: constant.SenderTypeAssistant, Content: turn.Output},
		},
	}

	return d.syncer.SyncMessages(ctx, turn.Context.AccessToken, payload)
}

// closingSummary saves the conversation summary when the user clearly closed
// the conversation but the model never called the summary tool.
func (d *Dispatcher) closingSummary(ctx context.Context, turn *Turn) error {
	for _, name := range turn.ToolCallsInvoked {
		if name == constant.ToolSaveSummary {
			return nil
		}
	}

	wantsSummary := false
	for _, name := range eval.ExpectedToolCalls(turn.Context.Message, turn.Output) {
		if name == constant.ToolSaveSummary {
			wantsSummary = true
			break
		}
	}
	if !wantsSummary {
		return nil
	}

	if state, found := d.states.Get(turn.Context.ConversationID); found && state.SummarySent {
		return nil
	}

	d.log.Info("dispatch", "closing phrase detected, saving missed summary", map[string]interface{}{
		"conversation_id": turn.Context.ConversationID,
	})

	history := []llm.Message{
		{Role: "user", Content: turn.Context.Message},
		{Role: "assistant", Content: turn.Output},
	}
	outcome := d.summaries.SaveSummaryDirect(ctx, turn.Context, history)

	d.log.Info("dispatch", "missed summary handled", map[string]interface{}{
		"conversation_id": turn.Context.ConversationID,
		"outcome":         outcome,
	})
	return nil
}

func (d *Dispatcher) updateState(ctx context.Context, turn *Turn) error {
	state, found := d.states.Get(turn.Context.ConversationID)
	if !found {
		state = &store.ConversationState{
			ConversationID: turn.Context.ConversationID,
			UserID:         turn.Context.UserID,
			TenantID:       turn.Context.TenantID,
		}
	}
	state.LastUserMsg = turn.Context.Message
	state.TurnCount++
	d.states.Save(state)
	return nil
}
