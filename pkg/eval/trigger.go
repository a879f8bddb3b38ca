package eval

import (
	"context"
	"strings"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/contract"
	"cs-agent-be/pkg/events"
	"cs-agent-be/pkg/knowledge"

	"github.com/google/uuid"
)

// LatencyBudgetMs is the end-to-end turn latency counted as acceptable.
const LatencyBudgetMs = 30000

// GroundTruthSearcher is the slice of the knowledge gateway accuracy
// scoring needs.
type GroundTruthSearcher interface {
	SearchGroundTruth(ctx context.Context, query string, limit int) ([]knowledge.Chunk, error)
}

// EventPublisher pushes eval outcomes to the event bus. May be nil when the
// bus is unavailable; evaluation still records to the database.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// TurnSample is everything the evaluator needs about one finished exchange.
type TurnSample struct {
	ConversationID   string
	UserID           string
	UserMessage      string
	Output           string
	LatencyMs        int64
	TotalTokens      int
	ToolCallsInvoked []string
}

// Trigger decides which evaluations apply to a finished turn and records the
// results. Every check is independent: one failing never blocks the others,
// and nothing here ever surfaces to the user.
type Trigger struct {
	evalRepo    contract.EvalRunRepository
	messageRepo contract.ConversationMessageRepository
	groundTruth GroundTruthSearcher
	judge       *Judge
	publisher   EventPublisher
	log         logger.ILogger
}

func NewTrigger(
	evalRepo contract.EvalRunRepository,
	messageRepo contract.ConversationMessageRepository,
	groundTruth GroundTruthSearcher,
	judge *Judge,
	publisher EventPublisher,
	log logger.ILogger,
) *Trigger {
	return &Trigger{
		evalRepo:    evalRepo,
		messageRepo: messageRepo,
		groundTruth: groundTruth,
		judge:       judge,
		publisher:   publisher,
		log:         log,
	}
}

// EvaluateTurn runs the per-turn checks: performance always, reliability when
// any tool intent exists, accuracy only when retrieval actually ran.
func (t *Trigger) EvaluateTurn(ctx context.Context, sample TurnSample) {
	t.evaluatePerformance(ctx, sample)
	t.evaluateReliability(ctx, sample)
	t.evaluateAccuracy(ctx, sample)
}

func (t *Trigger) evaluatePerformance(ctx context.Context, sample TurnSample) {
	passed := sample.LatencyMs <= LatencyBudgetMs

	tokensPerSec := 0.0
	if sample.LatencyMs > 0 {
		tokensPerSec = float64(sample.TotalTokens) / (float64(sample.LatencyMs) / 1000)
	}

	t.record(ctx, &entity.EvalRun{
		Kind:           entity.EvalKindPerformance,
		ConversationId: sample.ConversationID,
		UserId:         sample.UserID,
		Input:          sample.UserMessage,
		Output:         sample.Output,
		Score:          float64(sample.LatencyMs),
		Passed:         passed,
		Payload: map[string]interface{}{
			"latency_ms":     sample.LatencyMs,
			"total_tokens":   sample.TotalTokens,
			"tokens_per_sec": tokensPerSec,
			"budget_ms":      LatencyBudgetMs,
		},
	})
}

func (t *Trigger) evaluateReliability(ctx context.Context, sample TurnSample) {
	expected := ExpectedToolCalls(sample.UserMessage, sample.Output)
	if len(expected) == 0 && len(sample.ToolCallsInvoked) == 0 {
		return
	}

	score, missing := CompareToolCalls(expected, sample.ToolCallsInvoked)

	t.record(ctx, &entity.EvalRun{
		Kind:           entity.EvalKindReliability,
		ConversationId: sample.ConversationID,
		UserId:         sample.UserID,
		Input:          sample.UserMessage,
		Output:         sample.Output,
		Score:          score * 10,
		Passed:         len(missing) == 0,
		Payload: map[string]interface{}{
			"expected_tools": expected,
			"actual_tools":   sample.ToolCallsInvoked,
			"missing_tools":  missing,
		},
	})
}

func (t *Trigger) evaluateAccuracy(ctx context.Context, sample TurnSample) {
	searchRan := false
	for _, name := range sample.ToolCallsInvoked {
		if name == constant.ToolSearchDocumentation {
			searchRan = true
			break
		}
	}
	if !searchRan {
		return
	}

	t.gradeAgainstGroundTruth(ctx, sample.ConversationID, sample.UserID,
		sample.UserMessage, sample.Output, "post_turn")
}

// ValidateAnswer grades one answer against the ground-truth collection, on
// request from the validation tool. Fire-and-forget from the caller's side.
func (t *Trigger) ValidateAnswer(ctx context.Context, conversationId, userId, query, answer string) {
	t.gradeAgainstGroundTruth(ctx, conversationId, userId, query, answer,
		constant.ToolValidateWithTruth)
}

func (t *Trigger) gradeAgainstGroundTruth(ctx context.Context, conversationId, userId, query, answer, requestedBy string) {
	chunks, err := t.groundTruth.SearchGroundTruth(ctx, query, 3)
	if err != nil {
		t.log.Error("eval", "ground truth lookup failed", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
		return
	}
	if len(chunks) == 0 {
		// No reference material, nothing to grade against.
		return
	}

	reference := knowledge.GroundingContext(chunks)
	verdict, err := t.judge.JudgeAccuracy(ctx, query, answer, reference)
	if err != nil {
		t.log.Error("eval", "accuracy judge failed", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
		return
	}

	t.record(ctx, &entity.EvalRun{
		Kind:           entity.EvalKindAccuracy,
		ConversationId: conversationId,
		UserId:         userId,
		Input:          query,
		Output:         answer,
		Score:          verdict.Score,
		Passed:         verdict.Score >= PassingScore,
		Payload: map[string]interface{}{
			"reasoning":        verdict.Reasoning,
			"reference_chunks": len(chunks),
			"requested_by":     requestedBy,
		},
	})
}

// EvaluateSession grades a whole conversation retrospectively. runId is
// chosen by the caller so it can be handed out before the judge finishes.
func (t *Trigger) EvaluateSession(ctx context.Context, runId uuid.UUID, conversationId, userId string) (*entity.EvalRun, error) {
	messages, err := t.messageRepo.FindRecentByConversation(ctx, conversationId, 100)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(msg.SenderType)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}

	verdict, err := t.judge.JudgeSession(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	run := &entity.EvalRun{
		Id:             runId,
		Kind:           entity.EvalKindSession,
		ConversationId: conversationId,
		UserId:         userId,
		Input:          sb.String(),
		Score:          verdict.Score,
		Passed:         verdict.Score >= PassingScore,
		Payload: map[string]interface{}{
			"reasoning":     verdict.Reasoning,
			"message_count": len(messages),
		},
	}
	t.record(ctx, run)

	return run, nil
}

func (t *Trigger) record(ctx context.Context, run *entity.EvalRun) {
	if run.Id == uuid.Nil {
		run.Id = uuid.New()
	}

	if err := t.evalRepo.Create(ctx, run); err != nil {
		t.log.Error("eval", "failed to record eval run", map[string]interface{}{
			"kind":            run.Kind,
			"conversation_id": run.ConversationId,
			"error":           err.Error(),
		})
		return
	}

	t.log.Info("eval", "eval run recorded", map[string]interface{}{
		"kind":            run.Kind,
		"conversation_id": run.ConversationId,
		"score":           run.Score,
		"passed":          run.Passed,
	})

	if t.publisher != nil {
		event := events.NewEvalCompletedEvent(run.ConversationId, run.Kind, run.Score, run.Passed)
		if err := t.publisher.Publish(ctx, event); err != nil {
			t.log.Warn("eval", "failed to publish eval event", map[string]interface{}{
				"kind":  run.Kind,
				"error": err.Error(),
			})
		}
	}
}
