package eval

import (
	"context"
	"testing"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/specification"
	"cs-agent-be/pkg/knowledge"
	"cs-agent-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvalRepo struct {
	runs []*entity.EvalRun
}

func (r *fakeEvalRepo) Create(ctx context.Context, run *entity.EvalRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeEvalRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EvalRun, error) {
	return r.runs, nil
}

func (r *fakeEvalRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.runs)), nil
}

func (r *fakeEvalRepo) byKind(kind string) []*entity.EvalRun {
	var out []*entity.EvalRun
	for _, run := range r.runs {
		if run.Kind == kind {
			out = append(out, run)
		}
	}
	return out
}

type fakeMessageRepo struct {
	messages []*entity.ConversationMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ConversationMessage) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) CreateBulk(ctx context.Context, messages []*entity.ConversationMessage) error {
	r.messages = append(r.messages, messages...)
	return nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error) {
	return r.messages, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.messages)), nil
}

func (r *fakeMessageRepo) FindRecentByConversation(ctx context.Context, conversationId string, limit int) ([]*entity.ConversationMessage, error) {
	return r.messages, nil
}

type fakeGroundTruth struct {
	chunks []knowledge.Chunk
	err    error
}

func (g *fakeGroundTruth) SearchGroundTruth(ctx context.Context, query string, limit int) ([]knowledge.Chunk, error) {
	return g.chunks, g.err
}

type judgeProvider struct {
	response string
	err      error
}

func (p *judgeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.response}, nil
}

func (p *judgeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Response, error) {
	return p.Chat(ctx, nil, options...)
}

func newTestTrigger(evalRepo *fakeEvalRepo, msgRepo *fakeMessageRepo, gt *fakeGroundTruth, judgeResponse string) *Trigger {
	log := logger.NewNoopLogger()
	judge := NewJudge(&judgeProvider{response: judgeResponse}, "judge-model")
	return NewTrigger(evalRepo, msgRepo, gt, judge, nil, log)
}

func TestEvaluateTurnPerformanceAlwaysRecorded(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	trigger := newTestTrigger(evalRepo, &fakeMessageRepo{}, &fakeGroundTruth{}, "")

	trigger.EvaluateTurn(context.Background(), TurnSample{
		ConversationID: "conv-1",
		UserMessage:    "hello",
		Output:         "hi there",
		LatencyMs:      1200,
		TotalTokens:    80,
	})

	perf := evalRepo.byKind(entity.EvalKindPerformance)
	require.Len(t, perf, 1)
	assert.True(t, perf[0].Passed)
	assert.Equal(t, float64(1200), perf[0].Score)
	assert.Equal(t, int64(1200), perf[0].Payload["latency_ms"])

	// "hello" carries no tool intent and nothing ran
	assert.Empty(t, evalRepo.byKind(entity.EvalKindReliability))
	assert.Empty(t, evalRepo.byKind(entity.EvalKindAccuracy))
}

func TestEvaluateTurnPerformanceOverBudget(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	trigger := newTestTrigger(evalRepo, &fakeMessageRepo{}, &fakeGroundTruth{}, "")

	trigger.EvaluateTurn(context.Background(), TurnSample{
		ConversationID: "conv-1",
		UserMessage:    "hello",
		LatencyMs:      45000,
	})

	perf := evalRepo.byKind(entity.EvalKindPerformance)
	require.Len(t, perf, 1)
	assert.False(t, perf[0].Passed)
}

func TestEvaluateTurnReliabilityMissingTool(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	trigger := newTestTrigger(evalRepo, &fakeMessageRepo{}, &fakeGroundTruth{}, "")

	trigger.EvaluateTurn(context.Background(), TurnSample{
		ConversationID:   "conv-1",
		UserMessage:      "How do I configure the VPN?",
		Output:           "Just click around until it works.",
		LatencyMs:        500,
		ToolCallsInvoked: nil,
	})

	rel := evalRepo.byKind(entity.EvalKindReliability)
	require.Len(t, rel, 1)
	assert.False(t, rel[0].Passed)
	assert.Equal(t, float64(0), rel[0].Score)
	assert.Equal(t, []string{constant.ToolSearchDocumentation}, rel[0].Payload["missing_tools"])
}

func TestEvaluateTurnReliabilityClosingInReply(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	trigger := newTestTrigger(evalRepo, &fakeMessageRepo{}, &fakeGroundTruth{}, "")

	trigger.EvaluateTurn(context.Background(), TurnSample{
		ConversationID:   "conv-1",
		UserMessage:      "ok, how do I proceed next week?",
		Output:           "You're done for now. Feel free to reach out again!",
		LatencyMs:        500,
		ToolCallsInvoked: []string{constant.ToolSearchDocumentation},
	})

	rel := evalRepo.byKind(entity.EvalKindReliability)
	require.Len(t, rel, 1)
	assert.False(t, rel[0].Passed)
	assert.Equal(t, []string{constant.ToolSaveSummary}, rel[0].Payload["missing_tools"])
}

func TestEvaluateTurnAccuracyWithGroundTruth(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	gt := &fakeGroundTruth{chunks: []knowledge.Chunk{
		{Content: "VPN setup requires the corporate certificate."},
	}}
	trigger := newTestTrigger(evalRepo, &fakeMessageRepo{}, gt,
		`{"score": 9, "reasoning": "matches the reference"}`)

	trigger.EvaluateTurn(context.Background(), TurnSample{
		ConversationID:   "conv-1",
		UserMessage:      "How do I configure the VPN?",
		Output:           "Install the corporate certificate first.",
		LatencyMs:        500,
		ToolCallsInvoked: []string{constant.ToolSearchDocumentation},
	})

	acc := evalRepo.byKind(entity.EvalKindAccuracy)
	require.Len(t, acc, 1)
	assert.True(t, acc[0].Passed)
	assert.Equal(t, 9.0, acc[0].Score)
	assert.Equal(t, "matches the reference", acc[0].Payload["reasoning"])
}

func TestEvaluateTurnAccuracySkippedWithoutSearch(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	gt := &fakeGroundTruth{chunks: []knowledge.Chunk{{Content: "reference"}}}
	trigger := newTestTrigger(evalRepo, &fakeMessageRepo{}, gt, `{"score": 9, "reasoning": "x"}`)

	trigger.EvaluateTurn(context.Background(), TurnSample{
		ConversationID:   "conv-1",
		UserMessage:      "Yes, create the ticket",
		ToolCallsInvoked: []string{constant.ToolCreateSupportTicket},
	})

	assert.Empty(t, evalRepo.byKind(entity.EvalKindAccuracy))
}

func TestEvaluateTurnAccuracySkippedWithoutReference(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	trigger := newTestTrigger(evalRepo, &fakeMessageRepo{}, &fakeGroundTruth{}, `{"score": 9, "reasoning": "x"}`)

	trigger.EvaluateTurn(context.Background(), TurnSample{
		ConversationID:   "conv-1",
		UserMessage:      "How do I configure the VPN?",
		ToolCallsInvoked: []string{constant.ToolSearchDocumentation},
	})

	assert.Empty(t, evalRepo.byKind(entity.EvalKindAccuracy))
}

func TestEvaluateSession(t *testing.T) {
	evalRepo := &fakeEvalRepo{}
	msgRepo := &fakeMessageRepo{messages: []*entity.ConversationMessage{
		{SenderType: constant.SenderTypeUser, Content: "my printer is offline"},
		{SenderType: constant.SenderTypeAssistant, Content: "try power-cycling it"},
		{SenderType: constant.SenderTypeUser, Content: "that worked, thanks"},
	}}
	trigger := newTestTrigger(evalRepo, msgRepo, &fakeGroundTruth{},
		"```json\n{\"score\": 8, \"reasoning\": \"helpful and resolved\"}\n```")

	runId := uuid.New()
	run, err := trigger.EvaluateSession(context.Background(), runId, "conv-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, runId, run.Id)
	assert.Equal(t, entity.EvalKindSession, run.Kind)
	assert.Equal(t, 8.0, run.Score)
	assert.True(t, run.Passed)
	assert.Equal(t, 3, run.Payload["message_count"])

	require.Len(t, evalRepo.byKind(entity.EvalKindSession), 1)
}

func TestJudgeRejectsOutOfRangeScore(t *testing.T) {
	judge := NewJudge(&judgeProvider{response: `{"score": 42, "reasoning": "x"}`}, "")

	_, err := judge.JudgeAccuracy(context.Background(), "q", "a", "ref")

	assert.Error(t, err)
}
