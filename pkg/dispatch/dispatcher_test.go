package dispatch

import (
	"context"
	"testing"
	"time"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/contract"
	"cs-agent-be/internal/repository/specification"
	"cs-agent-be/internal/repository/unitofwork"
	"cs-agent-be/pkg/agent"
	"cs-agent-be/pkg/backend"
	"cs-agent-be/pkg/llm"
	"cs-agent-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageRepo struct {
	messages []*entity.ConversationMessage
	err      error
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ConversationMessage) error {
	r.messages = append(r.messages, message)
	return r.err
}

func (r *fakeMessageRepo) CreateBulk(ctx context.Context, messages []*entity.ConversationMessage) error {
	if r.err != nil {
		return r.err
	}
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

type fakeUnitOfWork struct {
	repo      *fakeMessageRepo
	begins    int
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { u.begins++; return nil }
func (u *fakeUnitOfWork) Commit() error                   { u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback() error                 { u.rollbacks++; return nil }

func (u *fakeUnitOfWork) ConversationMessageRepository() contract.ConversationMessageRepository {
	return u.repo
}

func (u *fakeUnitOfWork) KnowledgeChunkRepository() contract.KnowledgeChunkRepository { return nil }
func (u *fakeUnitOfWork) EvalRunRepository() contract.EvalRunRepository               { return nil }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeSyncer struct {
	payloads []*backend.MessagesPayload
	err      error
}

func (s *fakeSyncer) SyncMessages(ctx context.Context, accessToken string, payload *backend.MessagesPayload) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

type fakeSummarySaver struct {
	calls int
}

func (s *fakeSummarySaver) SaveSummaryDirect(ctx context.Context, turn agent.TurnContext, history []llm.Message) string {
	s.calls++
	return "SUCCESS: Conversation summary saved."
}

type fakeStateStore struct {
	states map[string]*store.ConversationState
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: map[string]*store.ConversationState{}}
}

func (s *fakeStateStore) Get(conversationID string) (*store.ConversationState, bool) {
	st, ok := s.states[conversationID]
	return st, ok
}

func (s *fakeStateStore) Save(state *store.ConversationState) {
	s.states[state.ConversationID] = state
}

func testDispatchTurn(message string, toolCalls []string) *Turn {
	started := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return &Turn{
		Context: agent.TurnContext{
			ConversationID: "conv-1",
			UserID:         "user-1",
			TenantID:       "Thanos",
			Message:        message,
		},
		Output:           "Here you go.\n\nTotalToken: 120",
		TotalTokens:      120,
		ToolCallsInvoked: toolCalls,
		StartedAt:        started,
		CompletedAt:      started.Add(2 * time.Second),
	}
}

func newTestDispatcher(repo *fakeMessageRepo, syncer *fakeSyncer, saver *fakeSummarySaver, states *fakeStateStore) *Dispatcher {
	factory := &fakeUowFactory{uow: &fakeUnitOfWork{repo: repo}}
	return NewDispatcher(factory, syncer, saver, states, logger.NewNoopLogger())
}

func TestDispatchPersistsOrderedPair(t *testing.T) {
	repo := &fakeMessageRepo{}
	uow := &fakeUnitOfWork{repo: repo}
	states := newFakeStateStore()
	d := NewDispatcher(&fakeUowFactory{uow: uow}, &fakeSyncer{}, &fakeSummarySaver{}, states, logger.NewNoopLogger())

	d.Dispatch(context.Background(), testDispatchTurn("my printer is offline", nil))

	require.Len(t, repo.messages, 2)
	user, assistant := repo.messages[0], repo.messages[1]
	assert.Equal(t, constant.SenderTypeUser, user.SenderType)
	assert.Equal(t, constant.SenderTypeAssistant, assistant.SenderType)
	assert.Equal(t, 120, assistant.TotalTokens)
	assert.True(t, assistant.CreatedAt.After(user.CreatedAt))

	// both rows commit as one transaction
	assert.Equal(t, 1, uow.begins)
	assert.Equal(t, 1, uow.commits)
	assert.Equal(t, 0, uow.rollbacks)
}

func TestDispatchRollsBackFailedPersist(t *testing.T) {
	repo := &fakeMessageRepo{err: assert.AnError}
	uow := &fakeUnitOfWork{repo: repo}
	d := NewDispatcher(&fakeUowFactory{uow: uow}, &fakeSyncer{}, &fakeSummarySaver{}, newFakeStateStore(), logger.NewNoopLogger())

	d.Dispatch(context.Background(), testDispatchTurn("hello", nil))

	assert.Equal(t, 1, uow.rollbacks)
	assert.Equal(t, 0, uow.commits)
}

func TestDispatchForcesTimestampOrder(t *testing.T) {
	repo := &fakeMessageRepo{}
	d := newTestDispatcher(repo, &fakeSyncer{}, &fakeSummarySaver{}, newFakeStateStore())

	turn := testDispatchTurn("hello", nil)
	// clock skew: completion stamped before start
	turn.CompletedAt = turn.StartedAt.Add(-1 * time.Second)

	d.Dispatch(context.Background(), turn)

	require.Len(t, repo.messages, 2)
	assert.True(t, repo.messages[1].CreatedAt.After(repo.messages[0].CreatedAt))
	assert.Equal(t, time.Millisecond, repo.messages[1].CreatedAt.Sub(repo.messages[0].CreatedAt))
}

func TestDispatchSyncsBackend(t *testing.T) {
	syncer := &fakeSyncer{}
	d := newTestDispatcher(&fakeMessageRepo{}, syncer, &fakeSummarySaver{}, newFakeStateStore())

	d.Dispatch(context.Background(), testDispatchTurn("hello", nil))

	require.Len(t, syncer.payloads, 1)
	require.Len(t, syncer.payloads[0].Messages, 2)
	assert.Equal(t, "hello", syncer.payloads[0].Messages[0].Content)
}

func TestDispatchStepIsolation(t *testing.T) {
	// persistence fails; sync and state update must still run
	repo := &fakeMessageRepo{err: assert.AnError}
	syncer := &fakeSyncer{}
	states := newFakeStateStore()
	d := newTestDispatcher(repo, syncer, &fakeSummarySaver{}, states)

	d.Dispatch(context.Background(), testDispatchTurn("hello", nil))

	assert.Len(t, syncer.payloads, 1)
	state, found := states.Get("conv-1")
	require.True(t, found)
	assert.Equal(t, 1, state.TurnCount)
}

func TestDispatchSavesMissedClosingSummary(t *testing.T) {
	saver := &fakeSummarySaver{}
	d := newTestDispatcher(&fakeMessageRepo{}, &fakeSyncer{}, saver, newFakeStateStore())

	d.Dispatch(context.Background(), testDispatchTurn("thank you, that fixed it", nil))

	assert.Equal(t, 1, saver.calls)
}

func TestDispatchSavesSummaryWhenAssistantCloses(t *testing.T) {
	saver := &fakeSummarySaver{}
	d := newTestDispatcher(&fakeMessageRepo{}, &fakeSyncer{}, saver, newFakeStateStore())

	turn := testDispatchTurn("ok, how do I proceed next week?", nil)
	turn.Output = "Nothing more is needed on your side. Feel free to reach out again!"
	d.Dispatch(context.Background(), turn)

	assert.Equal(t, 1, saver.calls)
}

func TestDispatchSkipsSummaryWhenToolRan(t *testing.T) {
	saver := &fakeSummarySaver{}
	d := newTestDispatcher(&fakeMessageRepo{}, &fakeSyncer{}, saver, newFakeStateStore())

	d.Dispatch(context.Background(), testDispatchTurn("thank you, that fixed it",
		[]string{constant.ToolSaveSummary}))

	assert.Equal(t, 0, saver.calls)
}

func TestDispatchSkipsSummaryWhenAlreadySent(t *testing.T) {
	saver := &fakeSummarySaver{}
	states := newFakeStateStore()
	states.Save(&store.ConversationState{ConversationID: "conv-1", SummarySent: true})
	d := newTestDispatcher(&fakeMessageRepo{}, &fakeSyncer{}, saver, states)

	d.Dispatch(context.Background(), testDispatchTurn("thanks, bye", nil))

	assert.Equal(t, 0, saver.calls)
}

func TestDispatchUpdatesState(t *testing.T) {
	states := newFakeStateStore()
	d := newTestDispatcher(&fakeMessageRepo{}, &fakeSyncer{}, &fakeSummarySaver{}, states)

	d.Dispatch(context.Background(), testDispatchTurn("first question", nil))
	d.Dispatch(context.Background(), testDispatchTurn("second question", nil))

	state, found := states.Get("conv-1")
	require.True(t, found)
	assert.Equal(t, 2, state.TurnCount)
	assert.Equal(t, "second question", state.LastUserMsg)
}
