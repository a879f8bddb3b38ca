package service

import (
	"context"
	"encoding/json"
	"log"

	"cs-agent-be/internal/dto"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/agent"
	"cs-agent-be/pkg/async"
	"cs-agent-be/pkg/dispatch"
	"cs-agent-be/pkg/eval"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the pipeline topic: every finished turn gets its
// side effects dispatched and its evaluations recorded, strictly off the
// request path.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	resolver   *access.Resolver
	dispatcher *dispatch.Dispatcher
	evaluator  *eval.Trigger
	tasks      *async.Runner
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	resolver *access.Resolver,
	dispatcher *dispatch.Dispatcher,
	evaluator *eval.Trigger,
	tasks *async.Runner,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		resolver:   resolver,
		dispatcher: dispatcher,
		evaluator:  evaluator,
		tasks:      tasks,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishTurnMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing turn pipeline for conversation %s", payload.ConversationId)

	scope := cs.resolver.Resolve(payload.UserRole)
	turn := &dispatch.Turn{
		Context: agent.TurnContext{
			ConversationID: payload.ConversationId,
			SessionID:      payload.SessionId,
			UserID:         payload.UserId,
			TenantID:       payload.TenantId,
			UserName:       payload.UserName,
			UserEmail:      payload.UserEmail,
			UserRole:       payload.UserRole,
			AccessToken:    payload.AccessToken,
			Scope:          scope,
			Filter:         access.BuildFilter(scope),
			Message:        payload.Message,
		},
		Output:           payload.Output,
		TotalTokens:      payload.TotalTokens,
		ToolCallsInvoked: payload.ToolCalls,
		StartedAt:        payload.StartedAt,
		CompletedAt:      payload.CompletedAt,
	}

	cs.dispatcher.Dispatch(ctx, turn)

	// LLM-judged evals can take seconds; keep them off the pipeline loop.
	sample := eval.TurnSample{
		ConversationID:   payload.ConversationId,
		UserID:           payload.UserId,
		UserMessage:      payload.Message,
		Output:           agent.StripTokenTrailer(payload.Output),
		LatencyMs:        payload.CompletedAt.Sub(payload.StartedAt).Milliseconds(),
		TotalTokens:      payload.TotalTokens,
		ToolCallsInvoked: payload.ToolCalls,
	}
	cs.tasks.Go("evaluate_turn", func(taskCtx context.Context) error {
		cs.evaluator.EvaluateTurn(taskCtx, sample)
		return nil
	})

	msg.Ack()
}
