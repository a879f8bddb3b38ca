package eval

import (
	"context"

	"cs-agent-be/pkg/async"

	"github.com/google/uuid"
)

// Scheduler queues evaluation work onto the background task runner so no
// caller ever waits on a judge.
type Scheduler struct {
	trigger *Trigger
	tasks   *async.Runner
}

func NewScheduler(trigger *Trigger, tasks *async.Runner) *Scheduler {
	return &Scheduler{
		trigger: trigger,
		tasks:   tasks,
	}
}

// ScheduleValidation runs a ground-truth accuracy check in the background.
func (s *Scheduler) ScheduleValidation(conversationId, userId, query, answer string) {
	s.tasks.Go("validate_answer", func(ctx context.Context) error {
		s.trigger.ValidateAnswer(ctx, conversationId, userId, query, answer)
		return nil
	})
}

// ScheduleSession runs the full-session retrospective in the background. The
// run id is fixed up front so it can be returned to the caller immediately.
func (s *Scheduler) ScheduleSession(runId uuid.UUID, conversationId, userId string) {
	s.tasks.Go("evaluate_session", func(ctx context.Context) error {
		_, err := s.trigger.EvaluateSession(ctx, runId, conversationId, userId)
		return err
	})
}
