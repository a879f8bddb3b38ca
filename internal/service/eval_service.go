package service

import (
	"context"

	"cs-agent-be/internal/dto"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/contract"
	"cs-agent-be/internal/repository/specification"
	"cs-agent-be/pkg/eval"

	"github.com/google/uuid"
)

// IEvalService exposes the on-demand retrospective session review.
type IEvalService interface {
	EvaluateSession(ctx context.Context, req *dto.SessionEvalRequest) (*dto.SessionEvalResponse, error)
	GetSessionRun(ctx context.Context, runId uuid.UUID) (*dto.SessionEvalResultResponse, error)
}

type evalService struct {
	scheduler *eval.Scheduler
	evalRepo  contract.EvalRunRepository
	log       logger.ILogger
}

func NewEvalService(scheduler *eval.Scheduler, evalRepo contract.EvalRunRepository, log logger.ILogger) IEvalService {
	return &evalService{
		scheduler: scheduler,
		evalRepo:  evalRepo,
		log:       log,
	}
}

// EvaluateSession queues the session review and returns the run id right
// away. Judging a whole transcript takes seconds; the result lands in the
// eval_runs table under this id.
func (es *evalService) EvaluateSession(ctx context.Context, req *dto.SessionEvalRequest) (*dto.SessionEvalResponse, error) {
	runId := uuid.New()
	es.scheduler.ScheduleSession(runId, req.SessionId, req.UserId)

	es.log.Info("eval", "session evaluation scheduled", map[string]interface{}{
		"run_id":     runId.String(),
		"session_id": req.SessionId,
	})

	return &dto.SessionEvalResponse{
		RunId:          runId.String(),
		ConversationId: req.SessionId,
		Kind:           entity.EvalKindSession,
		Status:         "scheduled",
	}, nil
}

// GetSessionRun looks up a previously scheduled review by its run id. A run
// the judge has not finished yet reports status "pending".
func (es *evalService) GetSessionRun(ctx context.Context, runId uuid.UUID) (*dto.SessionEvalResultResponse, error) {
	runs, err := es.evalRepo.FindAll(ctx,
		specification.ByID{ID: runId},
		specification.ByEvalKind{Kind: entity.EvalKindSession},
	)
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		return &dto.SessionEvalResultResponse{
			RunId:  runId.String(),
			Kind:   entity.EvalKindSession,
			Status: "pending",
		}, nil
	}

	run := runs[0]
	reasoning, _ := run.Payload["reasoning"].(string)

	return &dto.SessionEvalResultResponse{
		RunId:          run.Id.String(),
		ConversationId: run.ConversationId,
		Kind:           run.Kind,
		Status:         "completed",
		Score:          run.Score,
		Passed:         run.Passed,
		Reasoning:      reasoning,
	}, nil
}
