package contract

import (
	"context"

	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/repository/specification"
)

type EvalRunRepository interface {
	Create(ctx context.Context, run *entity.EvalRun) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EvalRun, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
