package implementation

import (
	"context"

	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/mapper"
	"cs-agent-be/internal/model"
	"cs-agent-be/internal/repository/contract"
	"cs-agent-be/internal/repository/specification"

	"gorm.io/gorm"
)

type EvalRunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EvalMapper
}

func NewEvalRunRepository(db *gorm.DB) contract.EvalRunRepository {
	return &EvalRunRepositoryImpl{
		db:     db,
		mapper: mapper.NewEvalMapper(),
	}
}

func (r *EvalRunRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EvalRunRepositoryImpl) Create(ctx context.Context, run *entity.EvalRun) error {
	m := r.mapper.ToModel(run)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.ToEntity(m)
	return nil
}

func (r *EvalRunRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EvalRun, error) {
	var models []*model.EvalRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.EvalRun, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *EvalRunRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.EvalRun{}).Count(&count).Error
	return count, err
}
