package mapper

import (
	"encoding/json"

	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/model"

	"gorm.io/datatypes"
)

type EvalMapper struct{}

func NewEvalMapper() *EvalMapper {
	return &EvalMapper{}
}

func (m *EvalMapper) ToEntity(run *model.EvalRun) *entity.EvalRun {
	if run == nil {
		return nil
	}

	var payload map[string]interface{}
	if len(run.Payload) > 0 {
		_ = json.Unmarshal(run.Payload, &payload)
	}

	return &entity.EvalRun{
		Id:             run.Id,
		Kind:           run.Kind,
		ConversationId: run.ConversationId,
		UserId:         run.UserId,
		Input:          run.Input,
		Output:         run.Output,
		Score:          run.Score,
		Passed:         run.Passed,
		Payload:        payload,
		CreatedAt:      run.CreatedAt,
	}
}

func (m *EvalMapper) ToModel(run *entity.EvalRun) *model.EvalRun {
	if run == nil {
		return nil
	}

	var payload datatypes.JSON
	if len(run.Payload) > 0 {
		if data, err := json.Marshal(run.Payload); err == nil {
			payload = data
		}
	}

	return &model.EvalRun{
		Id:             run.Id,
		Kind:           run.Kind,
		ConversationId: run.ConversationId,
		UserId:         run.UserId,
		Input:          run.Input,
		Output:         run.Output,
		Score:          run.Score,
		Passed:         run.Passed,
		Payload:        payload,
		CreatedAt:      run.CreatedAt,
	}
}
