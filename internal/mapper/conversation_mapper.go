package mapper

import (
	"encoding/json"
	"time"

	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(msg *model.ConversationMessage) *entity.ConversationMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	var toolCalls []string
	if len(msg.ToolCalls) > 0 {
		// Corrupt JSON leaves toolCalls nil; the log row is still usable.
		_ = json.Unmarshal(msg.ToolCalls, &toolCalls)
	}

	return &entity.ConversationMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		TenantId:       msg.TenantId,
		UserId:         msg.UserId,
		SenderType:     msg.SenderType,
		Content:        msg.Content,
		ToolCalls:      toolCalls,
		TotalTokens:    msg.TotalTokens,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *ConversationMapper) ToModel(msg *entity.ConversationMessage) *model.ConversationMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	var toolCalls datatypes.JSON
	if len(msg.ToolCalls) > 0 {
		if data, err := json.Marshal(msg.ToolCalls); err == nil {
			toolCalls = data
		}
	}

	return &model.ConversationMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		TenantId:       msg.TenantId,
		UserId:         msg.UserId,
		SenderType:     msg.SenderType,
		Content:        msg.Content,
		ToolCalls:      toolCalls,
		TotalTokens:    msg.TotalTokens,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}
