package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationMessage struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId string         `gorm:"type:varchar(128);not null;index:idx_conversation_created"`
	TenantId       string         `gorm:"type:varchar(64);index"`
	UserId         string         `gorm:"type:varchar(128)"`
	SenderType     string         `gorm:"type:varchar(16);not null"`
	Content        string         `gorm:"type:text"`
	ToolCalls      datatypes.JSON `gorm:"type:jsonb"` // ordered tool names invoked during the turn
	TotalTokens    int            `gorm:"default:0"`
	CreatedAt      time.Time      `gorm:"index:idx_conversation_created"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}
