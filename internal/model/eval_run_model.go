package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EvalRun struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind           string         `gorm:"type:varchar(32);not null;index"`
	ConversationId string         `gorm:"type:varchar(128);index"`
	UserId         string         `gorm:"type:varchar(128)"`
	Input          string         `gorm:"type:text"`
	Output         string         `gorm:"type:text"`
	Score          float64        `gorm:"default:0"`
	Passed         bool           `gorm:"default:false"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (EvalRun) TableName() string {
	return "eval_runs"
}
