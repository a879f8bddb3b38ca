package entity

import (
	"time"

	"github.com/google/uuid"
)

// Eval run kinds. Append-only records; one row per scheduled check.
const (
	EvalKindPerformance = "performance"
	EvalKindReliability = "reliability"
	EvalKindAccuracy    = "accuracy"
	EvalKindSession     = "session"
)

// EvalRun is one background evaluation record.
type EvalRun struct {
	Id             uuid.UUID
	Kind           string
	ConversationId string
	UserId         string
	Input          string
	Output         string
	Score          float64
	Passed         bool
	Payload        map[string]interface{}
	CreatedAt      time.Time
}
