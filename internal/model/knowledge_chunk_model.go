package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type KnowledgeChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FileId         string          `gorm:"type:varchar(128);index"`
	FileName       string          `gorm:"type:varchar(255)"`
	Collection     string          `gorm:"type:varchar(32);not null;default:'primary';index"`
	ChunkIndex     int             `gorm:"default:0"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 uses 768 dimensions
	Perm           string          `gorm:"type:varchar(8);default:'0';index"`
	SuperPerm      string          `gorm:"type:varchar(8);default:'0';index"`
	AllPerm        bool            `gorm:"default:false;index"`
	TenantId       string          `gorm:"type:varchar(64)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
