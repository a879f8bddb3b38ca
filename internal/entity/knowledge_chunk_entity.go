package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is a retrievable slice of an ingested document. Perm,
// SuperPerm and AllPerm mirror the access tags written at ingestion time;
// "0" / false mean the tag is absent.
type KnowledgeChunk struct {
	Id             uuid.UUID
	FileId         string
	FileName       string
	Collection     string // "primary" | "ground_truth"
	ChunkIndex     int
	Content        string
	EmbeddingValue []float32
	Perm           string
	SuperPerm      string
	AllPerm        bool
	TenantId       string
	CreatedAt      time.Time
}

// ScoredKnowledgeChunk pairs a chunk with its cosine similarity to a query.
type ScoredKnowledgeChunk struct {
	Chunk      *KnowledgeChunk
	Similarity float64
}
