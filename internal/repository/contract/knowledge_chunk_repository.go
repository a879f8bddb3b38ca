package contract

import (
	"context"

	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/repository/specification"
	"cs-agent-be/pkg/access"
)

type KnowledgeChunkRepository interface {
	Create(ctx context.Context, chunk *entity.KnowledgeChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	DeleteByFileId(ctx context.Context, fileId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilar runs a cosine similarity search over one collection,
	// constrained by the access filter. An unrestricted filter matches every
	// chunk; a keyed filter matches only chunks carrying that exact tag.
	SearchSimilar(ctx context.Context, collection string, embedding []float32, filter access.Filter, limit int) ([]*entity.ScoredKnowledgeChunk, error)
}
