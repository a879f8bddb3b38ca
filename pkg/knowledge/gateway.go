package knowledge

import (
	"context"
	"strings"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/contract"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/embedding"
)

// DefaultLimit caps every similarity search.
const DefaultLimit = 5

// Chunk is a normalized retrieval result handed to the agent.
type Chunk struct {
	Content    string
	FileName   string
	Similarity float64
}

// Gateway embeds the query and runs a permission-filtered similarity search.
// An empty result set is a valid outcome, not an error; transient store
// failures are terminal for the one exchange (no retries).
type Gateway struct {
	embeddingProvider embedding.EmbeddingProvider
	chunkRepo         contract.KnowledgeChunkRepository
	log               logger.ILogger
}

func NewGateway(
	embeddingProvider embedding.EmbeddingProvider,
	chunkRepo contract.KnowledgeChunkRepository,
	log logger.ILogger,
) *Gateway {
	return &Gateway{
		embeddingProvider: embeddingProvider,
		chunkRepo:         chunkRepo,
		log:               log,
	}
}

// Search queries the primary collection under the caller's access filter.
func (g *Gateway) Search(ctx context.Context, query string, filter access.Filter, limit int) ([]Chunk, error) {
	return g.search(ctx, constant.CollectionPrimary, query, filter, limit)
}

// SearchGroundTruth queries the ground-truth collection without any access
// restriction. Used by the accuracy judge, never by the reply path.
func (g *Gateway) SearchGroundTruth(ctx context.Context, query string, limit int) ([]Chunk, error) {
	return g.search(ctx, constant.CollectionGroundTruth, query, access.Filter{}, limit)
}

func (g *Gateway) search(ctx context.Context, collection, query string, filter access.Filter, limit int) ([]Chunk, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	res, err := g.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	scored, err := g.chunkRepo.SearchSimilar(ctx, collection, res.Embedding.Values, filter, limit)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(scored))
	for _, s := range scored {
		chunks = append(chunks, Chunk{
			Content:    s.Chunk.Content,
			FileName:   s.Chunk.FileName,
			Similarity: s.Similarity,
		})
	}

	g.log.Debug("knowledge", "similarity search completed", map[string]interface{}{
		"collection": collection,
		"filter_key": filter.Key,
		"results":    len(chunks),
	})

	return chunks, nil
}

// GroundingContext concatenates chunk contents in ranking order. Empty input
// yields the empty string; the caller decides how to phrase "nothing found".
func GroundingContext(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n")
}
