package knowledge

import (
	"context"
	"testing"

	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/specification"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingProvider struct {
	taskType string
	err      error
}

func (p *fakeEmbeddingProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	p.taskType = taskType
	if p.err != nil {
		return nil, p.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingValues{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeChunkRepo struct {
	scored     []*entity.ScoredKnowledgeChunk
	collection string
	filter     access.Filter
	limit      int
}

func (r *fakeChunkRepo) Create(ctx context.Context, chunk *entity.KnowledgeChunk) error { return nil }

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	return nil
}

func (r *fakeChunkRepo) DeleteByFileId(ctx context.Context, fileId string) error { return nil }

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *fakeChunkRepo) SearchSimilar(ctx context.Context, collection string, emb []float32, filter access.Filter, limit int) ([]*entity.ScoredKnowledgeChunk, error) {
	r.collection = collection
	r.filter = filter
	r.limit = limit
	return r.scored, nil
}

func TestSearchAppliesFilterAndCollection(t *testing.T) {
	provider := &fakeEmbeddingProvider{}
	repo := &fakeChunkRepo{scored: []*entity.ScoredKnowledgeChunk{
		{Chunk: &entity.KnowledgeChunk{Content: "chunk one", FileName: "guide.md"}, Similarity: 0.93},
		{Chunk: &entity.KnowledgeChunk{Content: "chunk two", FileName: "faq.md"}, Similarity: 0.81},
	}}
	gateway := NewGateway(provider, repo, logger.NewNoopLogger())

	filter := access.Filter{Key: access.FilterKeyPerm, Value: "2"}
	chunks, err := gateway.Search(context.Background(), "printer offline", filter, 5)

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "chunk one", chunks[0].Content)
	assert.Equal(t, 0.93, chunks[0].Similarity)
	assert.Equal(t, constant.CollectionPrimary, repo.collection)
	assert.Equal(t, filter, repo.filter)
	assert.Equal(t, embedding.TaskRetrievalQuery, provider.taskType)
}

func TestSearchGroundTruthIsUnrestricted(t *testing.T) {
	repo := &fakeChunkRepo{}
	gateway := NewGateway(&fakeEmbeddingProvider{}, repo, logger.NewNoopLogger())

	_, err := gateway.SearchGroundTruth(context.Background(), "vpn setup", 3)

	require.NoError(t, err)
	assert.Equal(t, constant.CollectionGroundTruth, repo.collection)
	assert.True(t, repo.filter.IsUnrestricted())
	assert.Equal(t, 3, repo.limit)
}

func TestSearchClampsLimit(t *testing.T) {
	repo := &fakeChunkRepo{}
	gateway := NewGateway(&fakeEmbeddingProvider{}, repo, logger.NewNoopLogger())

	_, err := gateway.Search(context.Background(), "q", access.Filter{}, 50)

	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, repo.limit)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	gateway := NewGateway(&fakeEmbeddingProvider{err: assert.AnError}, &fakeChunkRepo{}, logger.NewNoopLogger())

	_, err := gateway.Search(context.Background(), "q", access.Filter{}, 5)

	assert.Error(t, err)
}

func TestGroundingContext(t *testing.T) {
	assert.Equal(t, "", GroundingContext(nil))

	ctx := GroundingContext([]Chunk{{Content: "a"}, {Content: "b"}})
	assert.Equal(t, "a\n\nb", ctx)
}
