package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/repository/specification"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct{}

func (e *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingValues{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeChunkRepo struct {
	created []*entity.KnowledgeChunk
	deleted []string
}

func (r *fakeChunkRepo) Create(ctx context.Context, chunk *entity.KnowledgeChunk) error {
	r.created = append(r.created, chunk)
	return nil
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	r.created = append(r.created, chunks...)
	return nil
}

func (r *fakeChunkRepo) DeleteByFileId(ctx context.Context, fileId string) error {
	r.deleted = append(r.deleted, fileId)
	return nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeChunk, error) {
	return r.created, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.created)), nil
}

func (r *fakeChunkRepo) SearchSimilar(ctx context.Context, collection string, emb []float32, filter access.Filter, limit int) ([]*entity.ScoredKnowledgeChunk, error) {
	var out []*entity.ScoredKnowledgeChunk
	for _, c := range r.created {
		if c.Collection != collection {
			continue
		}
		if filter.Key == access.FilterKeyAll && !c.AllPerm {
			continue
		}
		if filter.Key == access.FilterKeyPerm && c.Perm != filter.Value {
			continue
		}
		out = append(out, &entity.ScoredKnowledgeChunk{Chunk: c, Similarity: 0.9})
	}
	return out, nil
}

func seedTestFile(t *testing.T, entry manifestEntry, content string) *fakeChunkRepo {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, entry.File), []byte(content), 0o644))

	repo := &fakeChunkRepo{}
	err := seedFile(context.Background(), dir, entry, access.NewResolver(), &fakeEmbedder{}, repo)
	require.NoError(t, err)
	return repo
}

func TestSeedFileTagsPermissions(t *testing.T) {
	repo := seedTestFile(t, manifestEntry{
		File:       "router-guide.md",
		Collection: "primary",
		Role:       "TECHNICIAN",
		TenantId:   "Thanos",
	}, "Hold the reset button for 10 seconds.")

	require.Len(t, repo.created, 1)
	chunk := repo.created[0]
	assert.Equal(t, "3", chunk.Perm)
	assert.Equal(t, "0", chunk.SuperPerm)
	assert.True(t, chunk.AllPerm)
	assert.Equal(t, []string{"router-guide.md"}, repo.deleted)
}

func TestSeededChunksVisibleToAllAccessTier(t *testing.T) {
	// A technician-scoped document must still match the broadest filter.
	repo := seedTestFile(t, manifestEntry{
		File:       "tech-only.md",
		Collection: "primary",
		Role:       "TECHNICIAN",
		TenantId:   "Thanos",
	}, "Technician-only maintenance steps.")

	adminFilter := access.BuildFilter(access.NewResolver().Resolve("ADMIN"))
	found, err := repo.SearchSimilar(context.Background(), "primary", nil, adminFilter, 5)

	require.NoError(t, err)
	assert.Len(t, found, 1)
}
