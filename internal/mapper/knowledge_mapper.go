package mapper

import (
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(chunk *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if chunk == nil {
		return nil
	}

	return &entity.KnowledgeChunk{
		Id:             chunk.Id,
		FileId:         chunk.FileId,
		FileName:       chunk.FileName,
		Collection:     chunk.Collection,
		ChunkIndex:     chunk.ChunkIndex,
		Content:        chunk.Content,
		EmbeddingValue: chunk.EmbeddingValue.Slice(),
		Perm:           chunk.Perm,
		SuperPerm:      chunk.SuperPerm,
		AllPerm:        chunk.AllPerm,
		TenantId:       chunk.TenantId,
		CreatedAt:      chunk.CreatedAt,
	}
}

func (m *KnowledgeMapper) ToModel(chunk *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if chunk == nil {
		return nil
	}

	return &model.KnowledgeChunk{
		Id:             chunk.Id,
		FileId:         chunk.FileId,
		FileName:       chunk.FileName,
		Collection:     chunk.Collection,
		ChunkIndex:     chunk.ChunkIndex,
		Content:        chunk.Content,
		EmbeddingValue: pgvector.NewVector(chunk.EmbeddingValue),
		Perm:           chunk.Perm,
		SuperPerm:      chunk.SuperPerm,
		AllPerm:        chunk.AllPerm,
		TenantId:       chunk.TenantId,
		CreatedAt:      chunk.CreatedAt,
	}
}
