package unitofwork

import (
	"context"

	"cs-agent-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationMessageRepository() contract.ConversationMessageRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
	EvalRunRepository() contract.EvalRunRepository
}
