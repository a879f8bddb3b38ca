package contract

import (
	"context"

	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationMessageRepository interface {
	Create(ctx context.Context, message *entity.ConversationMessage) error
	CreateBulk(ctx context.Context, messages []*entity.ConversationMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindRecentByConversation returns the newest `limit` messages for the
	// conversation in chronological order.
	FindRecentByConversation(ctx context.Context, conversationId string, limit int) ([]*entity.ConversationMessage, error)
}
