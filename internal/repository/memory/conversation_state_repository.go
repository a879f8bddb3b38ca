package memory

import (
	"time"

	"cs-agent-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type ConversationStateRepository struct {
	cache *cache.Cache
}

func NewConversationStateRepository() *ConversationStateRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes. Matches
	// the backend's conversation idle window.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationStateRepository{
		cache: c,
	}
}

func (r *ConversationStateRepository) Save(state *store.ConversationState) {
	r.cache.Set(state.ConversationID, state, cache.DefaultExpiration)
}

func (r *ConversationStateRepository) Get(conversationID string) (*store.ConversationState, bool) {
	if x, found := r.cache.Get(conversationID); found {
		return x.(*store.ConversationState), true
	}
	return nil, false
}

func (r *ConversationStateRepository) Delete(conversationID string) {
	r.cache.Delete(conversationID)
}
