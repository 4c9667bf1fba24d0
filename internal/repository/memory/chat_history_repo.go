package memory

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/patrickmn/go-cache"
)

// ChatHistoryRepo хранит историю сессий в go-cache. Каждое обращение продлевает TTL.
// При maxTurns > 0 хранятся только последние maxTurns реплик.
type ChatHistoryRepo struct {
	mu       sync.Mutex
	cache    *cache.Cache
	ttl      time.Duration
	maxTurns int
}

func NewChatHistoryRepo(ttl time.Duration, maxTurns int) *ChatHistoryRepo {
	return &ChatHistoryRepo{
		cache:    cache.New(ttl, ttl/2+time.Second),
		ttl:      ttl,
		maxTurns: maxTurns,
	}
}

func (r *ChatHistoryRepo) Get(_ context.Context, sessionID string) ([]domain.ChatTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	turns := r.load(sessionID)
	if turns == nil {
		return nil, nil
	}
	r.cache.Set(sessionID, turns, r.ttl)

	out := make([]domain.ChatTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (r *ChatHistoryRepo) Append(_ context.Context, sessionID string, turns ...domain.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load(sessionID)
	next := make([]domain.ChatTurn, 0, len(current)+len(turns))
	next = append(next, current...)
	next = append(next, turns...)
	if r.maxTurns > 0 && len(next) > r.maxTurns {
		next = next[len(next)-r.maxTurns:]
	}
	r.cache.Set(sessionID, next, r.ttl)

	return nil
}

func (r *ChatHistoryRepo) Len() int {
	return r.cache.ItemCount()
}

func (r *ChatHistoryRepo) load(sessionID string) []domain.ChatTurn {
	v, ok := r.cache.Get(sessionID)
	if !ok {
		return nil
	}
	turns, _ := v.([]domain.ChatTurn)
	return turns
}
