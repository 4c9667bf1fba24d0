package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/cartify-backend/pkg/clients"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/jimlawless/whereami"
)

// ChatHistoryRepo хранит историю сессии списком JSON-реплик под ключом chat:<session_id>.
// Каждое чтение и запись продлевает TTL ключа. При maxTurns > 0 список обрезается
// до последних maxTurns реплик.
type ChatHistoryRepo struct {
	client   *clients.RedisClient
	conv     converter.ChatTurnConverter
	ttl      time.Duration
	maxTurns int
	logger   logger.Logger
}

func NewChatHistoryRepo(client *clients.RedisClient, conv converter.ChatTurnConverter,
	ttl time.Duration, maxTurns int, logger logger.Logger) *ChatHistoryRepo {
	return &ChatHistoryRepo{
		client:   client,
		conv:     conv,
		ttl:      ttl,
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// Get возвращает историю сессии. Повреждённые элементы пропускаются с предупреждением.
func (r *ChatHistoryRepo) Get(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	key := sessionKey(sessionID)

	pipeline := r.client.Client.TxPipeline()
	rangeCmd := pipeline.LRange(ctx, key, 0, -1)
	pipeline.Expire(ctx, key, r.ttl)
	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	values := rangeCmd.Val()
	models := make([]converter.ChatTurnRedisModel, 0, len(values))
	for _, raw := range values {
		var model converter.ChatTurnRedisModel
		if err := json.Unmarshal([]byte(raw), &model); err != nil {
			r.logger.Warnf("Redis unmarshal failed (key: %s): %v", key, e.Wrap(whereami.WhereAmI(), err))
			continue
		}
		models = append(models, model)
	}

	return r.conv.ToArrDomain(models), nil
}

// Append дописывает реплики в конец истории одной транзакцией.
func (r *ChatHistoryRepo) Append(ctx context.Context, sessionID string, turns ...domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	key := sessionKey(sessionID)

	values := make([]any, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(r.conv.ToRedisModel(turn))
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		values = append(values, data)
	}

	pipeline := r.client.Client.TxPipeline()
	pipeline.RPush(ctx, key, values...)
	if r.maxTurns > 0 {
		pipeline.LTrim(ctx, key, int64(-r.maxTurns), -1)
	}
	pipeline.Expire(ctx, key, r.ttl)
	if _, err := pipeline.Exec(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// sessionKey возвращает Redis-ключ истории одной сессии
func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:%s", sessionID)
}
