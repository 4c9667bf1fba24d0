package clients

import (
	"context"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/cfg"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/jitter"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	pingAttempts  = 3
	pingBaseDelay = 200 * time.Millisecond
	pingMaxDelay  = 2 * time.Second
)

type RedisClient struct {
	Client *r.Client
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	client := r.NewClient(&r.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	return &RedisClient{
		Client: client,
	}
}

// Ping проверяет соединение, повторяя попытку с задержкой: при старте в compose Redis
// может подняться позже приложения.
func (c *RedisClient) Ping(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < pingAttempts; attempt++ {
		if err = c.Client.Ping(ctx).Err(); err == nil {
			return nil
		}
		if attempt == pingAttempts-1 {
			break
		}

		select {
		case <-time.After(jitter.ExponentialBackoff(pingBaseDelay, pingMaxDelay, attempt, jitter.DefaultJitter)):
		case <-ctx.Done():
			return e.Wrap(whereami.WhereAmI(), ctx.Err())
		}
	}

	return e.Wrap(whereami.WhereAmI(), err)
}

func (c *RedisClient) Close(_ context.Context) error {
	return c.Client.Close()
}
