package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAPI Redis 使用的命令子集 *redis.Client 与 *redis.ClusterClient 均满足
type RedisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	FlushDB(ctx context.Context) *redis.StatusCmd
}

// Redis 委托给 redis 的缓存 过期由服务端处理
type Redis struct {
	Client RedisAPI
}

func NewRedis(client RedisAPI) *Redis {
	return &Redis{Client: client}
}

func (r *Redis) Fetch(ctx context.Context, key string) (Rows, bool, error) {
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rows, _, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func (r *Redis) Store(ctx context.Context, key string, rows Rows, ttl time.Duration) error {
	data, err := encode(rows, 0)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Clear(ctx context.Context, key string) (bool, error) {
	n, err := r.Client.Del(ctx, key).Result()
	return n > 0, err
}

func (r *Redis) Flush(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}
