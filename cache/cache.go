// Package cache 查询结果缓存 所有后端满足同一组四个操作
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/fexli/logger"
	"github.com/skadiD/swallow/driver"
)

var cacheLog = logger.GetLogger("cache", true)

// ErrUnsupportedCache 无法识别的缓存地址
var ErrUnsupportedCache = errors.New("cache: unsupported cache backend")

// Rows 缓存值 即一次查询的全部行
type Rows = []driver.Row

// Backend 缓存后端
//
// ttl 为 0 表示永不过期
type Backend interface {
	Fetch(ctx context.Context, key string) (Rows, bool, error)
	Store(ctx context.Context, key string, rows Rows, ttl time.Duration) error
	Clear(ctx context.Context, key string) (bool, error)
	Flush(ctx context.Context) error
}

// expireAt 计算绝对过期时间 0 表示永不过期
func expireAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixNano()
}

func expired(now time.Time, expire int64) bool {
	return expire != 0 && now.UnixNano() >= expire
}

// Namespace 为所有键加前缀后再交给后端
type Namespace struct {
	Backend Backend
	Prefix  string
}

// WithPrefix 包装后端 prefix 为空时原样返回
func WithPrefix(b Backend, prefix string) Backend {
	if prefix == "" {
		return b
	}
	return &Namespace{Backend: b, Prefix: prefix}
}

func (n *Namespace) Fetch(ctx context.Context, key string) (Rows, bool, error) {
	return n.Backend.Fetch(ctx, n.Prefix+key)
}

func (n *Namespace) Store(ctx context.Context, key string, rows Rows, ttl time.Duration) error {
	return n.Backend.Store(ctx, n.Prefix+key, rows, ttl)
}

func (n *Namespace) Clear(ctx context.Context, key string) (bool, error) {
	return n.Backend.Clear(ctx, n.Prefix+key)
}

func (n *Namespace) Flush(ctx context.Context) error {
	return n.Backend.Flush(ctx)
}
