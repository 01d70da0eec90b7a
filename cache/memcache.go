package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// memcached 将超过 30 天的过期值视为 unix 时间戳
const memcacheRelativeLimit = 30 * 24 * time.Hour

// MemcacheAPI *memcache.Client 的方法子集
type MemcacheAPI interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
	FlushAll() error
}

// Memcache 委托给 memcached 的缓存
type Memcache struct {
	Client MemcacheAPI
	now    func() time.Time
}

func NewMemcache(servers ...string) *Memcache {
	return &Memcache{Client: memcache.New(servers...), now: time.Now}
}

func (m *Memcache) expiration(ttl time.Duration) int32 {
	switch {
	case ttl <= 0:
		return 0
	case ttl > memcacheRelativeLimit:
		return int32(m.now().Add(ttl).Unix())
	case ttl < time.Second:
		return 1
	}
	return int32(ttl / time.Second)
}

func (m *Memcache) Fetch(_ context.Context, key string) (Rows, bool, error) {
	item, err := m.Client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rows, _, err := decode(item.Value)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func (m *Memcache) Store(_ context.Context, key string, rows Rows, ttl time.Duration) error {
	data, err := encode(rows, 0)
	if err != nil {
		return err
	}
	return m.Client.Set(&memcache.Item{Key: key, Value: data, Expiration: m.expiration(ttl)})
}

func (m *Memcache) Clear(_ context.Context, key string) (bool, error) {
	err := m.Client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	return err == nil, err
}

func (m *Memcache) Flush(_ context.Context) error {
	return m.Client.FlushAll()
}
