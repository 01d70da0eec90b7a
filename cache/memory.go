package cache

import (
	"context"
	"maps"
	"sync"
	"time"
)

type memEntry struct {
	rows   Rows
	expire int64
}

// Memory 进程内缓存 读取时才检查过期
type Memory struct {
	mu    sync.Mutex
	items map[string]memEntry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Fetch(_ context.Context, key string) (Rows, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if expired(m.now(), e.expire) {
		delete(m.items, key)
		return nil, false, nil
	}
	return cloneRows(e.rows), true, nil
}

func (m *Memory) Store(_ context.Context, key string, rows Rows, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memEntry{rows: cloneRows(rows), expire: expireAt(m.now(), ttl)}
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	delete(m.items, key)
	return ok, nil
}

func (m *Memory) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]memEntry)
	return nil
}

// cloneRows 逐行复制 调用方修改结果不影响缓存
func cloneRows(rows Rows) Rows {
	if rows == nil {
		return nil
	}
	out := make(Rows, len(rows))
	for i, row := range rows {
		out[i] = maps.Clone(row)
	}
	return out
}
