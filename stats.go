package database

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// QueryStat 单条语句的统计
type QueryStat struct {
	Query   string
	Time    time.Duration
	Rows    int64
	Changes int64
}

// Stats 统计快照
type Stats struct {
	TotalTime    time.Duration
	NumQueries   int64
	NumRows      int64
	NumChanges   int64
	AvgQueryTime time.Duration
	Queries      []QueryStat
	// Cached 命中缓存的 带前缀键 -> SQL
	Cached map[string]string
}

type statsRecorder struct {
	mu sync.Mutex
	s  Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{s: Stats{Cached: make(map[string]string)}}
}

func (r *statsRecorder) query(q QueryStat) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.TotalTime += q.Time
	r.s.NumQueries++
	r.s.NumRows += q.Rows
	r.s.NumChanges += q.Changes
	r.s.Queries = append(r.s.Queries, q)
}

func (r *statsRecorder) cached(key, query string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.Cached[key] = query
}

// Stats 当前统计 未开启时返回零值
func (db *DB) Stats() Stats {
	r := db.stats
	if r == nil {
		return Stats{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.s
	s.Queries = slices.Clone(r.s.Queries)
	s.Cached = maps.Clone(r.s.Cached)
	s.AvgQueryTime = s.TotalTime / time.Duration(max(s.NumQueries, 1))
	return s
}
