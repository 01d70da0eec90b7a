package database

import (
	"github.com/skadiD/swallow/cache"
)

// Option DB 配置项
type Option func(*DB)

// WithCache 指定缓存后端 默认为进程内缓存
func WithCache(b cache.Backend) Option {
	return func(db *DB) {
		if b != nil {
			db.cache = b
		}
	}
}

// WithKeyPrefix 所有缓存键的前缀
func WithKeyPrefix(prefix string) Option {
	return func(db *DB) {
		db.prefix = prefix
	}
}

// WithStats 开启执行统计
func WithStats(enabled bool) Option {
	return func(db *DB) {
		if enabled {
			db.stats = newStatsRecorder()
		} else {
			db.stats = nil
		}
	}
}

// WithShowSQL 错误信息中附带 SQL
func WithShowSQL(enabled bool) Option {
	return func(db *DB) {
		db.showSQL = enabled
	}
}
