package database

import (
	"errors"

	"github.com/skadiD/swallow/driver"
)

var (
	// ErrInvalidPredicate 条件既不是字符串也不是映射
	ErrInvalidPredicate = errors.New("database: invalid where condition")
	// ErrInvalidJoinType 连接类型不在 INNER / LEFT OUTER / RIGHT OUTER / FULL OUTER 之内
	ErrInvalidJoinType = errors.New("database: invalid join type")
	// ErrNoTable 未指定表
	ErrNoTable = errors.New("database: table is not defined")
	// ErrNoDatabase 未绑定数据库连接
	ErrNoDatabase = errors.New("database: database is not defined")
	// ErrNoStatement 执行时没有已渲染的语句
	ErrNoStatement = errors.New("database: no statement to execute")
	// ErrInvalidData 写入数据既不是映射也不是字符串
	ErrInvalidData = errors.New("database: invalid data")
)

// 驱动层错误 便于调用方只依赖本包
var ErrUnsupportedEngine = driver.ErrUnsupportedEngine

type (
	ConnectionError = driver.ConnectionError
	QueryError      = driver.QueryError
)
