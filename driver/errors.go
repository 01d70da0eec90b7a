package driver

import (
	"errors"
)

// ErrUnsupportedEngine 描述指定的引擎没有适配器
var ErrUnsupportedEngine = errors.New("undefined database engine")

// ConnectionError 连接失败 携带驱动原始错误
type ConnectionError struct {
	Kind string
	Err  error
}

func (e *ConnectionError) Error() string {
	return "Connection error: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError 执行失败 Verbose 时附带 SQL
type QueryError struct {
	Query   string
	Verbose bool
	Err     error
}

func (e *QueryError) Error() string {
	msg := "Database error: " + e.Err.Error()
	if e.Verbose {
		msg += "\nSQL: " + e.Query
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }
