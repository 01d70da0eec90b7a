package orm

import (
	"errors"
)

var (
	// ErrNoTableDefined 元数据未声明表名
	ErrNoTableDefined = errors.New("table is not defined")
	// ErrNoClassDefined 类型未实现 Entity
	ErrNoClassDefined = errors.New("class is not defined")
	// ErrNoIDField 未声明主键或主键字段不存在
	ErrNoIDField = errors.New("id field is not defined")
	// ErrNoNameField 按名称查找但未声明名称字段
	ErrNoNameField = errors.New("name field is not defined")
)

// EntityError 实体元数据不完整
type EntityError struct {
	Type string
	Err  error
}

func (e *EntityError) Error() string {
	return "orm: " + e.Type + ": " + e.Err.Error()
}

func (e *EntityError) Unwrap() error { return e.Err }
