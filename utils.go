package database

import (
	"errors"
	"reflect"

	"github.com/fexli/logger"
	"github.com/skadiD/swallow/driver"
)

// execErr 执行错误统一处理 无错误返回 true
func execErr(err error, table, action string, model ...any) bool {
	if err == nil {
		return true
	}
	// 连接错误在连接时已记录
	var ce *driver.ConnectionError
	if errors.As(err, &ce) {
		return false
	}
	if model != nil {
		dbLog.Debug(logger.WithContent(model))
	}
	dbLog.Warning(logger.WithContent("【"+table+"】<"+action+">错误"), logger.WithContent(GetFormatTrace(err, 5, true, false)), logger.WithBacktraceLevelDelta(2))
	return false
}

// IsZeroValue 判断值是否为零值 nil 指针视为零值
func IsZeroValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return rv.IsZero()
}
