package orm

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/fexli/logger"
	"github.com/skadiD/swallow"
)

// insert 插入除主键外的所有字段 并回填自增 id
func (m *Mapper) insert(ctx context.Context, s *tableSchema, v reflect.Value) (database.ExecResult, error) {
	data := database.Map{}
	for _, f := range s.Fields {
		if f == s.ID || f.AutoIncr {
			continue
		}
		data = data.Set(f.ColumnName, v.FieldByIndex(f.Index).Interface())
	}
	res, err := m.db.Table(s.Meta.Table).Insert(data).Exec(ctx)
	if err != nil {
		return res, err
	}
	if s.ID != nil && res.InsertID >= 0 {
		if err = setID(v.FieldByIndex(s.ID.Index), res.InsertID); err != nil {
			ormLog.Warning(logger.WithContent("回填主键失败：", s.GoType.String(), err))
		}
	}
	return res, nil
}

// setID 支持整数 指针与 sql.Scanner
func setID(field reflect.Value, id int64) error {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setID(field.Elem(), id)
	}
	if sc, ok := field.Addr().Interface().(sql.Scanner); ok {
		return sc.Scan(id)
	}
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field.SetInt(id)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		field.SetUint(uint64(id))
	default:
		return assign(field, id)
	}
	return nil
}
