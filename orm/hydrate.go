package orm

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/skadiD/swallow"
)

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// hydrate 将一行写入结构体 未知列忽略
func hydrate(s *tableSchema, dst reflect.Value, row database.Row) error {
	for col, v := range row {
		f := s.lookup(col)
		if f == nil {
			continue
		}
		if err := assign(dst.FieldByIndex(f.Index), v); err != nil {
			return fmt.Errorf("orm: column %s: %w", col, err)
		}
	}
	return nil
}

// assign 按目标类型转换驱动值
func assign(field reflect.Value, v any) error {
	if reflect.PointerTo(field.Type()).Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(v)
	}
	if v == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(field.Type()) {
		field.Set(src)
		return nil
	}

	text, isText := asText(v)
	switch field.Kind() {
	case reflect.String:
		if isText {
			field.SetString(text)
			return nil
		}
		field.SetString(fmt.Sprint(v))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isText {
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isText {
			n, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return err
			}
			field.SetUint(n)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if isText {
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return err
			}
			field.SetFloat(n)
			return nil
		}
	case reflect.Bool:
		if isText {
			b, err := strconv.ParseBool(text)
			if err != nil {
				return err
			}
			field.SetBool(b)
			return nil
		}
		if n, err := database.ToInt64(v); err == nil {
			field.SetBool(n != 0)
			return nil
		}
	case reflect.Struct:
		if field.Type() == timeType && isText {
			t, err := parseTime(text)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(t))
			return nil
		}
	}

	if src.Type().ConvertibleTo(field.Type()) {
		field.Set(src.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, field.Type())
}

func asText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{database.TimeLayout, time.RFC3339Nano, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as time", s)
}
