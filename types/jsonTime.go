package types

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype/zeronull"
)

// TimeLayout 与 SQL 字面量一致
const TimeLayout = "2006-01-02 15:04:05"

var layouts = []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", time.DateOnly}

type JsonTime time.Time

// ANY 生成器中 jsonb 的占位类型
type ANY struct{}

// parseTime 文本协议下时间以字符串返回
func parseTime(src any) (time.Time, bool, error) {
	var s string
	switch v := src.(type) {
	case time.Time:
		return v, true, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return time.Time{}, false, nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, true, fmt.Errorf("types: cannot parse %q as time", s)
}

func (j JsonTime) MarshalJSON() ([]byte, error) {
	return []byte(time.Time(j).Format(`"` + TimeLayout + `"`)), nil
}

func (j *JsonTime) UnmarshalJSON(b []byte) error {
	t, err := time.ParseInLocation(`"`+TimeLayout+`"`, string(b), time.Local)
	if err != nil {
		return err
	}
	*j = JsonTime(t)
	return nil
}

func (j *JsonTime) Scan(data any) error {
	if data == nil {
		return nil
	}
	t, ok, err := parseTime(data)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("types: cannot scan %T into JsonTime", data)
	}
	*j = JsonTime(t)
	return nil
}

func (j JsonTime) Value() (driver.Value, error) {
	return j.ToTime(), nil
}

func (j JsonTime) ToTime() time.Time {
	return time.Time(j)
}

// ZeroNullJsonTime 零值读写为 NULL
type ZeroNullJsonTime zeronull.Timestamptz

func (j ZeroNullJsonTime) MarshalJSON() ([]byte, error) {
	t := time.Time(j)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(t.Format(`"` + TimeLayout + `"`)), nil
}

func (j *ZeroNullJsonTime) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*j = ZeroNullJsonTime{}
		return nil
	}
	t, err := time.ParseInLocation(`"`+TimeLayout+`"`, string(b), time.Local)
	if err != nil {
		return err
	}
	*j = ZeroNullJsonTime(t)
	return nil
}

func (j *ZeroNullJsonTime) Scan(data any) error {
	if data == nil {
		*j = ZeroNullJsonTime{}
		return nil
	}
	t, ok, err := parseTime(data)
	if err != nil {
		return err
	}
	if ok {
		*j = ZeroNullJsonTime(t)
		return nil
	}
	return (*zeronull.Timestamptz)(j).Scan(data)
}

func (j ZeroNullJsonTime) Value() (driver.Value, error) {
	return zeronull.Timestamptz(j).Value()
}

func (j ZeroNullJsonTime) ToTime() time.Time {
	return time.Time(j)
}
