package types

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// PublicId JSON 中以字符串输出 避免前端精度丢失
type PublicId int64

func (p *PublicId) Scan(data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case int64:
		*p = PublicId(v)
	case []byte:
		return p.parse(string(v))
	case string:
		return p.parse(v)
	default:
		return fmt.Errorf("types: cannot scan %T into PublicId", data)
	}
	return nil
}

func (p *PublicId) parse(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*p = PublicId(n)
	return nil
}

func (p PublicId) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p PublicId) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatInt(int64(p), 10) + `"`), nil
}

func (p *PublicId) UnmarshalJSON(b []byte) error {
	temp := strings.Trim(string(b), `"`)
	pp, _ := strconv.ParseInt(temp, 10, 64)
	*p = PublicId(pp)
	return nil
}
