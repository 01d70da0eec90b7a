package orm

import (
	"reflect"

	"github.com/fexli/logger"
	"github.com/skadiD/swallow"
)

var ormLog = logger.GetLogger("orm", true)

// Mapper 实体与行之间的映射 持有数据库与元数据缓存
type Mapper struct {
	db   *database.DB
	meta *MetadataCache
}

// NewMapper 未传入缓存时新建一个
func NewMapper(db *database.DB, cache ...*MetadataCache) *Mapper {
	m := &Mapper{db: db}
	if len(cache) > 0 && cache[0] != nil {
		m.meta = cache[0]
	} else {
		m.meta = NewMetadataCache()
	}
	return m
}

// DB 底层数据库
func (m *Mapper) DB() *database.DB { return m.db }

// Metadata 实体元数据 未实现 Entity 时为空值
func (m *Mapper) Metadata(obj any) Metadata {
	return m.meta.Metadata(obj)
}

// Load 按列名复制到实体 obj 必须为结构体指针
func (m *Mapper) Load(obj any, row database.Row) error {
	s, v, err := m.target(obj)
	if err != nil {
		return err
	}
	return hydrate(s, v, row)
}

// target 解析元数据并取得可寻址的结构体值
func (m *Mapper) target(obj any) (*tableSchema, reflect.Value, error) {
	s, err := m.meta.schema(obj)
	if err != nil {
		return nil, reflect.Value{}, err
	}
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, reflect.Value{}, &EntityError{Type: s.GoType.String(), Err: ErrNoClassDefined}
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, reflect.Value{}, &EntityError{Type: s.GoType.String(), Err: ErrNoClassDefined}
		}
		v = v.Elem()
	}
	return s, v, nil
}

// table 检查表名与主键
func (s *tableSchema) table(needID bool) error {
	if s.Meta.Table == "" {
		return &EntityError{Type: s.GoType.String(), Err: ErrNoTableDefined}
	}
	if needID && s.ID == nil {
		return &EntityError{Type: s.GoType.String(), Err: ErrNoIDField}
	}
	return nil
}

// idValue 主键值 nil 指针或零值视为缺失
func (s *tableSchema) idValue(v reflect.Value) (any, bool) {
	f := v.FieldByIndex(s.ID.Index)
	val := f.Interface()
	if database.IsZeroValue(val) {
		return nil, false
	}
	return val, true
}
