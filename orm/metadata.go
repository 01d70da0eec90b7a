package orm

import (
	"reflect"
	"strings"
	"sync"

	"github.com/modern-go/reflect2"
	"github.com/skadiD/swallow"
)

// Metadata 实体元数据
type Metadata struct {
	Table     string
	IDField   string
	NameField string
}

// Entity 实体需声明自己的表与主键
//
//	func (User) Metadata() orm.Metadata {
//		return orm.Metadata{Table: "users", IDField: "id", NameField: "name"}
//	}
type Entity interface {
	Metadata() Metadata
}

// fieldSchema 字段元数据
type fieldSchema struct {
	GoName     string
	ColumnName string
	Index      []int
	GoType     reflect.Type
	PrimaryKey bool
	AutoIncr   bool
}

// tableSchema 表元数据
type tableSchema struct {
	GoType   reflect.Type
	Meta     Metadata
	Fields   []*fieldSchema
	ID       *fieldSchema
	Name     *fieldSchema
	byColumn map[string]*fieldSchema
}

// MetadataCache 按类型缓存元数据 由 Mapper 持有 可在多个 Mapper 间共享
type MetadataCache struct {
	mu      sync.RWMutex
	schemas map[uintptr]*tableSchema
}

func NewMetadataCache() *MetadataCache {
	return &MetadataCache{schemas: make(map[uintptr]*tableSchema)}
}

// Len 已缓存的类型数量
func (c *MetadataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemas)
}

// structType 解到结构体类型 T 与 *T 共用同一份缓存
func structType(obj any) (reflect.Type, bool) {
	if obj == nil {
		return nil, false
	}
	typ := reflect.TypeOf(obj)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ, typ.Kind() == reflect.Struct
}

// entityOf 值本身或其指针实现 Entity
func entityOf(typ reflect.Type) (Entity, bool) {
	zero := reflect.New(typ)
	if e, ok := zero.Interface().(Entity); ok {
		return e, true
	}
	e, ok := zero.Elem().Interface().(Entity)
	return e, ok
}

// Metadata 未绑定实体类型时返回空值
func (c *MetadataCache) Metadata(obj any) Metadata {
	s, err := c.schema(obj)
	if err != nil {
		return Metadata{}
	}
	return s.Meta
}

func (c *MetadataCache) schema(obj any) (*tableSchema, error) {
	typ, ok := structType(obj)
	if !ok {
		return nil, &EntityError{Type: typeName(obj), Err: ErrNoClassDefined}
	}
	key := reflect2.Type2(typ).RType()

	c.mu.RLock()
	s, ok := c.schemas[key]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	e, ok := entityOf(typ)
	if !ok {
		return nil, &EntityError{Type: typ.String(), Err: ErrNoClassDefined}
	}
	s = buildSchema(typ, e.Metadata())

	c.mu.Lock()
	c.schemas[key] = s
	c.mu.Unlock()
	return s, nil
}

func typeName(obj any) string {
	if obj == nil {
		return "<nil>"
	}
	return reflect2.TypeOf(obj).String()
}

func buildSchema(typ reflect.Type, meta Metadata) *tableSchema {
	s := &tableSchema{
		GoType:   typ,
		Meta:     meta,
		byColumn: make(map[string]*fieldSchema),
	}
	collectFields(s, typ, nil)
	s.ID = s.lookup(meta.IDField)
	// 未声明 IDField 时使用 pk 标签
	if s.ID == nil && meta.IDField == "" {
		for _, f := range s.Fields {
			if f.PrimaryKey {
				s.ID = f
				s.Meta.IDField = f.ColumnName
				break
			}
		}
	}
	s.Name = s.lookup(meta.NameField)
	return s
}

func collectFields(s *tableSchema, typ reflect.Type, index []int) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		idx := append(append([]int(nil), index...), i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(s, field.Type, idx)
			continue
		}
		// 跳过非导出字段
		if !field.IsExported() {
			continue
		}
		fs := parseFieldSchema(field, idx)
		if fs == nil {
			continue
		}
		s.Fields = append(s.Fields, fs)
		s.byColumn[fs.ColumnName] = fs
	}
}

// parseFieldSchema 解析字段标签 orm:"列名,pk,auto" 列名为 - 时忽略该字段
func parseFieldSchema(field reflect.StructField, index []int) *fieldSchema {
	fs := &fieldSchema{
		GoName:     field.Name,
		ColumnName: database.SnakeCase(field.Name),
		Index:      index,
		GoType:     field.Type,
	}
	if tag, ok := field.Tag.Lookup("db"); ok && tag != "" {
		fs.ColumnName = strings.Split(tag, ",")[0]
	}
	parts := strings.Split(field.Tag.Get("orm"), ",")
	if parts[0] != "" {
		fs.ColumnName = parts[0]
	}
	if fs.ColumnName == "-" {
		return nil
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "pk":
			fs.PrimaryKey = true
		case "auto":
			fs.AutoIncr = true
		}
	}
	return fs
}

// lookup 按列名 忽略大小写的列名 CamelCase 后的字段名 依次匹配
func (s *tableSchema) lookup(column string) *fieldSchema {
	if column == "" {
		return nil
	}
	if f, ok := s.byColumn[column]; ok {
		return f
	}
	camel := database.CamelCase(column)
	for _, f := range s.Fields {
		if strings.EqualFold(f.ColumnName, column) || strings.EqualFold(f.GoName, column) || strings.EqualFold(f.GoName, camel) {
			return f
		}
	}
	return nil
}
