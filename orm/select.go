package orm

import (
	"context"
	"reflect"
	"time"

	"github.com/skadiD/swallow"
)

// Orm 某一实体类型的查询
type Orm[T any] struct {
	mapper *Mapper
	where  []database.Map
	order  [][2]string
	limit  int
	offset int
	pk     any
	key    string
	ttl    time.Duration
}

// Records 查询结果
type Records[T any] []*T

// Single 恰好一条时返回该实体
func (r Records[T]) Single() (*T, bool) {
	if len(r) != 1 {
		return nil, false
	}
	return r[0], true
}

func Model[T any](m *Mapper) *Orm[T] {
	return &Orm[T]{mapper: m, limit: -1}
}

// Where 追加条件 同 Builder.Where
func (o *Orm[T]) Where(field string, value any) *Orm[T] {
	o.where = append(o.where, database.M(field, value))
	return o
}

// OrderBy 追加排序 direction 缺省为 ASC
func (o *Orm[T]) OrderBy(field string, direction ...string) *Orm[T] {
	dir := "ASC"
	if len(direction) > 0 {
		dir = direction[0]
	}
	o.order = append(o.order, [2]string{field, dir})
	return o
}

func (o *Orm[T]) Limit(n int, offset ...int) *Orm[T] {
	o.limit = n
	if len(offset) > 0 {
		o.offset = offset[0]
	}
	return o
}

// Pk 按主键查询
func (o *Orm[T]) Pk(value any) *Orm[T] {
	o.pk = value
	return o
}

// Cached 结果写入缓存
func (o *Orm[T]) Cached(key string, ttl time.Duration) *Orm[T] {
	o.key, o.ttl = key, ttl
	return o
}

// Find 按值查询 整数匹配主键 字符串匹配名称字段 Map 作为条件
func (o *Orm[T]) Find(ctx context.Context, value ...any) (Records[T], error) {
	var zero T
	s, err := o.mapper.meta.schema(&zero)
	if err != nil {
		return nil, err
	}
	if err = s.table(false); err != nil {
		return nil, err
	}

	b := o.mapper.db.Builder()
	// 不重置 保留之后追加的条件
	b.From(s.Meta.Table, false)
	if o.pk != nil {
		if s.ID == nil {
			return nil, &EntityError{Type: s.GoType.String(), Err: ErrNoIDField}
		}
		b.Where(s.ID.ColumnName, o.pk)
	}
	for _, v := range value {
		if err = o.filter(b, s, v); err != nil {
			return nil, err
		}
	}
	for _, w := range o.where {
		b.Where(w)
	}
	for _, ord := range o.order {
		b.OrderBy(ord[0], ord[1])
	}
	if o.limit >= 0 {
		b.Limit(o.limit)
	}
	if o.offset > 0 {
		b.Offset(o.offset)
	}
	if o.key != "" {
		b.Cache(o.key, o.ttl)
	}

	rows, err := b.Many(ctx)
	if err != nil {
		return nil, err
	}
	records := make(Records[T], 0, len(rows))
	for _, row := range rows {
		item := new(T)
		if err = hydrate(s, reflect.ValueOf(item).Elem(), row); err != nil {
			return nil, err
		}
		records = append(records, item)
	}
	return records, nil
}

func (o *Orm[T]) filter(b *database.Builder, s *tableSchema, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if s.Name == nil {
			return &EntityError{Type: s.GoType.String(), Err: ErrNoNameField}
		}
		b.Where(s.Name.ColumnName, x)
	case database.Map, map[string]any:
		b.Where(x)
	default:
		if _, err := database.ToInt64(v); err != nil {
			return database.ErrInvalidPredicate
		}
		if s.ID == nil {
			return &EntityError{Type: s.GoType.String(), Err: ErrNoIDField}
		}
		b.Where(s.ID.ColumnName, v)
	}
	return nil
}

// One 第一条 无结果时为 nil 不改动 o 的 LIMIT
func (o *Orm[T]) One(ctx context.Context, value ...any) (*T, error) {
	c := *o
	c.limit = 1
	records, err := c.Find(ctx, value...)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}
