package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// 连接类型
const (
	InnerJoin = "INNER"
	LeftJoin  = "LEFT OUTER"
	RightJoin = "RIGHT OUTER"
	FullJoin  = "FULL OUTER"
)

var joinTypes = map[string]bool{
	InnerJoin: true,
	LeftJoin:  true,
	RightJoin: true,
	FullJoin:  true,
}

// Builder 链式 SQL 构建器 单一持有者使用 非并发安全
//
// 出错的调用记录错误且不改动状态 之后的渲染与执行都会返回该错误
type Builder struct {
	db *DB

	table    string
	joins    []string
	where    string
	groups   string
	having   string
	order    string
	limit    string
	offset   string
	distinct bool
	sql      string

	cacheKey string
	cacheTTL time.Duration

	err    error
	result ExecResult
}

// NewBuilder 未绑定连接的构建器 字符串使用手动转义
func NewBuilder() *Builder {
	return &Builder{result: ExecResult{InsertID: -1}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err 第一个记录的错误
func (b *Builder) Err() error { return b.err }

// Table 当前表名
func (b *Builder) Table() string { return b.table }

// Reset 清空除表名和连接以外的状态
func (b *Builder) Reset() *Builder {
	b.joins = nil
	b.where = ""
	b.groups = ""
	b.having = ""
	b.order = ""
	b.limit = ""
	b.offset = ""
	b.distinct = false
	b.sql = ""
	b.cacheKey = ""
	b.cacheTTL = 0
	b.err = nil
	return b
}

// From 设置表名 默认同时 Reset
func (b *Builder) From(table string, reset ...bool) *Builder {
	b.table = table
	if len(reset) == 0 || reset[0] {
		b.Reset()
	}
	return b
}

// Join 连接表 on 为条件映射 值不转义
func (b *Builder) Join(table string, on any, joinType ...string) *Builder {
	typ := InnerJoin
	if len(joinType) > 0 {
		typ = strings.ToUpper(strings.TrimSpace(joinType[0]))
	}
	if !joinTypes[typ] {
		return b.fail(fmt.Errorf("%w: %q", ErrInvalidJoinType, typ))
	}
	cond, err := b.parseCondition(on, nil, " ON", false)
	if err != nil {
		return b.fail(err)
	}
	b.joins = append(b.joins, typ+" JOIN "+table+cond)
	return b
}

func (b *Builder) LeftJoin(table string, on any) *Builder {
	return b.Join(table, on, LeftJoin)
}

func (b *Builder) RightJoin(table string, on any) *Builder {
	return b.Join(table, on, RightJoin)
}

func (b *Builder) FullJoin(table string, on any) *Builder {
	return b.Join(table, on, FullJoin)
}

func valueArg(value []any) any {
	if len(value) == 0 {
		return nil
	}
	return value[0]
}

func (b *Builder) appendCondition(clause *string, keyword string, field any, value []any) *Builder {
	join := ""
	if *clause == "" {
		join = keyword
	}
	cond, err := b.parseCondition(field, valueArg(value), join, true)
	if err != nil {
		return b.fail(err)
	}
	*clause += cond
	return b
}

// Where 追加 WHERE 条件
//
//	Where("id", 1)                       id=1
//	Where("name %", "a%")                name LIKE 'a%'
//	Where("|status @", []string{"a"})    OR status IN ('a')
//	Where(M("a", 1, "b", 2))             a=1 AND b=2
//	Where("deleted_at IS NULL")          原样
func (b *Builder) Where(field any, value ...any) *Builder {
	return b.appendCondition(&b.where, "WHERE", field, value)
}

// Having 追加 HAVING 条件 规则同 Where
func (b *Builder) Having(field any, value ...any) *Builder {
	return b.appendCondition(&b.having, "HAVING", field, value)
}

// Between field BETWEEN a AND b
func (b *Builder) Between(field string, from, to any) *Builder {
	return b.Where(fmt.Sprintf("%s BETWEEN %s AND %s", field, b.quote(from), b.quote(to)))
}

// OrderBy 排序 field 为 string 或 []string 多次调用以逗号追加
func (b *Builder) OrderBy(field any, direction ...string) *Builder {
	dir := "ASC"
	if len(direction) > 0 {
		dir = strings.ToUpper(direction[0])
	}
	var fields string
	switch f := field.(type) {
	case string:
		fields = f + " " + dir
	case []string:
		parts := make([]string, len(f))
		for i, name := range f {
			parts[i] = name + " " + dir
		}
		fields = strings.Join(parts, ", ")
	default:
		return b.fail(fmt.Errorf("%w: order by %T", ErrInvalidPredicate, field))
	}
	if b.order == "" {
		b.order = "ORDER BY " + fields
	} else {
		b.order += ", " + fields
	}
	return b
}

func (b *Builder) SortAsc(field any) *Builder {
	return b.OrderBy(field, "ASC")
}

func (b *Builder) SortDesc(field any) *Builder {
	return b.OrderBy(field, "DESC")
}

// GroupBy 分组 field 为 string 或 []string
func (b *Builder) GroupBy(field any) *Builder {
	var fields string
	switch f := field.(type) {
	case string:
		fields = f
	case []string:
		fields = strings.Join(f, ",")
	default:
		return b.fail(fmt.Errorf("%w: group by %T", ErrInvalidPredicate, field))
	}
	if b.groups == "" {
		b.groups = "GROUP BY " + fields
	} else {
		b.groups += "," + fields
	}
	return b
}

// Limit 负数不改动 传入 offset 时一并设置
func (b *Builder) Limit(n int, offset ...int) *Builder {
	if n >= 0 {
		b.limit = "LIMIT " + strconv.Itoa(n)
	}
	if len(offset) > 0 {
		b.Offset(offset[0])
	}
	return b
}

// Offset 负数不改动 传入 limit 时一并设置
func (b *Builder) Offset(n int, limit ...int) *Builder {
	if n >= 0 {
		b.offset = "OFFSET " + strconv.Itoa(n)
	}
	if len(limit) > 0 {
		b.Limit(limit[0])
	}
	return b
}

// Distinct 是否去重
func (b *Builder) Distinct(v ...bool) *Builder {
	b.distinct = len(v) == 0 || v[0]
	return b
}

// Cache 下一次取数使用的缓存键 ttl 为 0 永不过期
func (b *Builder) Cache(key string, ttl time.Duration) *Builder {
	b.cacheKey, b.cacheTTL = key, ttl
	return b
}

// SetSQL 以单个空格拼接非空片段并保存
func (b *Builder) SetSQL(fragments ...string) *Builder {
	parts := fragments[:0:0]
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	b.sql = strings.Join(parts, " ")
	return b
}

// SQL 当前保存的语句
func (b *Builder) SQL() string { return b.sql }

func (b *Builder) checkTable() bool {
	if b.table == "" {
		b.fail(ErrNoTable)
		return false
	}
	return true
}

// Select 渲染 SELECT 未指定字段时为 *
func (b *Builder) Select(fields ...string) *Builder {
	if !b.checkTable() {
		return b
	}
	cols := "*"
	if len(fields) > 0 {
		cols = strings.Join(fields, ", ")
	}
	distinct := ""
	if b.distinct {
		distinct = "DISTINCT"
	}
	parts := []string{"SELECT", distinct, cols, "FROM", b.table}
	parts = append(parts, b.joins...)
	parts = append(parts, b.where, b.groups, b.having, b.order, b.limit, b.offset)
	return b.SetSQL(parts...)
}

// Insert 渲染 INSERT data 为 Map 或 map[string]any
func (b *Builder) Insert(data any) *Builder {
	if !b.checkTable() {
		return b
	}
	m, ok := toMap(data)
	if !ok || len(m) == 0 {
		return b.fail(fmt.Errorf("%w: insert %T", ErrInvalidData, data))
	}
	values := make([]any, len(m))
	for i, p := range m {
		values[i] = sq.Expr(b.quote(p.Value))
	}
	query, _, err := sq.Insert(b.table).Columns(m.Keys()...).Values(values...).ToSql()
	if err != nil {
		return b.fail(err)
	}
	return b.SetSQL(query)
}

// Update 渲染 UPDATE data 为 Map / map[string]any / 原始 SET 字符串
//
// Map 中 Field 为空的项原样拼入
func (b *Builder) Update(data any) *Builder {
	if !b.checkTable() {
		return b
	}
	var set string
	if s, ok := data.(string); ok && strings.TrimSpace(s) != "" {
		set = s
	} else if m, ok := toMap(data); ok && len(m) > 0 {
		parts := make([]string, len(m))
		for i, p := range m {
			if p.Field == "" {
				parts[i] = rawValue(p.Value)
				continue
			}
			parts[i] = p.Field + "=" + b.quote(p.Value)
		}
		set = strings.Join(parts, ",")
	} else {
		return b.fail(fmt.Errorf("%w: update %T", ErrInvalidData, data))
	}
	return b.SetSQL("UPDATE", b.table, "SET", set, b.where)
}

// Delete 渲染 DELETE 可同时追加条件
func (b *Builder) Delete(where ...any) *Builder {
	if !b.checkTable() {
		return b
	}
	if len(where) > 0 {
		b.Where(where[0], where[1:]...)
	}
	return b.SetSQL("DELETE FROM", b.table, b.where)
}
