package database

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Pair 有序映射中的一项
type Pair struct {
	Field string
	Value any
}

// Map 有序的 字段 -> 值 映射 按插入顺序渲染
type Map []Pair

// M 由 key, value, key, value... 构造 Map 奇数个参数时最后一个值为 nil
func M(kv ...any) Map {
	m := make(Map, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		p := Pair{Field: fmt.Sprint(kv[i])}
		if i+1 < len(kv) {
			p.Value = kv[i+1]
		}
		m = append(m, p)
	}
	return m
}

// Set 追加一项
func (m Map) Set(field string, value any) Map {
	return append(m, Pair{Field: field, Value: value})
}

// Keys 字段名 保持顺序
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Field
	}
	return keys
}

// sortedMap Go map 无序 按键名排序后转为 Map
func sortedMap(src map[string]any) Map {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := make(Map, len(keys))
	for i, k := range keys {
		m[i] = Pair{Field: k, Value: src[k]}
	}
	return m
}

// toMap 接受 Map 或 map[string]any
func toMap(v any) (Map, bool) {
	switch m := v.(type) {
	case Map:
		return m, true
	case map[string]any:
		return sortedMap(m), true
	}
	return nil, false
}

type operator uint8

const (
	opEqual operator = iota
	opLike
	opNotLike
	opIn
	opNotIn
	opRaw
)

// operatorTokens 条件中的运算符简写
var operatorTokens = map[string]operator{
	"%":  opLike,
	"!%": opNotLike,
	"@":  opIn,
	"!@": opNotIn,
}

var operatorSQL = map[operator]string{
	opEqual:   "=",
	opLike:    " LIKE ",
	opNotLike: " NOT LIKE ",
	opIn:      " IN ",
	opNotIn:   " NOT IN ",
}

// parseCondition 把 字段/值 转为 SQL 条件片段
//
// field 为映射时逐项解析 仅第一项使用 join 其余推断连接词
// join 为空时 字段以 | 开头推断为 OR 否则为 AND
func (b *Builder) parseCondition(field, value any, join string, escape bool) (string, error) {
	if m, ok := toMap(field); ok {
		var sb strings.Builder
		for _, p := range m {
			frag, err := b.parseCondition(p.Field, p.Value, join, escape)
			if err != nil {
				return "", err
			}
			sb.WriteString(frag)
			join = ""
		}
		return sb.String(), nil
	}
	f, ok := field.(string)
	if !ok {
		return "", fmt.Errorf("%w: %T", ErrInvalidPredicate, field)
	}

	f = strings.TrimSpace(f)
	if join == "" {
		join = " AND"
		if strings.HasPrefix(f, "|") {
			join = " OR"
		}
	}
	f = strings.TrimPrefix(f, "|")
	if value == nil {
		// 原样作为条件
		return join + " " + f, nil
	}

	op, token := opEqual, ""
	if name, tok, found := strings.Cut(f, " "); found {
		f, token = name, strings.TrimSpace(tok)
		if o, ok := operatorTokens[token]; ok {
			op = o
		} else {
			op = opRaw
		}
	}

	var rendered string
	if isList(value) {
		if op != opIn && op != opNotIn {
			op = opIn
		}
		rendered = b.quoteList(value)
	} else if escape {
		rendered = b.quote(value)
	} else {
		rendered = rawValue(value)
	}

	cond := operatorSQL[op]
	if op == opRaw {
		cond = " " + token + " "
	}
	return join + " " + f + cond + rendered, nil
}

// isList 切片或数组 字节切片视为标量
func isList(v any) bool {
	t := reflect.TypeOf(v)
	if isBytes(t) {
		return false
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

func (b *Builder) quoteList(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Len() == 0 {
		return "(NULL)"
	}
	items := make([]string, rv.Len())
	for i := range items {
		items[i] = b.quote(rv.Index(i).Interface())
	}
	return "(" + strings.Join(items, ",") + ")"
}
