package orm

import (
	"context"

	"github.com/skadiD/swallow"
)

// Save 主键缺失时插入 否则按主键更新
//
// fields 按列名或字段名限定要更新的字段 未知名称直接忽略 全部被忽略时不执行
func (m *Mapper) Save(ctx context.Context, obj any, fields ...string) (database.ExecResult, error) {
	s, v, err := m.target(obj)
	if err != nil {
		return database.ExecResult{}, err
	}
	if err = s.table(true); err != nil {
		return database.ExecResult{}, err
	}
	id, ok := s.idValue(v)
	if !ok {
		return m.insert(ctx, s, v)
	}

	data := database.Map{}
	for _, f := range s.selected(fields) {
		if f == s.ID {
			continue
		}
		data = data.Set(f.ColumnName, v.FieldByIndex(f.Index).Interface())
	}
	if len(data) == 0 {
		return database.ExecResult{InsertID: -1}, nil
	}
	return m.db.Table(s.Meta.Table).Where(s.ID.ColumnName, id).Update(data).Exec(ctx)
}

// selected 未指定时为全部字段
func (s *tableSchema) selected(names []string) []*fieldSchema {
	if len(names) == 0 {
		return s.Fields
	}
	out := make([]*fieldSchema, 0, len(names))
	seen := make(map[*fieldSchema]bool, len(names))
	for _, name := range names {
		f := s.lookup(name)
		if f == nil || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
