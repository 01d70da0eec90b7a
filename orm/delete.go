package orm

import (
	"context"

	"github.com/skadiD/swallow"
)

// Remove 按主键删除 主键缺失时不执行
func (m *Mapper) Remove(ctx context.Context, obj any) (database.ExecResult, error) {
	s, v, err := m.target(obj)
	if err != nil {
		return database.ExecResult{}, err
	}
	if err = s.table(true); err != nil {
		return database.ExecResult{}, err
	}
	id, ok := s.idValue(v)
	if !ok {
		return database.ExecResult{InsertID: -1}, nil
	}
	return m.db.Table(s.Meta.Table).Delete(s.ID.ColumnName, id).Exec(ctx)
}
