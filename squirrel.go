package database

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lann/builder"
)

// MinPageElements 分页每页最少条数
const MinPageElements = 10

// ToSql 实现 squirrel.Sqlizer 可作为子查询或表达式嵌入 squirrel 构建的语句
func (b *Builder) ToSql() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if b.sql == "" {
		return "", nil, ErrNoStatement
	}
	return b.sql, nil, nil
}

// FromSqlizer 渲染 squirrel 语句 参数经转义后直接拼入
//
// 语句须使用 ? 占位符
func (b *Builder) FromSqlizer(s sq.Sqlizer) *Builder {
	query, args, err := s.ToSql()
	if err != nil {
		return b.fail(err)
	}
	query, err = inlineArgs(query, args, b.quote)
	if err != nil {
		return b.fail(err)
	}
	return b.SetSQL(query)
}

// inlineArgs 依次替换引号外的 ? 占位符 ?? 视为字面 ?
func inlineArgs(query string, args []any, quote func(any) string) (string, error) {
	if len(args) == 0 {
		return query, nil
	}
	var (
		sb      strings.Builder
		n       int
		inQuote bool
	)
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
		case c == '?' && !inQuote:
			if i+1 < len(query) && query[i+1] == '?' {
				sb.WriteByte('?')
				i++
				continue
			}
			if n >= len(args) {
				return "", fmt.Errorf("database: not enough arguments for placeholders in %q", query)
			}
			sb.WriteString(quote(args[n]))
			n++
			continue
		}
		sb.WriteByte(c)
	}
	if n != len(args) {
		return "", fmt.Errorf("database: %d arguments for %d placeholders", len(args), n)
	}
	return sb.String(), nil
}

// countOf 去掉排序与分页 改为 COUNT(*)
func countOf(sb sq.SelectBuilder) sq.SelectBuilder {
	sb = builder.Delete(sb, "OrderByParts").(sq.SelectBuilder)
	return sb.RemoveLimit().RemoveOffset().RemoveColumns().Columns("COUNT(*) AS num_rows")
}

func sanitizePageAndSize(page, size uint64) (uint64, uint64) {
	if page < 1 {
		page = 1
	}
	if size < MinPageElements {
		size = MinPageElements
	}
	return page, size
}

// Paginate 分页查询 返回当前页与总数
//
// hook 用于追加条件 总数查询会去掉排序与分页
func (db *DB) Paginate(ctx context.Context, table string, page, size uint64, hook func(sq.SelectBuilder) sq.SelectBuilder) ([]Row, int64, error) {
	page, size = sanitizePageAndSize(page, size)
	if hook == nil {
		hook = func(b sq.SelectBuilder) sq.SelectBuilder { return b }
	}
	base := hook(sq.Select("*").From(table))

	count, err := db.Builder().From(table).FromSqlizer(countOf(base)).Value(ctx, "num_rows")
	if !execErr(err, table, "Paginate - Count") {
		return nil, 0, err
	}
	total, err := ToInt64(count)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.Builder().From(table).FromSqlizer(base.Limit(size).Offset((page - 1) * size)).Many(ctx)
	if !execErr(err, table, "Paginate - Pagination") {
		return nil, 0, err
	}
	return rows, total, nil
}

// Cte 公共表表达式
type Cte struct {
	Alias string
	Expr  sq.Sqlizer
}

// WithCte 以 WITH 前缀拼接多个 CTE 后接主语句
//
//	WithCte(sq.Select("*").From("recent"), Cte{"recent", sub})
func WithCte(main sq.SelectBuilder, ctes ...Cte) sq.SelectBuilder {
	if len(ctes) == 0 {
		return main
	}
	parts := make([]any, 0, len(ctes)*3)
	for i, cte := range ctes {
		head := `, "%s" AS (`
		if i == 0 {
			head = `WITH "%s" AS (`
		}
		parts = append(parts, sq.Expr(fmt.Sprintf(head, cte.Alias)), cte.Expr, sq.Expr(")"))
	}
	return main.PrefixExpr(sq.ConcatExpr(parts...))
}
