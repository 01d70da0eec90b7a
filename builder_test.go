package database

import (
	"encoding/json"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderStatus int

func (s orderStatus) String() string {
	if s == 1 {
		return "active"
	}
	return "inactive"
}

func TestParseCondition(t *testing.T) {
	b := NewBuilder()
	tests := []struct {
		name   string
		field  any
		value  any
		join   string
		escape bool
		want   string
	}{
		{"equal string", "name", "bob", "WHERE", true, "WHERE name='bob'"},
		{"equal number", "id", 5, "WHERE", true, "WHERE id=5"},
		{"numeric string quoted", "code", "007", "", true, " AND code='007'"},
		{"like", "name %", "a%", "", true, " AND name LIKE 'a%'"},
		{"not like", "name !%", "a%", "", true, " AND name NOT LIKE 'a%'"},
		{"in", "id @", []int{1, 2, 3}, "", true, " AND id IN (1,2,3)"},
		{"not in", "tag !@", []string{"x", "y"}, "", true, " AND tag NOT IN ('x','y')"},
		{"list forces in", "status", []string{"a", "b"}, "", true, " AND status IN ('a','b')"},
		{"raw operator", "age >", 18, "", true, " AND age > 18"},
		{"or marker", "|role", "admin", "", true, " OR role='admin'"},
		{"raw predicate", "deleted_at IS NULL", nil, "", true, " AND deleted_at IS NULL"},
		{"raw predicate with keyword", "1=1", nil, "WHERE", true, "WHERE 1=1"},
		{"no escape", "a.id", "b.a_id", " ON", false, " ON a.id=b.a_id"},
		{"null element", "id @", []any{1, nil}, "", true, " AND id IN (1,NULL)"},
		{"escaped quote", "name", "O'Neil", "", true, ` AND name='O\'Neil'`},
		{"bool", "active", true, "", true, " AND active=TRUE"},
		{"time", "at", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "", true, " AND at='2024-01-02 03:04:05'"},
		{"expr", "updated_at", Expr("NOW()"), "", true, " AND updated_at=NOW()"},
		{"empty list", "id @", []int{}, "", true, " AND id IN (NULL)"},
		{"numeric stringer", "status", orderStatus(1), "WHERE", true, "WHERE status=1"},
		{"duration", "timeout", 5 * time.Second, "", true, " AND timeout=5000000000"},
		{"stringer list", "status @", []orderStatus{0, 1}, "", true, " AND status IN (0,1)"},
		{"raw message", "doc", json.RawMessage(`{"a":1}`), "", true, ` AND doc='{\"a\":1}'`},
		{"bytes", "blob", []byte("ab"), "", true, " AND blob='ab'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.parseCondition(tt.field, tt.value, tt.join, tt.escape)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCondition_Mapping(t *testing.T) {
	b := NewBuilder()
	got, err := b.parseCondition(M("a", 1, "|b", "x", "c @", []int{4, 5}), nil, "WHERE", true)
	require.NoError(t, err)
	assert.Equal(t, "WHERE a=1 OR b='x' AND c IN (4,5)", got)

	// Go map 按键排序
	got, err = b.parseCondition(map[string]any{"z": 1, "a": 2}, nil, "", true)
	require.NoError(t, err)
	assert.Equal(t, " AND a=2 AND z=1", got)

	_, err = b.parseCondition(42, nil, "", true)
	assert.ErrorIs(t, err, ErrInvalidPredicate)
}

func TestBuilder_SelectEmpty(t *testing.T) {
	b := NewBuilder().From("users").Select()
	require.NoError(t, b.Err())
	assert.Equal(t, "SELECT * FROM users", b.SQL())
}

func TestBuilder_LimitOffset(t *testing.T) {
	assert.Equal(t, "SELECT * FROM users LIMIT 5 OFFSET 10", NewBuilder().From("users").Limit(5, 10).Select().SQL())
	assert.Equal(t, "SELECT * FROM users LIMIT 5 OFFSET 10", NewBuilder().From("users").Offset(10, 5).Select().SQL())
	// 负数不改动
	assert.Equal(t, "SELECT * FROM users LIMIT 5", NewBuilder().From("users").Limit(5).Limit(-1).Select().SQL())
}

func TestBuilder_SelectFull(t *testing.T) {
	b := NewBuilder().From("users u").
		Distinct().
		LeftJoin("orders o", M("o.user_id", "u.id")).
		Where("u.active", 1).
		Where("|u.role @", []string{"admin", "staff"}).
		GroupBy([]string{"u.id", "u.name"}).
		Having("COUNT(o.id) >", 2).
		SortDesc("u.created_at").
		OrderBy([]string{"u.name", "u.id"}).
		Limit(20, 40).
		Select("u.id", "u.name")
	require.NoError(t, b.Err())
	assert.Equal(t, "SELECT DISTINCT u.id, u.name FROM users u"+
		" LEFT OUTER JOIN orders o ON o.user_id=u.id"+
		" WHERE u.active=1 OR u.role IN ('admin','staff')"+
		" GROUP BY u.id,u.name"+
		" HAVING COUNT(o.id) > 2"+
		" ORDER BY u.created_at DESC, u.name ASC, u.id ASC"+
		" LIMIT 20 OFFSET 40", b.SQL())
}

func TestBuilder_JoinInvalidType(t *testing.T) {
	b := NewBuilder().From("users").Join("orders", M("orders.user_id", "users.id"))
	before := *b
	b.Join("roles", M("roles.id", "users.role_id"), "CROSS")
	assert.ErrorIs(t, b.Err(), ErrInvalidJoinType)
	assert.Equal(t, before.joins, b.joins)
	assert.Equal(t, "SELECT * FROM users INNER JOIN orders ON orders.user_id=users.id", b.Select().SQL())

	_, _, err := b.ToSql()
	assert.ErrorIs(t, err, ErrInvalidJoinType)
}

func TestBuilder_InvalidWhereKeepsState(t *testing.T) {
	b := NewBuilder().From("users").Where("id", 1).Where(3.14)
	assert.ErrorIs(t, b.Err(), ErrInvalidPredicate)
	assert.Equal(t, "WHERE id=1", b.where)
}

func TestBuilder_NoTable(t *testing.T) {
	b := NewBuilder().Select()
	assert.ErrorIs(t, b.Err(), ErrNoTable)
	assert.ErrorIs(t, NewBuilder().Insert(M("a", 1)).Err(), ErrNoTable)
	assert.ErrorIs(t, NewBuilder().Update("a=1").Err(), ErrNoTable)
	assert.ErrorIs(t, NewBuilder().Delete().Err(), ErrNoTable)
}

func TestBuilder_Insert(t *testing.T) {
	b := NewBuilder().From("users").Insert(M("name", "x", "age", 1, "note", nil))
	require.NoError(t, b.Err())
	assert.Equal(t, "INSERT INTO users (name,age,note) VALUES ('x',1,NULL)", b.SQL())

	b = NewBuilder().From("users").Insert(map[string]any{"b": "y", "a": 2})
	assert.Equal(t, "INSERT INTO users (a,b) VALUES (2,'y')", b.SQL())

	assert.ErrorIs(t, NewBuilder().From("users").Insert("nope").Err(), ErrInvalidData)
}

func TestBuilder_Update(t *testing.T) {
	b := NewBuilder().From("users").Where("id", 7).Update(M("name", "z", "", "hits=hits+1"))
	require.NoError(t, b.Err())
	assert.Equal(t, "UPDATE users SET name='z',hits=hits+1 WHERE id=7", b.SQL())

	b = NewBuilder().From("users").Update("age=age+1")
	assert.Equal(t, "UPDATE users SET age=age+1", b.SQL())

	b = NewBuilder().From("users").Update("")
	assert.ErrorIs(t, b.Err(), ErrInvalidData)
	assert.Empty(t, b.SQL())
	assert.ErrorIs(t, NewBuilder().From("users").Update(M()).Err(), ErrInvalidData)
}

func TestBuilder_Delete(t *testing.T) {
	assert.Equal(t, "DELETE FROM users WHERE id=3", NewBuilder().From("users").Delete("id", 3).SQL())
	assert.Equal(t, "DELETE FROM users", NewBuilder().From("users").Delete().SQL())
}

func TestBuilder_Between(t *testing.T) {
	b := NewBuilder().From("logs").Between("created", "2024-01-01", "2024-02-01").Select()
	assert.Equal(t, "SELECT * FROM logs WHERE created BETWEEN '2024-01-01' AND '2024-02-01'", b.SQL())
}

func TestBuilder_ResetAndSQL(t *testing.T) {
	b := NewBuilder().From("users").Where("id", 1).Limit(3).Select()
	b.From("posts")
	assert.Equal(t, "", b.SQL())
	assert.Equal(t, "SELECT * FROM posts", b.Select().SQL())

	b.From("users", false)
	assert.Equal(t, "SELECT * FROM posts", b.SQL())

	b.SetSQL("SELECT", "", "  1 ", "")
	assert.Equal(t, "SELECT 1", b.SQL())
}

func TestBuilder_FromSqlizer(t *testing.T) {
	b := NewBuilder().FromSqlizer(sq.Select("id").From("users").Where(sq.Eq{"name": "it's"}).Where("age > ?", 18))
	require.NoError(t, b.Err())
	assert.Equal(t, `SELECT id FROM users WHERE name = 'it\'s' AND age > 18`, b.SQL())

	sub := NewBuilder().From("users").Where("active", 1).Select("id")
	query, _, err := sq.Select("*").From("orders").Where(sq.Expr("user_id IN (?)", sub)).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE user_id IN (SELECT id FROM users WHERE active=1)", query)
}

func TestInlineArgs(t *testing.T) {
	q, err := inlineArgs("SELECT '?' , ? , ??", []any{"a"}, NewBuilder().quote)
	require.NoError(t, err)
	assert.Equal(t, "SELECT '?' , 'a' , ?", q)

	_, err = inlineArgs("SELECT ?", []any{1, 2}, NewBuilder().quote)
	assert.Error(t, err)
}

func TestCountOf(t *testing.T) {
	base := sq.Select("*").From("users").Where("age > ?", 1).OrderBy("id").Limit(10).Offset(20)
	query, args, err := countOf(base).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) AS num_rows FROM users WHERE age > ?", query)
	assert.Equal(t, []any{1}, args)
}

func TestWithCte(t *testing.T) {
	recent := sq.Select("id").From("posts").Where("draft = ?", false)
	query, _, err := WithCte(sq.Select("*").From("recent"), Cte{Alias: "recent", Expr: recent}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `WITH "recent" AS (SELECT id FROM posts WHERE draft = ?) SELECT * FROM recent`, query)
}
