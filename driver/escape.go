package driver

import (
	"strings"
)

var backslashEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	`'`, `\'`,
	`"`, `\"`,
	"\x1a", `\Z`,
)

// EscapeString 无连接可用时的手动转义表 与 mysql_real_escape_string 一致
func EscapeString(s string) string {
	return backslashEscaper.Replace(s)
}

// QuoteString 转义后加单引号
func QuoteString(s string) string {
	return "'" + EscapeString(s) + "'"
}

// quoteStandard 标准 SQL 字面量 单引号加倍
func quoteStandard(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var rowKeywords = []string{"SELECT", "SHOW", "PRAGMA", "WITH", "VALUES", "EXPLAIN", "DESCRIBE", "DESC", "TABLE", "FROM"}

// returnsRows 判断语句是否产生结果集
func returnsRows(query string) bool {
	q := strings.TrimLeft(query, " \t\r\n(")
	end := strings.IndexAny(q, " \t\r\n(")
	if end == -1 {
		end = len(q)
	}
	head := strings.ToUpper(q[:end])
	for _, kw := range rowKeywords {
		if head == kw {
			return true
		}
	}
	return strings.Contains(strings.ToUpper(q), " RETURNING ")
}

// isInsert 语句是否为 INSERT 用于决定是否回读自增 id
func isInsert(query string) bool {
	q := strings.TrimSpace(query)
	return len(q) >= 6 && strings.EqualFold(q[:6], "INSERT")
}
