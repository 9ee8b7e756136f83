package orm

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Rewriter 在执行之前把方言的 SQL 和参数改写成驱动能接受的形式
type Rewriter func(query string, args []any) (string, []any)

var positionalPattern = regexp.MustCompile(`\{(\d+)\}`)

// RewriteQuestion {0} {1} -> ? ?，适用于 MySQL、SQLite
// 占位符在 SQL 中按照下标升序出现，所以可以直接替换
func RewriteQuestion(query string, args []any) (string, []any) {
	return positionalPattern.ReplaceAllString(query, "?"), args
}

// RewriteDollar {0} {1} -> $1 $2，适用于 PostgreSQL
func RewriteDollar(query string, args []any) (string, []any) {
	return rewriteIndex(query, "$"), args
}

// RewriteOrdinal {0} {1} -> ?1 ?2，适用于 SQLite
func RewriteOrdinal(query string, args []any) (string, []any) {
	return rewriteIndex(query, "?"), args
}

// RewriteNamed 配合 Named 方言使用，参数包装成 sql.Named("P_0", val)
func RewriteNamed(query string, args []any) (string, []any) {
	named := make([]any, 0, len(args))
	for i, arg := range args {
		named = append(named, sql.Named("P_"+strconv.Itoa(i), arg))
	}
	return query, named
}

func rewriteIndex(query string, prefix string) string {
	return positionalPattern.ReplaceAllStringFunc(query, func(m string) string {
		idx, _ := strconv.Atoi(m[1 : len(m)-1])
		return prefix + strconv.Itoa(idx+1)
	})
}
