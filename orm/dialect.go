package orm

import (
	"reflect"
	"strconv"
)

var (
	// Positional 占位符为 {0}、{1}，列名取 Catalog 的基础列名
	Positional Dialect = &positionalDialect{}
	// Named 占位符为 @P_0、@P_1，列名取 Catalog 映射后的列名
	Named Dialect = &namedDialect{}
	// PositionalCompat 与 Positional 一致，只是字符串也会被展开，每个字符一个参数
	// 仅用于兼容依赖这个行为的旧 SQL
	PositionalCompat Dialect = &positionalDialect{expandStrings: true}
)

// Dialect 方言只决定三件事：占位符、列名来源、哪些值需要展开成多个参数
// 其余的逻辑与方言无关
type Dialect interface {
	// Placeholder 第 idx 个参数的占位符
	Placeholder(idx int) string
	// ColumnName 字段对应的列名
	ColumnName(c Catalog, model any, field string) (string, error)
	// Expandable 值是否要展开成逗号分隔的多个参数
	Expandable(val reflect.Value) bool
}

type standardSQL struct {
}

// Expandable 切片和数组会被展开，[]byte 除外，它在 database/sql 里是一个完整的值
func (s standardSQL) Expandable(val reflect.Value) bool {
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		return val.Type().Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

type positionalDialect struct {
	standardSQL
	expandStrings bool
}

func (p *positionalDialect) Placeholder(idx int) string {
	return "{" + strconv.Itoa(idx) + "}"
}

func (p *positionalDialect) ColumnName(c Catalog, model any, field string) (string, error) {
	return c.BaseColumnName(model, field)
}

func (p *positionalDialect) Expandable(val reflect.Value) bool {
	if p.expandStrings && val.Kind() == reflect.String {
		return true
	}
	return p.standardSQL.Expandable(val)
}

type namedDialect struct {
	standardSQL
}

func (n *namedDialect) Placeholder(idx int) string {
	return "@P_" + strconv.Itoa(idx)
}

func (n *namedDialect) ColumnName(c Catalog, model any, field string) (string, error) {
	return c.ColumnName(model, field)
}
