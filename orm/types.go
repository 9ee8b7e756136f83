package orm

// Query 构造出来的 SQL 和按下标排列的参数
type Query struct {
	SQL  string
	Args []any
}

type QueryBuilder interface {
	Build() (*Query, error)
}
