package orm

import (
	"context"
	"database/sql"
)

// QueryContext 中间件的上下文
type QueryContext struct {
	// Type 声明语句类型，DELETE、UPDATE，混合了两种语句时是 BATCH
	Type string

	// Builder 使用的时候，大多数情况下你需要转换到具体的类型
	Builder QueryBuilder
	// Query 即将执行的 SQL，占位符还是方言的格式
	Query *Query
	// SessionID 即 Buffer.ID，同一个 Buffer 执行的语句共享一个 ID
	SessionID string
}

type QueryResult struct {
	Result       sql.Result
	RowsAffected int64
	Err          error
}

type Middleware func(next Handler) Handler

type Handler func(ctx context.Context, qc *QueryContext) *QueryResult
