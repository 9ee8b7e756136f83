package querylog

import (
	"context"
	"github.com/birdie-ai/golibs/slog"
	"github.com/birdie-ai/golibs/tracing"
	"github.com/coderi421/sqlraw/orm"
)

type MiddlewareBuilder struct {
	logFunc func(query string, args []any)
}

func NewBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

// LogFunc 自定义输出，设置之后不再使用 slog
func (m *MiddlewareBuilder) LogFunc(fn func(query string, args []any)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			if m.logFunc != nil {
				m.logFunc(qc.Query.SQL, qc.Query.Args)
				return next(ctx, qc)
			}

			res := next(ctx, qc)
			log := slog.FromCtx(ctx).With("session_id", qc.SessionID, "type", qc.Type)
			if traceID, ok := tracing.CtxGetTraceID(ctx); ok {
				log = log.With("trace_id", traceID)
			}
			if res.Err != nil {
				log.Error("orm: exec failed", "sql", qc.Query.SQL, "args", qc.Query.Args, "error", res.Err)
				return res
			}
			log.Debug("orm: exec", "sql", qc.Query.SQL, "args", qc.Query.Args, "rows_affected", res.RowsAffected)
			return res
		}
	}
}
