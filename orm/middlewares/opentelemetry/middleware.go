package opentelemetry

import (
	"context"
	"github.com/coderi421/sqlraw/orm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/coderi421/sqlraw/orm/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			ctx, span := m.Tracer.Start(ctx, "orm "+qc.Type, trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			span.SetAttributes(
				attribute.String("db.operation", qc.Type),
				attribute.String("db.statement", qc.Query.SQL),
				attribute.Int("db.args", len(qc.Query.Args)),
				attribute.String("orm.session_id", qc.SessionID),
			)

			res := next(ctx, qc)
			if res.Err != nil {
				span.RecordError(res.Err)
				span.SetStatus(codes.Error, res.Err.Error())
				return res
			}
			span.SetAttributes(attribute.Int64("db.rows_affected", res.RowsAffected))
			return res
		}
	}
}
