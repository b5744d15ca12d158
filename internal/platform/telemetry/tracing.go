package telemetry

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every paperwork span.
const TracerName = "github.com/paperwork/paperwork"

// StartSpan starts a span as a child of whatever span ctx carries.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes sets attributes on the span in ctx.
func AddAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// RecordError marks the span in ctx as failed. A nil err is ignored.
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TracingMiddleware returns an Echo middleware that wraps each request in a
// span named "HTTP {method} {route}".
func (p *Provider) TracingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p != nil && !p.cfg.tracingOn() {
				return next(c)
			}

			req := c.Request()
			route := routeOf(c)
			ctx, span := StartSpan(req.Context(), "HTTP "+req.Method+" "+route,
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
				attribute.String("http.url", req.URL.String()),
			)
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			status := c.Response().Status
			span.SetAttributes(attribute.Int("http.status_code", status))
			if err != nil {
				RecordError(ctx, err)
			} else if status >= 500 {
				span.SetStatus(codes.Error, "")
			}
			return err
		}
	}
}
