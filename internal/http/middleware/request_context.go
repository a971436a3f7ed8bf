package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/openpulse/openpulse-backend/internal/pkg/ctxutil"
)

// AttachRequestContext stamps every request with a request id and, when a
// span is recording, the active trace id. Runs after otelgin so the span is
// already on the context.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		td := &ctxutil.TraceData{RequestID: uuid.NewString()}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, td))
		c.Writer.Header().Set("X-Request-ID", td.RequestID)
		c.Next()
	}
}
