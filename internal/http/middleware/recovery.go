package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"elevatr.app/predictor/internal/http/dto"
)

// Recovery turns a panic in any handler into the service's 500 error shape,
// echoing the request id that the logged stack is tagged with.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()

			slog.ErrorContext(ctx, "handler panicked",
				"panic", fmt.Sprint(rec),
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:     "Internal server error",
				RequestID: c.Writer.Header().Get(RequestIDHeader),
			})
		}()
		c.Next()
	}
}
