package middleware

import (
	"github.com/gin-gonic/gin"

	"elevatr.app/predictor/common/id"
	"elevatr.app/predictor/common/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	// BatchIDHeader carries the batch uuid on /api/batch responses.
	BatchIDHeader = "X-Batch-ID"
)

// RequestID tags every request with a snowflake ID. A numeric ID supplied by
// the caller is kept so retries can be correlated. The ID is echoed in the
// response header and attached to the request context log fields.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID, err := id.Parse(c.GetHeader(RequestIDHeader))
		if err != nil || reqID <= 0 {
			reqID = id.New()
		}

		c.Header(RequestIDHeader, id.Format(reqID))
		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{RequestID: &reqID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
