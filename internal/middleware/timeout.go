package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"judicial-archive/internal/i18n"

	"github.com/gin-gonic/gin"
)

// Timeout bounds the request context. Handlers that give up on the deadline
// without writing get a 503.
func Timeout(tr *i18n.Translator, d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			tr.Abort(c, http.StatusServiceUnavailable, i18n.MsgRequestTimeout, "", nil)
		}
	}
}
