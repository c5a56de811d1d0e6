package middleware

import (
	"github.com/ErlanBelekov/rich-pastebin/internal/requestid"
	"github.com/gin-gonic/gin"
)

// RequestID keeps a well-formed incoming X-Request-ID and replaces anything
// else with a fresh UUID. The id goes into the request context, the gin
// context under "requestID" and the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if !requestid.Valid(id) {
			id = requestid.New()
		}

		c.Request = c.Request.WithContext(requestid.WithRequestID(c.Request.Context(), id))
		c.Set("requestID", id)
		c.Header(requestid.Header, id)
		c.Next()
	}
}
