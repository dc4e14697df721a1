package middleware

import (
	"shop_system/internal/authclient" // Request id propagation

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/google/uuid"   // Request id generation
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "requestID"

// RequestID reuses an incoming X-Request-ID or generates one, echoes it on the
// response and makes it available to outgoing service calls
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(authclient.RequestIDHeader) // Incoming id
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString() // Generate a fresh one
		}
		c.Set(RequestIDKey, rid)                  // Store for handlers
		c.Header(authclient.RequestIDHeader, rid) // Echo to client
		// Forward downstream
		c.Request = c.Request.WithContext(authclient.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
