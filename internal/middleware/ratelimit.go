package middleware

import (
	"net/http" // HTTP status codes
	"sync"     // Limiter registry

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"golang.org/x/time/rate"     // Token bucket
)

// LoginRateLimiter throttles login attempts per client IP
type LoginRateLimiter struct {
	limiters sync.Map   // client ip -> *rate.Limiter
	rate     rate.Limit // Refill rate
	burst    int        // Bucket size
}

// NewLoginRateLimiter allows perMinute attempts per minute per IP, nil when perMinute <= 0
func NewLoginRateLimiter(perMinute int) *LoginRateLimiter {
	if perMinute <= 0 {
		return nil // Throttling disabled
	}
	return &LoginRateLimiter{rate: rate.Limit(float64(perMinute) / 60.0), burst: perMinute}
}

func (l *LoginRateLimiter) limiter(ip string) *rate.Limiter {
	if v, ok := l.limiters.Load(ip); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.limiters.LoadOrStore(ip, rate.NewLimiter(l.rate, l.burst))
	return v.(*rate.Limiter)
}

// Middleware rejects requests over the limit with 429; a nil limiter lets everything through
func (l *LoginRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.limiter(ip).Allow() {
			logrus.WithFields(logrus.Fields{
				"client_ip": ip,                 // Caller
				"path":      c.Request.URL.Path, // Request path
			}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts"})
			return
		}
		c.Next()
	}
}
