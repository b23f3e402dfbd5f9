package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware enforces the per-class budgets and exposes the standard
// X-RateLimit-* headers
func Middleware(limiter *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := clientIP(c)
		class := Classify(c.FullPath())

		result, err := limiter.Allow(c.Request.Context(), clientIP, class)
		if err != nil {
			// Redis trouble should not take the API down with it
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":    result.Limit,
					"reset_at": result.ResetAt,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Classify maps a route to its budget class
func Classify(path string) Class {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"):
		return ClassHealth

	case strings.Contains(path, "/analytics"):
		return ClassAnalytics

	case strings.Contains(path, "/auth/"):
		return ClassAuth

	// The contended seat-inventory writes get the tightest budget
	case strings.Contains(path, "/payments"),
		strings.Contains(path, "/seats"),
		strings.Contains(path, "/bookings") && strings.Contains(path, "/cancel"):
		return ClassBookingCritical

	case strings.Contains(path, "/bookings"),
		strings.Contains(path, "/tickets"):
		return ClassBooking

	case strings.Contains(path, "/trips"),
		strings.Contains(path, "/routes"),
		strings.Contains(path, "/terminals"),
		strings.Contains(path, "/buses"):
		return ClassPublic

	default:
		return ClassDefault
	}
}

// clientIP extracts the caller's address, preferring proxy headers
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}

	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		if net.ParseIP(realIP) != nil {
			return realIP
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
