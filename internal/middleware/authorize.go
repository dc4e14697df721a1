package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"shop_system/internal/apperr"     // Error taxonomy
	"shop_system/internal/authclient" // Auth service client
	"shop_system/internal/domain"     // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// IdentityKey is the gin context key holding the verified *authclient.Identity
const IdentityKey = "identity"

// OwnerFunc decides whether a shopkeeper may act on the resource addressed by the request
type OwnerFunc func(c *gin.Context, id *authclient.Identity) error

// Policy describes who may call a privileged route
type Policy struct {
	Roles  []domain.UserType // Allowed user types
	Denied string            // Message returned when the user type is not allowed
	Owner  OwnerFunc         // Extra check applied to shopkeepers, optional
}

// Authorize asks the auth service who the caller is and enforces p before the handler runs.
// Error responses of the auth service are relayed to the caller unchanged.
func Authorize(v authclient.Verifier, p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := v.Verify(c.Request.Context(), c.GetHeader("Authorization")) // One round trip per request
		if err != nil {
			RespondError(c, err) // Relay upstream error or report outage
			return
		}
		// Check the user type
		if !id.HasType(p.Roles...) {
			logrus.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey), // Request ID
				"user_id":    id.ID,                     // Caller
				"user_type":  id.UserType,               // Caller type
				"path":       c.FullPath(),              // Route
			}).Warn("Access denied") // Log denial
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": p.Denied})
			return
		}
		// Shopkeepers may only touch their own shop
		if p.Owner != nil && id.UserType == domain.UserTypeShopkeeper {
			if err := p.Owner(c, id); err != nil {
				RespondError(c, err) // Not found or not the owner
				return
			}
		}
		c.Set(IdentityKey, id) // Store identity in context
		c.Next()               // Proceed to the next handler
	}
}

// IdentityFrom returns the identity stored by Authorize
func IdentityFrom(c *gin.Context) (*authclient.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*authclient.Identity)
	return id, ok
}

// RespondError writes err as a JSON error response and aborts the chain.
// Upstream auth responses are written byte for byte.
func RespondError(c *gin.Context, err error) {
	var up *authclient.UpstreamError
	if errors.As(err, &up) {
		contentType := up.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Data(up.Status, contentType, up.Body) // Pass through verbatim
		c.Abort()
		return
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("Internal server error", err) // Unknown failure
	}
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError || appErr.Err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey), // Request ID
			"path":       c.Request.URL.Path,        // Request path
			"status":     status,                    // Response status
			"error":      err.Error(),               // Full error
		}).Error("Request failed") // Log failure
	}
	c.AbortWithStatusJSON(status, gin.H{"error": appErr.Message})
}
