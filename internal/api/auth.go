package api

import (
	"net/http" // HTTP status codes
	"time"     // Token lifetime

	"shop_system/internal/apperr"     // Error taxonomy
	"shop_system/internal/domain"     // Importing domain models
	"shop_system/internal/middleware" // Context keys and error responses
	"shop_system/internal/store"      // Repositories
	"shop_system/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string          `json:"username" binding:"required"`           // Username must be provided
	Password string          `json:"password" binding:"required"`           // Password must be provided
	UserType domain.UserType `json:"user_type" binding:"omitempty,usertype"` // Defaults to CUSTOMER
	ShopID   *uint           `json:"shop_id"`                               // Shop bound to a new shopkeeper
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the issued token
type AuthResponse struct {
	AccessToken string `json:"access_token"` // JWT token
}

// RegisterHandler creates a user, and a role when a shopkeeper names a shop
func RegisterHandler(users *store.UserStore, rdb *redis.Client) gin.HandlerFunc {
	registerValidators() // Make sure the usertype rule exists before binding
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Tell a bad user_type apart from missing fields
			if failedField(err, "UserType") {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_type"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username or password"})
			return
		}
		// Create the user, and the role in the same transaction
		user, err := users.Register(c.Request.Context(), store.NewUser{
			Username: req.Username, // Username
			Password: req.Password, // Plain password, hashed by the store
			UserType: req.UserType, // Requested type
			ShopID:   req.ShopID,   // Optional shop binding
		})
		if err != nil {
			middleware.RespondError(c, err) // Conflict or failed write
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey), // Request ID
			"user_id":    user.ID,                              // New user ID
			"user_type":  user.UserType,                        // User type
			"roles":      len(user.Roles),                      // Roles created
		}).Info("User registered")
		_ = utils.DeleteCache(c.Request.Context(), rdb, utils.UsersCacheKey) // Invalidate user list cache
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": newUserResponse(*user)})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *store.UserStore, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Compare provided password with stored hash
		user, err := users.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"request_id": c.GetString(middleware.RequestIDKey), // Request ID
				"username":   req.Username,                         // Attempted username
			}).Warn("Login failed")
			middleware.RespondError(c, err) // Invalid credentials
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret, ttl)
		if err != nil {
			middleware.RespondError(c, apperr.Internal("Failed to generate token", err))
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token})
	}
}

// VerifyHandler describes the bearer of a valid token: the authorization oracle of the shop service
func VerifyHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get(middleware.UserIDKey) // Set by JWTAuthMiddleware
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := users.FindByID(c.Request.Context(), userID.(uint)) // Load user with roles
		if err != nil {
			middleware.RespondError(c, err) // User not found
			return
		}
		resp := newUserResponse(*user)
		// Shopkeepers must be bound to a shop
		if user.UserType == domain.UserTypeShopkeeper {
			if len(user.Roles) == 0 {
				c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
				return
			}
			role := user.Roles[0] // First role is the shop binding
			resp.Role = &RoleResponse{ID: role.ID, Name: role.Name, ShopID: role.ShopID}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListUsersHandler returns all users without passwords
func ListUsersHandler(users *store.UserStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []UserResponse // Try to get cached response
		if found, err := utils.GetCache(ctx, rdb, utils.UsersCacheKey, &cached); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, cached)
			return
		}
		list, err := users.List(ctx) // Fetch from DB
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		resp := make([]UserResponse, len(list)) // Map users to response format
		for i, u := range list {
			resp[i] = newUserResponse(u)
		}
		_ = utils.SetCache(ctx, rdb, utils.UsersCacheKey, resp, utils.ListCacheTTL) // Cache the response
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, resp)
	}
}
