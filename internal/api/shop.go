package api

import (
	"errors"   // Error inspection
	"fmt"      // Cache key formatting
	"io"       // Empty body detection
	"net/http" // HTTP status codes
	"strconv"  // Path and query parsing

	"shop_system/internal/apperr"     // Error taxonomy
	"shop_system/internal/domain"     // Importing domain models
	"shop_system/internal/middleware" // Authorization and error responses
	"shop_system/internal/store"      // Repositories
	"shop_system/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// CreateShopRequest is the body of POST /shop/create
type CreateShopRequest struct {
	Name         string `json:"name" binding:"required"`          // Shop name
	ShopkeeperID uint   `json:"shopkeeper_id" binding:"required"` // Owning shopkeeper
}

// UpdateShopRequest is the body of PUT /shop/update/:shop_id, absent fields are left unchanged
type UpdateShopRequest struct {
	Name         *string `json:"name"`          // New name
	ShopkeeperID *uint   `json:"shopkeeper_id"` // New shopkeeper
}

var createShopPolicy = middleware.Policy{
	Roles:  []domain.UserType{domain.UserTypeSuper},
	Denied: "only superuser can create shop",
}

var updateShopPolicy = middleware.Policy{
	Roles:  []domain.UserType{domain.UserTypeSuper},
	Denied: "only superuser can update shop",
}

// pathID parses a numeric route parameter; anything else addresses no resource
func pathID(c *gin.Context, param, notFound string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound(notFound)
	}
	return uint(id), nil
}

// bindOptionalJSON binds a partial update body; an empty body is an empty update
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// invalidateShopLists drops every cached shop and item listing
func invalidateShopLists(c *gin.Context, rdb *redis.Client) {
	ctx := c.Request.Context()
	_ = utils.DeleteCachePrefix(ctx, rdb, utils.ShopListCachePrefix) // Shops embed their items
	_ = utils.DeleteCache(ctx, rdb, utils.ItemListCacheKey)
}

// CreateShopHandler creates a shop for a shopkeeper
func CreateShopHandler(shops *store.ShopStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateShopRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name or shopkeeper_id"})
			return
		}
		shop, err := shops.CreateShop(c.Request.Context(), req.Name, req.ShopkeeperID)
		if err != nil {
			middleware.RespondError(c, err) // Shopkeeper taken or duplicate name
			return
		}
		logrus.WithFields(logrus.Fields{
			"request_id":    c.GetString(middleware.RequestIDKey), // Request ID
			"shop_id":       shop.ID,                              // New shop
			"shopkeeper_id": shop.ShopkeeperID,                    // Owner
		}).Info("Shop created")
		invalidateShopLists(c, rdb)
		c.JSON(http.StatusOK, newShopResponse(*shop))
	}
}

// UpdateShopHandler renames a shop or moves it to another shopkeeper
func UpdateShopHandler(shops *store.ShopStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "shop_id", "Shop not found")
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		var req UpdateShopRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		shop, err := shops.UpdateShop(c.Request.Context(), id, store.ShopUpdate{
			Name:         req.Name,
			ShopkeeperID: req.ShopkeeperID,
		})
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		invalidateShopLists(c, rdb)
		c.JSON(http.StatusOK, newShopResponse(*shop))
	}
}

// ListShopsHandler lists shops with their items, filtered by name substring and shopkeeper
func ListShopsHandler(shops *store.ShopStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.ShopFilter{Name: c.Query("name")}
		keeper := c.Query("shopkeeper_id")
		if keeper != "" {
			v, err := strconv.ParseUint(keeper, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shopkeeper_id"})
				return
			}
			kid := uint(v)
			filter.ShopkeeperID = &kid
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("%sname=%s:shopkeeper_id=%s", utils.ShopListCachePrefix, filter.Name, keeper)
		var cached []ShopResponse // Try to get cached response
		if found, err := utils.GetCache(ctx, rdb, key, &cached); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, cached)
			return
		}
		list, err := shops.ListShops(ctx, filter)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		resp := make([]ShopResponse, len(list))
		for i, s := range list {
			resp[i] = newShopResponse(s)
		}
		_ = utils.SetCache(ctx, rdb, key, resp, utils.ListCacheTTL) // Cache the response
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, resp)
	}
}

// VerifyPassthroughHandler returns the auth service's verification response unchanged
func VerifyPassthroughHandler(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType, body, err := auth.Fetch(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			middleware.RespondError(c, err) // Upstream error verbatim, or 503
			return
		}
		c.Data(http.StatusOK, contentType, body)
	}
}

// ConfigEchoHandler reports where the shop service looks for the auth service
func ConfigEchoHandler(authServiceHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"AUTH_SERVICE_HOST": authServiceHost})
	}
}
