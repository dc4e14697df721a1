package api

import (
	"net/http" // HTTP status codes

	"shop_system/internal/apperr"     // Error taxonomy
	"shop_system/internal/authclient" // Verified identity
	"shop_system/internal/domain"     // Importing domain models
	"shop_system/internal/middleware" // Authorization and error responses
	"shop_system/internal/store"      // Repositories
	"shop_system/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// CreateItemRequest is the body of POST /shop/:shop_id/item/create
type CreateItemRequest struct {
	Name     string `json:"name" binding:"required"` // Item name
	ItemType string `json:"item_type"`               // Defaults to icecream
}

// UpdateItemRequest is the body of PUT /shop/item/update/:item_id, absent fields are left unchanged
type UpdateItemRequest struct {
	Name     *string `json:"name"`      // New name
	ItemType *string `json:"item_type"` // New type
}

// CreateVariantRequest is the body of POST /shop/item/:item_id/variant/create
type CreateVariantRequest struct {
	Name        string `json:"name" binding:"required"` // Variant name
	VariantType string `json:"variant_type"`            // Defaults to flavour
}

var itemRoles = []domain.UserType{domain.UserTypeSuper, domain.UserTypeShopkeeper}

func createItemPolicy(shops *store.ShopStore) middleware.Policy {
	return middleware.Policy{
		Roles:  itemRoles,
		Denied: "Only superuser or shopkeeper can create items",
		Owner:  shopOwner(shops),
	}
}

func updateItemPolicy(shops *store.ShopStore) middleware.Policy {
	return middleware.Policy{
		Roles:  itemRoles,
		Denied: "Only superuser or shopkeeper can update items",
		Owner:  itemOwner(shops, "You are not authorized to update this item"),
	}
}

func createVariantPolicy(shops *store.ShopStore) middleware.Policy {
	return middleware.Policy{
		Roles:  itemRoles,
		Denied: "Only superuser or shopkeeper can create variants",
		Owner:  itemOwner(shops, "You are not authorized to create variants for this item"),
	}
}

// shopOwner admits the shopkeeper running the shop named by :shop_id
func shopOwner(shops *store.ShopStore) middleware.OwnerFunc {
	return func(c *gin.Context, id *authclient.Identity) error {
		shopID, err := pathID(c, "shop_id", "Shop not found")
		if err != nil {
			return err
		}
		shop, err := shops.GetShop(c.Request.Context(), shopID)
		if err != nil {
			return err
		}
		if shop.ShopkeeperID != id.ID {
			return apperr.Unauthorized("You are not authorized to create items for this shop")
		}
		return nil
	}
}

// itemOwner admits the shopkeeper running the shop that holds the item named by :item_id
func itemOwner(shops *store.ShopStore, denied string) middleware.OwnerFunc {
	return func(c *gin.Context, id *authclient.Identity) error {
		itemID, err := pathID(c, "item_id", "Item not found")
		if err != nil {
			return err
		}
		ctx := c.Request.Context()
		item, err := shops.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		shop, err := shops.GetShop(ctx, item.ShopID)
		if err != nil {
			return err
		}
		if shop.ShopkeeperID != id.ID {
			return apperr.Unauthorized(denied)
		}
		return nil
	}
}

// CreateItemHandler adds an item to a shop
func CreateItemHandler(shops *store.ShopStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID, err := pathID(c, "shop_id", "Shop not found")
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		var req CreateItemRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing item name"})
			return
		}
		item, err := shops.CreateItem(c.Request.Context(), shopID, req.Name, req.ItemType)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey), // Request ID
			"shop_id":    shopID,                               // Shop
			"item_id":    item.ID,                              // New item
		}).Info("Item created")
		invalidateShopLists(c, rdb)
		c.JSON(http.StatusCreated, newItemResponse(*item))
	}
}

// UpdateItemHandler renames or retypes an item
func UpdateItemHandler(shops *store.ShopStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := pathID(c, "item_id", "Item not found")
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		var req UpdateItemRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		item, err := shops.UpdateItem(c.Request.Context(), itemID, store.ItemUpdate{
			Name:     req.Name,
			ItemType: req.ItemType,
		})
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		invalidateShopLists(c, rdb)
		c.JSON(http.StatusOK, newItemResponse(*item))
	}
}

// ListItemsHandler lists every item of every shop
func ListItemsHandler(shops *store.ShopStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []ItemResponse // Try to get cached response
		if found, err := utils.GetCache(ctx, rdb, utils.ItemListCacheKey, &cached); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, cached)
			return
		}
		items, err := shops.ListItems(ctx)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		resp := newItemResponses(items)
		_ = utils.SetCache(ctx, rdb, utils.ItemListCacheKey, resp, utils.ListCacheTTL) // Cache the response
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, resp)
	}
}

// CreateVariantHandler adds a variant to an item
func CreateVariantHandler(shops *store.ShopStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := pathID(c, "item_id", "Item not found")
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		var req CreateVariantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing variant name"})
			return
		}
		v, err := shops.CreateVariant(c.Request.Context(), itemID, req.Name, req.VariantType)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, newVariantResponse(*v))
	}
}

// ListVariantsHandler lists the variants of an item
func ListVariantsHandler(shops *store.ShopStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := pathID(c, "item_id", "Item not found")
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		variants, err := shops.ListVariants(c.Request.Context(), itemID)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		resp := make([]VariantResponse, len(variants))
		for i, v := range variants {
			resp[i] = newVariantResponse(v)
		}
		c.JSON(http.StatusOK, resp)
	}
}
