package api

import "shop_system/internal/domain" // Importing domain models

// RoleResponse is a role as exposed by the auth service, without its user id
type RoleResponse struct {
	ID     uint   `json:"id"`      // Role ID
	Name   string `json:"name"`    // Role name
	ShopID uint   `json:"shop_id"` // Shop the role is bound to
}

// UserResponse is a user without its password
type UserResponse struct {
	ID       uint            `json:"id"`             // User ID
	Username string          `json:"username"`       // Username
	UserType domain.UserType `json:"user_type"`      // CUSTOMER, SHOPKEEPER or SUPER
	Role     *RoleResponse   `json:"role,omitempty"` // Shopkeeper binding, verify only
}

// ItemResponse represents an item
type ItemResponse struct {
	ID       uint   `json:"id"`        // Item ID
	Name     string `json:"name"`      // Item name
	ItemType string `json:"item_type"` // Item category
	ShopID   uint   `json:"shop_id"`   // Owning shop
}

// ShopResponse represents a shop with its items
type ShopResponse struct {
	ID           uint           `json:"id"`            // Shop ID
	Name         string         `json:"name"`          // Shop name
	ShopkeeperID uint           `json:"shopkeeper_id"` // Owning shopkeeper
	Items        []ItemResponse `json:"items"`         // Items of the shop
}

// VariantResponse represents an item variant
type VariantResponse struct {
	ID          uint   `json:"id"`           // Variant ID
	Name        string `json:"name"`         // Variant name
	VariantType string `json:"variant_type"` // Variant category
	ItemID      uint   `json:"item_id"`      // Owning item
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, UserType: u.UserType}
}

func newItemResponse(i domain.Item) ItemResponse {
	return ItemResponse{ID: i.ID, Name: i.Name, ItemType: i.ItemType, ShopID: i.ShopID}
}

func newItemResponses(items []domain.Item) []ItemResponse {
	resp := make([]ItemResponse, len(items))
	for i, it := range items {
		resp[i] = newItemResponse(it)
	}
	return resp
}

func newShopResponse(s domain.Shop) ShopResponse {
	return ShopResponse{ID: s.ID, Name: s.Name, ShopkeeperID: s.ShopkeeperID, Items: newItemResponses(s.Items)}
}

func newVariantResponse(v domain.Variant) VariantResponse {
	return VariantResponse{ID: v.ID, Name: v.Name, VariantType: v.VariantType, ItemID: v.ItemID}
}
