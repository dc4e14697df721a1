package domain

// ShopkeeperRoleName is the name given to roles created at registration
const ShopkeeperRoleName = "Shopkeeper"

// Role Model binds a user to the shop it manages
type Role struct {
	ID     uint   `gorm:"primaryKey"`             // Primary key
	Name   string `gorm:"size:80;not null"`       // Role name
	UserID uint   `gorm:"not null;index"`         // Foreign key to User
	ShopID uint   `gorm:"not null;uniqueIndex"`   // One role per shop, owned by the shop service
}
