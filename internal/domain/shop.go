package domain

// Shop Model
type Shop struct {
	ID           uint   `gorm:"primaryKey"`                                     // Primary key
	Name         string `gorm:"size:80;unique;not null"`                        // Unique shop name
	ShopkeeperID uint   `gorm:"not null;uniqueIndex"`                           // One shop per shopkeeper
	Items        []Item `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Items sold by the shop
}

// Item Model
type Item struct {
	ID       uint      `gorm:"primaryKey"`                                     // Primary key
	Name     string    `gorm:"size:80;not null"`                               // Item name
	ItemType string    `gorm:"size:80;not null;default:icecream"`              // Item category
	ShopID   uint      `gorm:"not null;index"`                                 // Foreign key to Shop
	Variants []Variant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Variants of the item
}

// Variant Model
type Variant struct {
	ID          uint   `gorm:"primaryKey"`                       // Primary key
	Name        string `gorm:"size:80;not null"`                 // Variant name
	VariantType string `gorm:"size:80;not null;default:flavour"` // Variant category
	ItemID      uint   `gorm:"not null;index"`                   // Foreign key to Item
}

// Default types applied when a request leaves them out
const (
	DefaultItemType    = "icecream" // Default Item.ItemType
	DefaultVariantType = "flavour"  // Default Variant.VariantType
)
