package domain

// UserType distinguishes what a user may do across both services
type UserType string

// Known user types
const (
	UserTypeCustomer   UserType = "CUSTOMER"   // Default, read-only access
	UserTypeShopkeeper UserType = "SHOPKEEPER" // Manages the items of exactly one shop
	UserTypeSuper      UserType = "SUPER"      // Creates and updates shops
)

// Valid reports whether t is one of the known user types
func (t UserType) Valid() bool {
	switch t {
	case UserTypeCustomer, UserTypeShopkeeper, UserTypeSuper:
		return true
	}
	return false
}

// User Model
type User struct {
	ID       uint     `gorm:"primaryKey"`                                     // Primary key
	Username string   `gorm:"size:80;unique;not null"`                        // Unique username
	Password string   `gorm:"size:120;not null"`                              // Hashed password
	UserType UserType `gorm:"size:80;not null;default:CUSTOMER"`              // CUSTOMER, SHOPKEEPER or SUPER
	Roles    []Role   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Shop bindings of a shopkeeper
}
