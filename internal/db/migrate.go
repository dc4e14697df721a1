package db

import (
	"fmt" // Error wrapping

	"shop_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// AuthModels are the tables owned by the auth service
func AuthModels() []any {
	return []any{&domain.User{}, &domain.Role{}}
}

// ShopModels are the tables owned by the shop service
func ShopModels() []any {
	return []any{&domain.Shop{}, &domain.Item{}, &domain.Variant{}}
}

// Models returns the tables of a service by name
func Models(service string) ([]any, error) {
	switch service {
	case "auth":
		return AuthModels(), nil
	case "shop":
		return ShopModels(), nil
	default:
		return nil, fmt.Errorf("unknown service %q", service)
	}
}

// Migrate performs automatic migration for the given models
func Migrate(db *gorm.DB, models ...any) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.WithField("tables", len(models)).Info("Migration completed.") // Log successful migration
	return nil
}
