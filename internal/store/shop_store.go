package store

import (
	"context"
	"errors"

	"shop_system/internal/apperr"
	"shop_system/internal/domain"

	"gorm.io/gorm"
)

const errShopkeeperTaken = "shopkeeper can be assigned to only one shop"

// ShopStore persists shops, their items and item variants.
type ShopStore struct {
	db *gorm.DB
}

// NewShopStore returns a store backed by db.
func NewShopStore(db *gorm.DB) *ShopStore {
	return &ShopStore{db: db}
}

// ShopFilter narrows ListShops. Zero values match everything.
type ShopFilter struct {
	Name         string // substring match
	ShopkeeperID *uint  // exact match
}

// ShopUpdate holds the fields of a partial shop update; nil means unchanged.
type ShopUpdate struct {
	Name         *string
	ShopkeeperID *uint
}

// ItemUpdate holds the fields of a partial item update; nil means unchanged.
type ItemUpdate struct {
	Name     *string
	ItemType *string
}

func orderByID(db *gorm.DB) *gorm.DB { return db.Order("id") }

// CreateShop creates a shop for a shopkeeper that does not own one yet.
func (s *ShopStore) CreateShop(ctx context.Context, name string, shopkeeperID uint) (*domain.Shop, error) {
	if name == "" || shopkeeperID == 0 {
		return nil, apperr.Validation("Missing name or shopkeeper_id")
	}
	taken, err := s.shopkeeperTaken(ctx, shopkeeperID, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict(errShopkeeperTaken)
	}

	shop := domain.Shop{Name: name, ShopkeeperID: shopkeeperID}
	if err := s.db.WithContext(ctx).Create(&shop).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.KindConflict, "Shop already exists", err)
		}
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while creating shop", err)
	}
	shop.Items = []domain.Item{}
	return &shop, nil
}

// UpdateShop applies a partial update and returns the shop with its items.
func (s *ShopStore) UpdateShop(ctx context.Context, id uint, upd ShopUpdate) (*domain.Shop, error) {
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Name != nil && *upd.Name != shop.Name {
		if *upd.Name == "" {
			return nil, apperr.Validation("Shop name cannot be empty")
		}
		changes["name"] = *upd.Name
	}
	if upd.ShopkeeperID != nil && *upd.ShopkeeperID != shop.ShopkeeperID {
		if *upd.ShopkeeperID == 0 {
			return nil, apperr.Validation("Invalid shopkeeper_id")
		}
		taken, err := s.shopkeeperTaken(ctx, *upd.ShopkeeperID, shop.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict(errShopkeeperTaken)
		}
		changes["shopkeeper_id"] = *upd.ShopkeeperID
	}
	if len(changes) == 0 {
		return shop, nil
	}

	if err := s.db.WithContext(ctx).Model(shop).Updates(changes).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.KindConflict, "Shop already exists", err)
		}
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while updating shop", err)
	}
	return s.GetShop(ctx, id)
}

// GetShop loads a shop with its items.
func (s *ShopStore) GetShop(ctx context.Context, id uint) (*domain.Shop, error) {
	var shop domain.Shop
	err := s.db.WithContext(ctx).Preload("Items", orderByID).First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Shop not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load shop", err)
	}
	return &shop, nil
}

// ListShops returns the shops matching f, each with its items.
func (s *ShopStore) ListShops(ctx context.Context, f ShopFilter) ([]domain.Shop, error) {
	q := s.db.WithContext(ctx).Preload("Items", orderByID)
	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.ShopkeeperID != nil {
		q = q.Where("shopkeeper_id = ?", *f.ShopkeeperID)
	}
	var shops []domain.Shop
	if err := q.Order("id").Find(&shops).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while listing shops", err)
	}
	return shops, nil
}

// CreateItem adds an item to an existing shop.
func (s *ShopStore) CreateItem(ctx context.Context, shopID uint, name, itemType string) (*domain.Item, error) {
	if name == "" {
		return nil, apperr.Validation("Missing item name")
	}
	if _, err := s.GetShop(ctx, shopID); err != nil {
		return nil, err
	}
	if itemType == "" {
		itemType = domain.DefaultItemType
	}
	item := domain.Item{Name: name, ItemType: itemType, ShopID: shopID}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while creating item", err)
	}
	return &item, nil
}

// UpdateItem applies a partial update to an item.
func (s *ShopStore) UpdateItem(ctx context.Context, id uint, upd ItemUpdate) (*domain.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if upd.Name != nil && *upd.Name != "" {
		changes["name"] = *upd.Name
	}
	if upd.ItemType != nil && *upd.ItemType != "" {
		changes["item_type"] = *upd.ItemType
	}
	if len(changes) == 0 {
		return item, nil
	}
	if err := s.db.WithContext(ctx).Model(item).Updates(changes).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while updating item", err)
	}
	return s.GetItem(ctx, id)
}

// GetItem loads a single item.
func (s *ShopStore) GetItem(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Item not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load item", err)
	}
	return &item, nil
}

// ListItems returns every item of every shop.
func (s *ShopStore) ListItems(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := s.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while listing items", err)
	}
	return items, nil
}

// CreateVariant adds a variant to an existing item.
func (s *ShopStore) CreateVariant(ctx context.Context, itemID uint, name, variantType string) (*domain.Variant, error) {
	if name == "" {
		return nil, apperr.Validation("Missing variant name")
	}
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	if variantType == "" {
		variantType = domain.DefaultVariantType
	}
	v := domain.Variant{Name: name, VariantType: variantType, ItemID: itemID}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while creating variant", err)
	}
	return &v, nil
}

// ListVariants returns the variants of an existing item.
func (s *ShopStore) ListVariants(ctx context.Context, itemID uint) ([]domain.Variant, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	var variants []domain.Variant
	if err := s.db.WithContext(ctx).Where("item_id = ?", itemID).Order("id").Find(&variants).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while listing variants", err)
	}
	return variants, nil
}

// shopkeeperTaken reports whether another shop than exceptID is run by shopkeeperID.
func (s *ShopStore) shopkeeperTaken(ctx context.Context, shopkeeperID, exceptID uint) (bool, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&domain.Shop{}).Where("shopkeeper_id = ?", shopkeeperID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.Internal("Failed to check shopkeeper", err)
	}
	return n > 0, nil
}
