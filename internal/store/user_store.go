package store

import (
	"context"
	"errors"

	"shop_system/internal/apperr"
	"shop_system/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore persists users and their shop role bindings.
type UserStore struct {
	db   *gorm.DB
	cost int
}

// NewUserStore returns a store backed by db.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db, cost: bcrypt.DefaultCost}
}

// NewUser is the input of Register. ShopID is only honoured for shopkeepers.
type NewUser struct {
	Username string
	Password string
	UserType domain.UserType
	ShopID   *uint
}

// Register creates a user. A shopkeeper registered with a shop id also gets
// a Shopkeeper role for that shop; user and role are written in one
// transaction so a failed role assignment leaves no user behind.
func (s *UserStore) Register(ctx context.Context, in NewUser) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, apperr.Validation("Missing username or password")
	}
	if in.UserType == "" {
		in.UserType = domain.UserTypeCustomer
	}
	if !in.UserType.Valid() {
		return nil, apperr.Validation("Invalid user_type")
	}

	var existing domain.User
	err := s.db.WithContext(ctx).Where("username = ?", in.Username).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while creating user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation("Password too long")
		}
		return nil, apperr.Internal("Failed to hash password", err)
	}

	user := domain.User{Username: in.Username, Password: string(hash), UserType: in.UserType}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("User already exists")
			}
			return apperr.Wrap(apperr.KindValidation, "Error occurred while creating user", err)
		}
		if user.UserType != domain.UserTypeShopkeeper || in.ShopID == nil || *in.ShopID == 0 {
			return nil
		}
		role := domain.Role{Name: domain.ShopkeeperRoleName, UserID: user.ID, ShopID: *in.ShopID}
		if err := tx.Create(&role).Error; err != nil {
			return apperr.Wrap(apperr.KindValidation, "Error occurred in role assignment", err)
		}
		user.Roles = []domain.Role{role}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"username":  in.Username,
			"user_type": in.UserType,
			"error":     err.Error(),
		}).Warn("Registration rolled back")
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user whose credentials match.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return &user, nil
}

// FindByID loads a user with its roles, oldest role first.
func (s *UserStore) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load user", err)
	}
	return &user, nil
}

// List returns every user ordered by id.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Error occurred while listing users", err)
	}
	return users, nil
}

// CountRoles returns the number of roles bound to userID.
func (s *UserStore) CountRoles(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Role{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
