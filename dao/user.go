package dao

import (
	"context"
	"errors"
	"time"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

func (d *UserDAO) Create(ctx context.Context, user *model.User) error {
	return d.db.WithContext(ctx).Create(user).Error
}

func (d *UserDAO) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (d *UserDAO) ByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Resolve maps a caller-supplied identifier to a user. Anonymous or empty
// identifiers resolve to no user; a UUID is looked up by id, anything else
// by email. An unknown identifier is not an error.
func (d *UserDAO) Resolve(ctx context.Context, identifier string) (*model.User, error) {
	if identifier == "" || identifier == "anonymous" {
		return nil, nil
	}
	if id, err := uuid.Parse(identifier); err == nil {
		return d.ByID(ctx, id)
	}
	return d.ByEmail(ctx, identifier)
}

func (d *UserDAO) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login", time.Now()).Error
}
