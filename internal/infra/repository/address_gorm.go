package repository

import (
	"context"
	"errors"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
)

type AddressGormRepository struct {
	db *gorm.DB
}

// DI
func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

func (r *AddressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	now := time.Now()
	address.CreatedAt = now
	address.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.Address{}, err
	}
	return address, nil
}

func (r *AddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var items []model.Address

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc, id desc").
		Find(&items).Error; err != nil {
		return []model.Address{}, err
	}

	return items, nil
}

// 存在しない住所も他人の住所も同じ ErrNotFound（存在を漏らさない）
func (r *AddressGormRepository) FindByIDForUser(ctx context.Context, userID int64, addressID int64) (model.Address, error) {
	var a model.Address

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&a).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Address{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Address{}, err
	}
	return a, nil
}
