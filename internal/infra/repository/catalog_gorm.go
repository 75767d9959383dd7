package repository

import (
	"context"
	"errors"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

// DI
func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// SKUの現在値＋親SPUの表示情報。価格の正は常にここ（プレビュー時点の値）
func (r *CatalogGormRepository) FindSkuDetail(ctx context.Context, skuID int64) (model.SkuDetail, error) {
	var sku model.Sku

	err := r.db.WithContext(ctx).
		Where("id = ?", skuID).
		First(&sku).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SkuDetail{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SkuDetail{}, err
	}

	var spu model.Spu
	err = r.db.WithContext(ctx).
		Where("id = ?", sku.SpuID).
		First(&spu).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		//SPUが消えているSKUは売れない扱い
		return model.SkuDetail{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SkuDetail{}, err
	}

	return model.SkuDetail{
		SkuID:       sku.ID,
		SpuID:       spu.ID,
		Price:       sku.Price,
		Attributes:  sku.Attributes,
		SpuName:     spu.Name,
		SpuSubtitle: spu.Subtitle,
		SpuImage:    spu.MainImage,
	}, nil
}
