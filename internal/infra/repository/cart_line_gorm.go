package repository

import (
	"context"
	"errors"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// ユーザーのカート行を新しい順に一覧
func (r *CartLineGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// 指定IDのうちユーザー所有分だけ返す。見つからないIDはエラーにしない
func (r *CartLineGormRepository) ListByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) ([]model.CartLine, error) {
	if len(lineIDs) == 0 {
		return []model.CartLine{}, nil
	}

	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, lineIDs).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// 1件取得。他人の行も ErrNotFound にする（存在を漏らさない）
func (r *CartLineGormRepository) FindByIDForUser(ctx context.Context, userID int64, lineID int64) (model.CartLine, error) {
	var line model.CartLine

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartLine{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartLine{}, err
	}
	return line, nil
}

// 同一(user, sku)は数量加算
func (r *CartLineGormRepository) UpsertMerge(ctx context.Context, userID int64, skuID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND sku_id = ?", userID, skuID).
			First(&line).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			newQty := line.Quantity + addQty
			if newQty < 1 {
				newQty = 1
			}

			res := tx.Model(&model.CartLine{}).
				Where("id = ?", line.ID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成（selectedはtrueで入れる）
		now := time.Now()
		newLine := model.CartLine{
			UserID:    userID,
			SkuID:     skuID,
			Quantity:  addQty,
			Selected:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newLine).Error; err != nil {
			return err
		}

		return nil
	})
}

// 行の数量を更新
func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ユーザー所有分だけ削除。無ければ何もしない
func (r *CartLineGormRepository) DeleteByIDForUser(ctx context.Context, userID int64, lineID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&model.CartLine{}).Error
}

// ユーザー所有分だけまとめて削除
// 注文確定時のカート掃除もここを通る（user_idとidの両方で絞るのが大事）
func (r *CartLineGormRepository) DeleteByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, lineIDs).
		Delete(&model.CartLine{})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 選択フラグを一括更新。他人の行はWHEREで弾かれるだけで、エラーにはしない
func (r *CartLineGormRepository) SetSelected(ctx context.Context, userID int64, lineIDs []int64, selected bool) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("user_id = ? AND id IN ?", userID, lineIDs).
		Update("selected", selected)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
