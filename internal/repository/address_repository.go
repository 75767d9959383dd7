package repository

import (
	"context"

	"mall/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//住所を新規作成する。IDなどが埋まったものを返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが持つ住所一覧を返す
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	//住所を1件取得。存在しない・他人の住所はどちらも ErrNotFound
	FindByIDForUser(ctx context.Context, userID int64, addressID int64) (model.Address, error)
}
