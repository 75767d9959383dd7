package repository

import (
	"context"
	"errors"

	"mall/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type CartLineRepository interface {
	//ユーザーの全カート行（新しい順）
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)

	//指定IDのうち、そのユーザーが所有する行だけを返す（存在しないIDは黙って落とす）
	ListByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) ([]model.CartLine, error)

	//行を1件取得。他人の行は ErrNotFound 扱い
	FindByIDForUser(ctx context.Context, userID int64, lineID int64) (model.CartLine, error)

	// 同一(user, sku)は数量加算。新規作成時は selected=true
	UpsertMerge(ctx context.Context, userID int64, skuID int64, addQty int64) error

	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error

	//ユーザー所有分だけ削除。無ければ何もしない
	DeleteByIDForUser(ctx context.Context, userID int64, lineID int64) error

	//ユーザー所有分だけまとめて削除。削除件数を返す
	DeleteByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) (int64, error)

	//選択フラグの一括更新。対象になった件数を返す（他人の行は対象外）
	SetSelected(ctx context.Context, userID int64, lineIDs []int64, selected bool) (int64, error)
}
