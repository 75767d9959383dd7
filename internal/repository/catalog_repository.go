package repository

import (
	"context"

	"mall/internal/domain/model"
)

// カタログ（SKU/SPU）への読み取り窓口。
// このサブシステムはカタログを書かない。
type CatalogRepository interface {
	//SKUの現在価格・属性と親SPUの表示情報。未知のSKUは ErrNotFound
	FindSkuDetail(ctx context.Context, skuID int64) (model.SkuDetail, error)
}
